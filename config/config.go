package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Telegram configuration
	BotToken        string
	RequiredChannel string // channel username (without @) participants must join
	VPNBotUsername  string // username of the VPN bot linked from the join keyboard

	// Database configuration
	DatabaseURL string

	// Gift configuration
	GiftID         string
	GiftStarCost   int64 // cost of one gift in stars
	MinStarBalance int64 // warning floor for the low-balance notification

	// Admin configuration
	AdminIDs []int64 // Telegram IDs allowed to run admin commands

	// VPN panel configuration
	VPNPanelURL       string
	VPNPanelToken     string
	VPNUsernamePrefix string // panel usernames are "<prefix>_<telegram_id>"

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Set replaces the global configuration instance. Intended for tests.
func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Telegram
		BotToken:        os.Getenv("BOT_TOKEN"),
		RequiredChannel: strings.TrimPrefix(os.Getenv("REQUIRED_CHANNEL"), "@"),
		VPNBotUsername:  strings.TrimPrefix(os.Getenv("VPN_BOT_USERNAME"), "@"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Gift settings with defaults
		GiftID:         os.Getenv("GIFT_ID"),
		GiftStarCost:   15,
		MinStarBalance: 100,

		// VPN panel
		VPNPanelURL:       strings.TrimSuffix(os.Getenv("VPN_PANEL_URL"), "/"),
		VPNPanelToken:     strings.TrimSpace(os.Getenv("VPN_PANEL_TOKEN")),
		VPNUsernamePrefix: "1",

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if cost := os.Getenv("GIFT_STAR_COST"); cost != "" {
		if parsedCost, err := strconv.ParseInt(cost, 10, 64); err == nil {
			config.GiftStarCost = parsedCost
		}
	}
	if floor := os.Getenv("MIN_STAR_BALANCE"); floor != "" {
		if parsedFloor, err := strconv.ParseInt(floor, 10, 64); err == nil {
			config.MinStarBalance = parsedFloor
		}
	}
	if prefix := os.Getenv("VPN_USERNAME_PREFIX"); prefix != "" {
		config.VPNUsernamePrefix = prefix
	}

	// Parse admin Telegram IDs
	if adminIDs := os.Getenv("ADMIN_IDS"); adminIDs != "" {
		idStrings := strings.Split(adminIDs, ",")
		for _, idStr := range idStrings {
			idStr = strings.TrimSpace(idStr)
			if idStr != "" {
				if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
					config.AdminIDs = append(config.AdminIDs, id)
				}
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.BotToken == "" {
			return nil, fmt.Errorf("BOT_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.RequiredChannel == "" {
			return nil, fmt.Errorf("REQUIRED_CHANNEL is required")
		}
		if config.GiftID == "" {
			return nil, fmt.Errorf("GIFT_ID is required")
		}
	}

	return config, nil
}
