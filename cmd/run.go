package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"giftbot/bot"
	"giftbot/bot/common"
	"giftbot/config"
	"giftbot/database"
	"giftbot/events"
	"giftbot/repository"
	"giftbot/service"
	"giftbot/telegram"
	"giftbot/vpnpanel"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting giveaway bot...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	eventBus := events.NewBus()
	participantRepo := repository.NewParticipantRepository(db)

	// Admins are usable before they ever send /start; all-or-nothing so a
	// partial admin list never goes live
	err = db.WithTransaction(ctx, func(tx pgx.Tx) error {
		txRepo := repository.NewParticipantRepositoryWithTx(tx)
		for _, adminID := range cfg.AdminIDs {
			if err := txRepo.EnsureAdmin(ctx, adminID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to ensure admin accounts: %w", err)
	}
	log.WithField("admins", len(cfg.AdminIDs)).Info("Admin accounts ensured")

	tgClient := telegram.NewClient(cfg.BotToken)
	panelClient := vpnpanel.NewClient(cfg.VPNPanelURL, cfg.VPNPanelToken, cfg.VPNUsernamePrefix)

	membershipVerifier := telegram.NewMembershipVerifier(tgClient, cfg.RequiredChannel)
	giftSender := telegram.NewGiftSender(tgClient, cfg.GiftID, common.GiftMessage)
	adminNotifier := telegram.NewAdminNotifier(tgClient)

	pause := service.NewPauseState()
	guard := service.NewBalanceGuard(adminNotifier, cfg.AdminIDs, cfg.GiftStarCost)
	giftService := service.NewGiftService(participantRepo, giftSender, guard, eventBus, cfg.GiftStarCost)
	eligibilityService := service.NewEligibilityService(participantRepo, membershipVerifier, panelClient, giftService, pause)
	reconcileService := service.NewReconcileService(participantRepo, giftSender, giftService, cfg.GiftStarCost)
	statsService := service.NewStatsService(participantRepo, giftSender, pause)
	log.Info("Services initialized")

	botConfig := bot.Config{
		RequiredChannel: cfg.RequiredChannel,
		VPNBotUsername:  cfg.VPNBotUsername,
		GiftCost:        cfg.GiftStarCost,
		MinStarBalance:  cfg.MinStarBalance,
	}
	giveawayBot := bot.New(botConfig, tgClient, participantRepo, eligibilityService, reconcileService, statsService, pause, eventBus)

	log.WithField("environment", cfg.Environment).Info("Bot is running")
	if err := giveawayBot.Run(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("bot stopped: %w", err)
	}

	log.Info("Shutdown complete")
	return nil
}
