package bot

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"giftbot/events"
	"giftbot/service"
	"giftbot/telegram"
)

const pollTimeout = 30 // seconds, getUpdates long-poll window

// Config holds bot configuration
type Config struct {
	RequiredChannel string
	VPNBotUsername  string
	GiftCost        int64
	MinStarBalance  int64
}

type Bot struct {
	config             Config
	client             *telegram.Client
	participantRepo    service.ParticipantRepository
	eligibilityService service.EligibilityService
	reconcileService   service.ReconcileService
	statsService       service.StatsService
	pause              *service.PauseState
	eventBus           *events.Bus
}

func New(
	config Config,
	client *telegram.Client,
	participantRepo service.ParticipantRepository,
	eligibilityService service.EligibilityService,
	reconcileService service.ReconcileService,
	statsService service.StatsService,
	pause *service.PauseState,
	eventBus *events.Bus,
) *Bot {
	bot := &Bot{
		config:             config,
		client:             client,
		participantRepo:    participantRepo,
		eligibilityService: eligibilityService,
		reconcileService:   reconcileService,
		statsService:       statsService,
		pause:              pause,
		eventBus:           eventBus,
	}

	// Audit trail for the fulfillment lifecycle
	eventBus.Subscribe(events.EventTypeParticipantRegistered, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.ParticipantRegisteredEvent); ok {
			log.WithFields(log.Fields{
				"telegramID": e.TelegramID,
				"username":   e.Username,
			}).Info("Participant registered")
		}
	})
	eventBus.Subscribe(events.EventTypeGiftSent, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.GiftSentEvent); ok {
			log.WithField("telegramID", e.TelegramID).Info("Gift fulfilled")
		}
	})
	eventBus.Subscribe(events.EventTypeParticipantDeferred, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.ParticipantDeferredEvent); ok {
			log.WithFields(log.Fields{
				"telegramID": e.TelegramID,
				"balance":    e.StarBalance,
			}).Warn("Participant deferred to pending queue")
		}
	})

	return bot
}

// Run polls for updates until the context is cancelled
func (b *Bot) Run(ctx context.Context) error {
	log.Info("Bot started, polling for updates")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			log.Info("Bot stopping")
			return ctx.Err()
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Error("Failed to get updates, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update telegram.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"updateID": update.UpdateID,
				"panic":    r,
			}).Error("Update handler panicked")
		}
	}()

	switch {
	case update.PreCheckoutQuery != nil:
		b.handlePreCheckout(ctx, update.PreCheckoutQuery)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil || msg.Chat.Type != "private" {
		return
	}

	if msg.SuccessfulPayment != nil {
		b.handleSuccessfulPayment(ctx, msg)
		return
	}

	command := parseCommand(msg.Text)
	switch command {
	case "start":
		b.handleStart(ctx, msg)
	case "stats", "balance", "export", "pause", "resume", "send_pending", "donate", "admin":
		b.handleAdminCommand(ctx, msg, command)
	}
}

// parseCommand extracts the bare command name from "/cmd@botname args"
func parseCommand(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	command := strings.Fields(text)[0][1:]
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	return command
}
