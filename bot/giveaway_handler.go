package bot

import (
	"context"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"giftbot/bot/common"
	"giftbot/events"
	"giftbot/models"
	"giftbot/telegram"
)

// welcomePhotoPath is resolved relative to the working directory. The asset
// ships with the deployment; when it is missing the bot falls back to text.
const welcomePhotoPath = "pics/welcome.png"

// handleStart registers the participant and shows the giveaway menu.
// Re-running /start never resets fulfillment state.
func (b *Bot) handleStart(ctx context.Context, msg *telegram.Message) {
	telegramID := msg.From.ID
	username := msg.From.Username

	log.WithFields(log.Fields{
		"telegramID": telegramID,
		"username":   username,
	}).Info("/start received")

	created, err := b.participantRepo.CreateIfAbsent(ctx, telegramID, username)
	if err != nil {
		log.WithField("telegramID", telegramID).WithError(err).Error("Failed to register participant")
		b.reply(ctx, msg.Chat.ID, common.RegistrationFailedText, nil)
		return
	}
	if created {
		b.eventBus.Emit(ctx, events.ParticipantRegisteredEvent{
			TelegramID: telegramID,
			Username:   username,
		})
	}

	if b.pause.IsPaused() {
		b.reply(ctx, msg.Chat.ID, common.PausedText, nil)
		return
	}

	participant, err := b.participantRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		log.WithField("telegramID", telegramID).WithError(err).Error("Failed to load participant")
		b.reply(ctx, msg.Chat.ID, common.RegistrationFailedText, nil)
		return
	}
	if participant != nil && participant.HasReceived() {
		b.reply(ctx, msg.Chat.ID, common.AlreadyReceivedText, nil)
		return
	}
	if participant != nil && participant.IsPending() {
		b.reply(ctx, msg.Chat.ID, common.PendingText, nil)
		return
	}

	keyboard := common.MainMenuKeyboard(b.config.RequiredChannel, b.config.VPNBotUsername)
	b.sendWelcome(ctx, msg.Chat.ID, keyboard)
}

// sendWelcome sends the welcome photo with the menu attached, falling back to
// a plain text message when the photo is unavailable.
func (b *Bot) sendWelcome(ctx context.Context, chatID int64, keyboard *telegram.InlineKeyboardMarkup) {
	photo, err := os.ReadFile(welcomePhotoPath)
	if err == nil {
		err = b.client.SendPhoto(ctx, chatID, filepath.Base(welcomePhotoPath), photo, common.WelcomeText, keyboard)
		if err == nil {
			return
		}
	}
	log.WithError(err).Warn("Failed to send welcome photo, falling back to text")
	b.reply(ctx, chatID, common.WelcomeText, keyboard)
}

// handleCallback runs the eligibility check when the button is pressed
func (b *Bot) handleCallback(ctx context.Context, callback *telegram.CallbackQuery) {
	if callback.Data != common.CallbackCheck {
		b.answerCallback(ctx, callback.ID, "", false)
		return
	}

	telegramID := callback.From.ID

	evaluation, err := b.eligibilityService.Evaluate(ctx, telegramID)
	if err != nil {
		log.WithField("telegramID", telegramID).WithError(err).Error("Eligibility evaluation failed")
		b.answerCallback(ctx, callback.ID, common.GiftFailedAlert, true)
		return
	}

	switch evaluation.Outcome {
	case models.OutcomePaused:
		b.answerCallback(ctx, callback.ID, common.PausedText, true)

	case models.OutcomeGiftReceived:
		b.answerCallback(ctx, callback.ID, common.AlreadyReceivedText, true)

	case models.OutcomeGiftPending:
		b.editCallbackMessage(ctx, callback, common.PendingText, nil)
		b.answerCallback(ctx, callback.ID, common.GiftPendingAlert, true)

	case models.OutcomeGiftSent:
		b.editCallbackMessage(ctx, callback, common.GiftSentText, nil)
		b.answerCallback(ctx, callback.ID, common.GiftSentAlert, true)

	case models.OutcomeConditionsUnmet:
		text := common.ConditionsNotMetText(evaluation.Conditions)
		keyboard := common.ConditionsFailedKeyboard(
			b.config.RequiredChannel,
			b.config.VPNBotUsername,
			evaluation.Conditions.Membership,
			evaluation.Conditions.ServiceActive,
		)
		b.editCallbackMessage(ctx, callback, text, keyboard)
		b.answerCallback(ctx, callback.ID, "", false)

	default:
		b.answerCallback(ctx, callback.ID, common.GiftFailedAlert, true)
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	if _, err := b.client.SendMessage(ctx, chatID, text, markup); err != nil {
		log.WithField("chatID", chatID).WithError(err).Warn("Failed to send message")
	}
}

func (b *Bot) answerCallback(ctx context.Context, callbackID, text string, alert bool) {
	if err := b.client.AnswerCallbackQuery(ctx, callbackID, text, alert); err != nil {
		log.WithError(err).Warn("Failed to answer callback query")
	}
}

func (b *Bot) editCallbackMessage(ctx context.Context, callback *telegram.CallbackQuery, text string, markup *telegram.InlineKeyboardMarkup) {
	if callback.Message == nil {
		return
	}
	// The menu message may be a photo with a caption, so try the caption
	// edit first and fall back to editing text.
	err := b.client.EditMessageCaption(ctx, callback.Message.Chat.ID, callback.Message.MessageID, text, markup)
	if err != nil {
		err = b.client.EditMessageText(ctx, callback.Message.Chat.ID, callback.Message.MessageID, text, markup)
	}
	if err != nil {
		log.WithError(err).Warn("Failed to edit message")
	}
}
