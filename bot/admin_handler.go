package bot

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"giftbot/bot/common"
	"giftbot/service"
	"giftbot/telegram"
)

// handleAdminCommand dispatches operator commands after an admin check.
// Non-admins get silence, not an error: the commands stay undiscoverable.
func (b *Bot) handleAdminCommand(ctx context.Context, msg *telegram.Message, command string) {
	isAdmin, err := b.participantRepo.IsAdmin(ctx, msg.From.ID)
	if err != nil {
		log.WithField("telegramID", msg.From.ID).WithError(err).Error("Failed to check admin flag")
		return
	}
	if !isAdmin {
		return
	}

	log.WithFields(log.Fields{
		"telegramID": msg.From.ID,
		"command":    command,
	}).Info("Admin command")

	switch command {
	case "stats":
		b.handleStats(ctx, msg)
	case "balance":
		b.handleBalance(ctx, msg)
	case "export":
		b.handleExport(ctx, msg)
	case "pause":
		b.handlePause(ctx, msg)
	case "resume":
		b.handleResume(ctx, msg)
	case "send_pending":
		b.handleSendPending(ctx, msg)
	case "donate":
		b.handleDonate(ctx, msg)
	case "admin":
		b.reply(ctx, msg.Chat.ID, common.AdminHelpText, nil)
	}
}

func (b *Bot) handleStats(ctx context.Context, msg *telegram.Message) {
	stats, err := b.statsService.Snapshot(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to build stats snapshot")
		b.reply(ctx, msg.Chat.ID, "❌ Could not load statistics.", nil)
		return
	}

	b.reply(ctx, msg.Chat.ID, common.FormatStats(stats, b.config.GiftCost, b.config.MinStarBalance), nil)
}

func (b *Bot) handleBalance(ctx context.Context, msg *telegram.Message) {
	stats, err := b.statsService.Snapshot(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to check star balance")
		b.reply(ctx, msg.Chat.ID, "❌ Could not check the star balance.", nil)
		return
	}

	text := common.FormatBalance(stats.StarBalance, b.config.GiftCost, stats.Pending, b.config.MinStarBalance)
	b.reply(ctx, msg.Chat.ID, text, nil)
}

func (b *Bot) handleExport(ctx context.Context, msg *telegram.Message) {
	participants, err := b.participantRepo.GetAll(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to load participants for export")
		b.reply(ctx, msg.Chat.ID, "❌ Export failed.", nil)
		return
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	record := func(fields ...string) {
		if err := writer.Write(fields); err != nil {
			log.WithError(err).Error("Failed to write CSV record")
		}
	}

	record("telegram_id", "username", "reward_state", "received_at", "created_at")
	for _, p := range participants {
		receivedAt := ""
		if p.ReceivedAt != nil {
			receivedAt = p.ReceivedAt.Format("2006-01-02 15:04")
		}
		record(
			fmt.Sprintf("%d", p.TelegramID),
			p.Username,
			string(p.RewardState),
			receivedAt,
			p.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	writer.Flush()

	filename := fmt.Sprintf("participants_%s.csv", time.Now().Format("20060102_1504"))
	caption := fmt.Sprintf("📄 Export: %d participants", len(participants))
	if err := b.client.SendDocument(ctx, msg.Chat.ID, filename, buf.Bytes(), caption); err != nil {
		log.WithError(err).Error("Failed to send export document")
		b.reply(ctx, msg.Chat.ID, "❌ Export failed.", nil)
	}
}

const defaultDonateStars = 100

// handleDonate issues a Telegram Stars invoice so an operator can top up the
// bot's balance in-band. The amount can be passed as "/donate 500".
func (b *Bot) handleDonate(ctx context.Context, msg *telegram.Message) {
	amount := parseDonateAmount(msg.Text)

	err := b.client.SendInvoice(ctx, msg.Chat.ID,
		"Star top-up",
		fmt.Sprintf("Top up the bot balance by %d stars", amount),
		fmt.Sprintf("donate_%d", amount),
		[]telegram.LabeledPrice{{Label: "Stars", Amount: amount}},
	)
	if err != nil {
		log.WithError(err).Error("Failed to send top-up invoice")
		b.reply(ctx, msg.Chat.ID, "❌ Could not create the invoice.", nil)
	}
}

// parseDonateAmount extracts the star amount from "/donate [amount]"
func parseDonateAmount(text string) int64 {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return defaultDonateStars
	}
	amount, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || amount <= 0 {
		return defaultDonateStars
	}
	return amount
}

// handlePreCheckout confirms the payment; there is nothing to validate, any
// star top-up is welcome
func (b *Bot) handlePreCheckout(ctx context.Context, query *telegram.PreCheckoutQuery) {
	if err := b.client.AnswerPreCheckoutQuery(ctx, query.ID, true, ""); err != nil {
		log.WithField("queryID", query.ID).WithError(err).Error("Failed to answer pre-checkout query")
	}
}

// handleSuccessfulPayment confirms the credit and nudges the operator toward
// the pending queue when one exists
func (b *Bot) handleSuccessfulPayment(ctx context.Context, msg *telegram.Message) {
	payment := msg.SuccessfulPayment

	log.WithFields(log.Fields{
		"telegramID": msg.From.ID,
		"amount":     payment.TotalAmount,
		"currency":   payment.Currency,
	}).Info("Payment received")

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Payment received!\n\n⭐ Added: %d stars", payment.TotalAmount), nil)

	pending, err := b.participantRepo.CountPending(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to count pending participants after payment")
		return
	}
	if pending > 0 {
		text := fmt.Sprintf("⏳ %d participants are waiting for a gift.\nRun /send_pending to send them.", pending)
		b.reply(ctx, msg.Chat.ID, text, nil)
	}
}

func (b *Bot) handlePause(ctx context.Context, msg *telegram.Message) {
	if !b.pause.Pause() {
		b.reply(ctx, msg.Chat.ID, "⏸ Already paused.", nil)
		return
	}

	log.WithField("telegramID", msg.From.ID).Info("Giveaway paused by admin")
	b.reply(ctx, msg.Chat.ID, "⏸ <b>Giveaway paused.</b>\n\nParticipants will see the pause message.", nil)
}

func (b *Bot) handleResume(ctx context.Context, msg *telegram.Message) {
	if !b.pause.Resume() {
		b.reply(ctx, msg.Chat.ID, "▶️ Already running.", nil)
		return
	}

	log.WithField("telegramID", msg.From.ID).Info("Giveaway resumed by admin")
	b.reply(ctx, msg.Chat.ID, "▶️ <b>Giveaway resumed.</b>", nil)
}

// handleSendPending drains the pending queue, editing a status message as the
// pass progresses. Every few attempts is enough; editing on each one would
// burn through the API rate limit.
func (b *Bot) handleSendPending(ctx context.Context, msg *telegram.Message) {
	statusMsg, err := b.client.SendMessage(ctx, msg.Chat.ID, common.FormatReconcileProgress(0, 0), nil)
	if err != nil {
		log.WithError(err).Warn("Failed to send reconciliation status message")
	}

	progress := func(done, total int) {
		if statusMsg == nil || done%5 != 0 {
			return
		}
		text := common.FormatReconcileProgress(done, total)
		if err := b.client.EditMessageText(ctx, statusMsg.Chat.ID, statusMsg.MessageID, text, nil); err != nil {
			log.WithError(err).Debug("Failed to edit reconciliation status")
		}
	}

	summary, err := b.reconcileService.Reconcile(ctx, progress)
	if err != nil {
		if errors.Is(err, service.ErrReconcileInProgress) {
			b.reply(ctx, msg.Chat.ID, "⏳ A sending pass is already running.", nil)
			return
		}
		log.WithError(err).Error("Reconciliation failed")
		b.reply(ctx, msg.Chat.ID, "❌ Sending failed, nothing was spent.", nil)
		return
	}

	final := common.FormatReconcileSummary(summary)
	if statusMsg != nil {
		if err := b.client.EditMessageText(ctx, statusMsg.Chat.ID, statusMsg.MessageID, final, nil); err != nil {
			b.reply(ctx, msg.Chat.ID, final, nil)
		}
	} else {
		b.reply(ctx, msg.Chat.ID, final, nil)
	}
}
