package common

import (
	"fmt"

	"giftbot/models"
	"giftbot/service"
)

// Callback data for the eligibility check button
const CallbackCheck = "giveaway:check"

// Participant-facing texts
const (
	WelcomeText = "🎄 <b>Welcome to the giveaway!</b>\n\n" +
		"To receive your gift:\n" +
		"1️⃣ Join our channel\n" +
		"2️⃣ Connect the VPN\n\n" +
		"Then press the button below to check."

	PausedText = "⏸ The giveaway is paused right now. Check back later!"

	AlreadyReceivedText = "🎁 You already received your gift. Thanks for participating!"

	PendingText = "⏳ You qualified! Your gift is queued and will arrive " +
		"as soon as we top up the bot. No need to do anything."

	GiftSentText = "🎉 <b>Congratulations!</b> Your gift is on its way. Enjoy!"

	GiftSentAlert = "🎁 Gift sent!"

	GiftPendingAlert = "⏳ You're in the queue, the gift will arrive soon."

	GiftFailedAlert = "❌ Could not send the gift right now. Try again in a minute."

	RegistrationFailedText = "❌ Something went wrong. Try again later."

	GiftMessage = "Happy holidays! 🎄"
)

// ConditionsNotMetText renders targeted guidance for the failed conditions
func ConditionsNotMetText(conditions models.VerificationResult) string {
	text := "🔍 <b>Not quite there yet:</b>\n\n"
	if conditions.Membership {
		text += "✅ Channel joined\n"
	} else {
		text += "❌ Join the channel\n"
	}
	if conditions.ServiceActive {
		text += "✅ VPN connected\n"
	} else {
		text += "❌ Connect the VPN\n"
	}
	text += "\nFix the ❌ items and check again."
	return text
}

// FormatStats renders the operator statistics snapshot
func FormatStats(stats *models.GiveawayStats, giftCost, minBalance int64) string {
	status := "▶️ Running"
	if stats.Paused {
		status = "⏸ Paused"
	}

	text := fmt.Sprintf(
		"📊 <b>Giveaway statistics</b>\n\n"+
			"🤖 Status: <b>%s</b>\n\n"+
			"👥 Participants: <b>%d</b>\n"+
			"🎁 Gifts sent: <b>%d</b>\n"+
			"⏳ Waiting for a gift: <b>%d</b>\n\n"+
			"⭐ Star balance: <b>%d</b>\n"+
			"💰 Gift cost: <b>%d</b> stars",
		status, stats.Participants, stats.GiftsSent, stats.Pending,
		stats.StarBalance, giftCost,
	)

	if service.IsLowBalance(stats.StarBalance, minBalance) {
		text += fmt.Sprintf("\n\n⚠️ <b>Warning!</b> Balance below %d stars.", minBalance)
	}
	return text
}

// FormatBalance renders the star balance report with queue coverage
func FormatBalance(balance, giftCost, pending, minBalance int64) string {
	giftsPossible := balance / giftCost

	text := fmt.Sprintf(
		"⭐ <b>Bot balance</b>\n\n"+
			"💫 Stars: <b>%d</b>\n"+
			"🎁 Gifts coverable: <b>%d</b>\n"+
			"⏳ Waiting for a gift: <b>%d</b>",
		balance, giftsPossible, pending,
	)

	if service.IsLowBalance(balance, minBalance) {
		text += fmt.Sprintf("\n\n⚠️ Balance below %d stars, top up the bot.", minBalance)
	}
	if pending > 0 && giftsPossible >= pending {
		text += "\n\n✅ Enough stars to cover the whole queue. Run /send_pending."
	}
	return text
}

// FormatReconcileProgress renders the in-flight /send_pending status line
func FormatReconcileProgress(done, total int) string {
	return fmt.Sprintf("⏳ Sending gifts: %d/%d...", done, total)
}

// FormatReconcileSummary renders the final /send_pending report
func FormatReconcileSummary(summary *models.ReconcileSummary) string {
	if summary.Shortfall > 0 {
		return fmt.Sprintf(
			"❌ Not enough stars for the whole queue.\n\nMissing: %d ⭐\n\nNothing was sent.",
			summary.Shortfall,
		)
	}
	if summary.Attempted == 0 {
		return "✅ Nobody is waiting for a gift."
	}
	return fmt.Sprintf(
		"✅ Done!\n\n📨 Sent: %d\n❌ Failed: %d",
		summary.Sent, summary.Failed,
	)
}

// AdminHelpText lists the operator commands
const AdminHelpText = "🔧 <b>Admin commands</b>\n\n" +
	"<b>Control:</b>\n" +
	"/pause — pause the giveaway\n" +
	"/resume — resume the giveaway\n\n" +
	"<b>Reporting:</b>\n" +
	"/stats — giveaway statistics\n" +
	"/balance — star balance\n" +
	"/export — participants as CSV\n\n" +
	"<b>Gifts:</b>\n" +
	"/send_pending — send queued gifts\n" +
	"/donate [amount] — top up the star balance\n\n" +
	"/admin — this help"
