package common

import (
	"testing"

	"giftbot/models"

	"github.com/stretchr/testify/assert"
)

func TestConditionsNotMetText(t *testing.T) {
	text := ConditionsNotMetText(models.VerificationResult{Membership: true, ServiceActive: false})
	assert.Contains(t, text, "✅ Channel joined")
	assert.Contains(t, text, "❌ Connect the VPN")

	text = ConditionsNotMetText(models.VerificationResult{Membership: false, ServiceActive: true})
	assert.Contains(t, text, "❌ Join the channel")
	assert.Contains(t, text, "✅ VPN connected")
}

func TestFormatReconcileSummary(t *testing.T) {
	t.Run("shortfall", func(t *testing.T) {
		text := FormatReconcileSummary(&models.ReconcileSummary{Shortfall: 25})
		assert.Contains(t, text, "Missing: 25")
		assert.Contains(t, text, "Nothing was sent")
	})

	t.Run("empty queue", func(t *testing.T) {
		text := FormatReconcileSummary(&models.ReconcileSummary{})
		assert.Contains(t, text, "Nobody is waiting")
	})

	t.Run("finished pass", func(t *testing.T) {
		text := FormatReconcileSummary(&models.ReconcileSummary{Attempted: 3, Sent: 2, Failed: 1})
		assert.Contains(t, text, "Sent: 2")
		assert.Contains(t, text, "Failed: 1")
	})
}

func TestFormatStats_LowBalanceWarning(t *testing.T) {
	stats := &models.GiveawayStats{Participants: 10, GiftsSent: 3, Pending: 2, StarBalance: 50}

	text := FormatStats(stats, 15, 100)
	assert.Contains(t, text, "Warning!")

	// A balance sitting exactly on the floor is not low
	stats.StarBalance = 100
	text = FormatStats(stats, 15, 100)
	assert.NotContains(t, text, "Warning!")
}

func TestFormatBalance_LowBalanceWarning(t *testing.T) {
	text := FormatBalance(99, 15, 0, 100)
	assert.Contains(t, text, "top up the bot")

	text = FormatBalance(100, 15, 0, 100)
	assert.NotContains(t, text, "top up the bot")
}

func TestConditionsFailedKeyboard(t *testing.T) {
	// Only the unmet conditions get link buttons; check-again is always last
	kb := ConditionsFailedKeyboard("chan", "vpnbot", true, false)
	assert.Len(t, kb.InlineKeyboard, 2)
	assert.Contains(t, kb.InlineKeyboard[0][0].URL, "vpnbot")
	assert.Equal(t, CallbackCheck, kb.InlineKeyboard[1][0].CallbackData)

	kb = ConditionsFailedKeyboard("chan", "vpnbot", false, false)
	assert.Len(t, kb.InlineKeyboard, 3)
}
