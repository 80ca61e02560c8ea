package common

import (
	"fmt"

	"giftbot/telegram"
)

// MainMenuKeyboard links the two conditions and the check button
func MainMenuKeyboard(channelUsername, vpnBotUsername string) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "📢 Join the channel", URL: channelURL(channelUsername)}},
			{{Text: "🔐 Connect the VPN", URL: botURL(vpnBotUsername)}},
			{{Text: "✅ Check conditions", CallbackData: CallbackCheck}},
		},
	}
}

// ConditionsFailedKeyboard repeats only the links for the unmet conditions
func ConditionsFailedKeyboard(channelUsername, vpnBotUsername string, membership, serviceActive bool) *telegram.InlineKeyboardMarkup {
	var rows [][]telegram.InlineKeyboardButton
	if !membership {
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: "📢 Join the channel", URL: channelURL(channelUsername)},
		})
	}
	if !serviceActive {
		rows = append(rows, []telegram.InlineKeyboardButton{
			{Text: "🔐 Connect the VPN", URL: botURL(vpnBotUsername)},
		})
	}
	rows = append(rows, []telegram.InlineKeyboardButton{
		{Text: "🔄 Check again", CallbackData: CallbackCheck},
	})

	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func channelURL(username string) string {
	return fmt.Sprintf("https://t.me/%s", username)
}

func botURL(username string) string {
	return fmt.Sprintf("https://t.me/%s", username)
}
