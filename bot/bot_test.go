package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "/start", want: "start"},
		{text: "/start some payload", want: "start"},
		{text: "/stats@giveaway_bot", want: "stats"},
		{text: "/send_pending", want: "send_pending"},
		{text: "hello", want: ""},
		{text: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCommand(tt.text), "text: %q", tt.text)
	}
}

func TestParseDonateAmount(t *testing.T) {
	tests := []struct {
		text string
		want int64
	}{
		{text: "/donate", want: defaultDonateStars},
		{text: "/donate 500", want: 500},
		{text: "/donate abc", want: defaultDonateStars},
		{text: "/donate -5", want: defaultDonateStars},
		{text: "/donate 0", want: defaultDonateStars},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseDonateAmount(tt.text), "text: %q", tt.text)
	}
}
