package telegram

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// memberStatuses are the getChatMember statuses that count as being in the
// channel. "left" and "kicked" do not, and neither does "restricted".
var memberStatuses = map[string]bool{
	"member":        true,
	"administrator": true,
	"creator":       true,
}

// MembershipVerifier checks channel membership through the Bot API. It fails
// closed: any API error reads as "not a member", and the participant can
// simply check again once the API recovers.
type MembershipVerifier struct {
	client  *Client
	channel string // username without @
}

// NewMembershipVerifier creates a verifier for the given channel username
func NewMembershipVerifier(client *Client, channel string) *MembershipVerifier {
	return &MembershipVerifier{
		client:  client,
		channel: channel,
	}
}

// Check reports whether the user is currently a member of the channel
func (v *MembershipVerifier) Check(ctx context.Context, telegramID int64) bool {
	member, err := v.client.GetChatMember(ctx, "@"+v.channel, telegramID)
	if err != nil {
		log.WithFields(log.Fields{
			"telegramID": telegramID,
			"channel":    v.channel,
		}).WithError(err).Warn("Membership check failed, treating as not a member")
		return false
	}

	return memberStatuses[member.Status]
}
