package telegram

import (
	"context"
	"errors"
	"strings"

	"giftbot/service"
)

// GiftSender adapts the Bot API client to the gift issuance interface
type GiftSender struct {
	client   *Client
	giftID   string
	giftText string
}

// NewGiftSender creates a sender for the configured gift
func NewGiftSender(client *Client, giftID, giftText string) *GiftSender {
	return &GiftSender{
		client:   client,
		giftID:   giftID,
		giftText: giftText,
	}
}

// StarBalance returns the bot's current star balance
func (s *GiftSender) StarBalance(ctx context.Context) (int64, error) {
	return s.client.GetMyStarBalance(ctx)
}

// SendGift sends the configured gift to a participant. An API rejection that
// names the balance is surfaced as ErrInsufficientStars so callers can route
// the participant to the pending queue instead of failing outright.
func (s *GiftSender) SendGift(ctx context.Context, telegramID int64) error {
	err := s.client.SendGift(ctx, telegramID, s.giftID, s.giftText)
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && isBalanceError(apiErr) {
		return service.ErrInsufficientStars
	}
	return err
}

// isBalanceError matches the Bot API's insufficient-balance rejections, which
// are only distinguishable by description text
func isBalanceError(err *APIError) bool {
	desc := strings.ToLower(err.Description)
	return strings.Contains(desc, "not enough") || strings.Contains(desc, "balance")
}

// AdminNotifier delivers plain-text messages to admins over the Bot API
type AdminNotifier struct {
	client *Client
}

// NewAdminNotifier creates a notifier backed by the Bot API client
func NewAdminNotifier(client *Client) *AdminNotifier {
	return &AdminNotifier{client: client}
}

// Notify sends a message to the given admin's private chat
func (n *AdminNotifier) Notify(ctx context.Context, adminID int64, text string) error {
	_, err := n.client.SendMessage(ctx, adminID, text, nil)
	return err
}
