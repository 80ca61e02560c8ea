package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// IsLowBalance reports whether the balance has dropped below the warning floor
func IsLowBalance(balance, floor int64) bool {
	return balance < floor
}

// BalanceGuard fans low-balance warnings out to every configured admin.
// Delivery is best-effort: a failed notification is logged and dropped, it
// never rolls back the pending-state transition that triggered it.
type BalanceGuard struct {
	notifier AdminNotifier
	adminIDs []int64
	giftCost int64
}

// NewBalanceGuard creates a new balance guard
func NewBalanceGuard(notifier AdminNotifier, adminIDs []int64, giftCost int64) *BalanceGuard {
	return &BalanceGuard{
		notifier: notifier,
		adminIDs: adminIDs,
		giftCost: giftCost,
	}
}

// NotifyLowBalance tells every admin the current balance cannot cover a gift
func (g *BalanceGuard) NotifyLowBalance(ctx context.Context, balance int64) {
	text := fmt.Sprintf(
		"⚠️ Not enough stars for a gift!\n\nBalance: %d ⭐\nGift cost: %d ⭐\n\nTop up with /donate, then run /send_pending.",
		balance, g.giftCost,
	)

	delivered := 0
	for _, adminID := range g.adminIDs {
		if err := g.notifier.Notify(ctx, adminID, text); err != nil {
			log.WithFields(log.Fields{
				"adminID": adminID,
			}).WithError(err).Error("Failed to notify admin of low balance")
			continue
		}
		delivered++
	}

	log.WithFields(log.Fields{
		"balance":   balance,
		"admins":    len(g.adminIDs),
		"delivered": delivered,
	}).Warn("Low balance notification sent")
}
