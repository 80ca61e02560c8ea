package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"giftbot/models"
)

// reconcileService implements the ReconcileService interface
type reconcileService struct {
	participantRepo ParticipantRepository
	sender          GiftSender
	gifts           GiftService
	giftCost        int64
	running         atomic.Bool
}

// NewReconcileService creates a new reconciliation service
func NewReconcileService(
	participantRepo ParticipantRepository,
	sender GiftSender,
	gifts GiftService,
	giftCost int64,
) ReconcileService {
	return &reconcileService{
		participantRepo: participantRepo,
		sender:          sender,
		gifts:           gifts,
		giftCost:        giftCost,
	}
}

// Reconcile drains the pending queue through the gift service. The pass
// aborts up front when the balance cannot cover the whole batch, so the
// operator learns the shortfall before anything is spent; once started, each
// participant is attempted exactly once and failures never block the rest.
func (s *reconcileService) Reconcile(ctx context.Context, progress func(done, total int)) (*models.ReconcileSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrReconcileInProgress
	}
	defer s.running.Store(false)

	runID := uuid.New().String()
	summary := &models.ReconcileSummary{}

	pending, err := s.participantRepo.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending participants: %w", err)
	}
	if len(pending) == 0 {
		log.WithField("runID", runID).Info("No pending participants to reconcile")
		return summary, nil
	}

	balance, err := s.sender.StarBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check star balance: %w", err)
	}

	required := int64(len(pending)) * s.giftCost
	if balance < required {
		summary.Shortfall = required - balance
		log.WithFields(log.Fields{
			"runID":     runID,
			"pending":   len(pending),
			"required":  required,
			"balance":   balance,
			"shortfall": summary.Shortfall,
		}).Warn("Insufficient balance for pending batch, aborting reconciliation")
		return summary, nil
	}

	log.WithFields(log.Fields{
		"runID":   runID,
		"pending": len(pending),
		"balance": balance,
	}).Info("Starting reconciliation pass")

	for i, participant := range pending {
		if ctx.Err() != nil {
			log.WithFields(log.Fields{
				"runID":     runID,
				"processed": i,
			}).Warn("Reconciliation cancelled")
			break
		}

		summary.Attempted++

		result, err := s.gifts.Issue(ctx, participant.TelegramID)
		if err != nil {
			// Per-item isolation: one broken participant never blocks the rest
			log.WithFields(log.Fields{
				"runID":      runID,
				"telegramID": participant.TelegramID,
			}).WithError(err).Error("Failed to reconcile participant")
			summary.Failed++
		} else if result == models.IssueSent {
			summary.Sent++
		} else {
			summary.Failed++
		}

		if progress != nil {
			progress(i+1, len(pending))
		}
	}

	log.WithFields(log.Fields{
		"runID":     runID,
		"attempted": summary.Attempted,
		"sent":      summary.Sent,
		"failed":    summary.Failed,
	}).Info("Reconciliation pass finished")

	return summary, nil
}
