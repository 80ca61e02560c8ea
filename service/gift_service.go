package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"giftbot/events"
	"giftbot/models"
)

// giftService implements the GiftService interface
type giftService struct {
	participantRepo ParticipantRepository
	sender          GiftSender
	guard           *BalanceGuard
	publisher       EventPublisher
	giftCost        int64
}

// NewGiftService creates a new gift service
func NewGiftService(
	participantRepo ParticipantRepository,
	sender GiftSender,
	guard *BalanceGuard,
	publisher EventPublisher,
	giftCost int64,
) GiftService {
	return &giftService{
		participantRepo: participantRepo,
		sender:          sender,
		guard:           guard,
		publisher:       publisher,
		giftCost:        giftCost,
	}
}

// Issue attempts to send the gift to a participant. The balance pre-flight
// avoids a send that is guaranteed to fail; it is an optimization, not a
// guarantee, so a send-time insufficient-balance error is classified the same
// way. A participant found already received is success-equivalent: no second
// send, no error.
func (s *giftService) Issue(ctx context.Context, telegramID int64) (models.IssueResult, error) {
	attemptID := uuid.New().String()

	participant, err := s.participantRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return models.IssueFailed, fmt.Errorf("failed to load participant: %w", err)
	}
	if participant == nil {
		return models.IssueFailed, ErrParticipantNotFound
	}
	if participant.HasReceived() {
		return models.IssueSent, nil
	}

	balance, err := s.sender.StarBalance(ctx)
	if err != nil {
		// The send attempt below classifies the failure; losing the
		// pre-flight only costs one doomed API call.
		log.WithFields(log.Fields{
			"telegramID": telegramID,
			"attemptID":  attemptID,
		}).WithError(err).Warn("Failed to check star balance, attempting send anyway")
		balance = -1
	} else if balance < s.giftCost {
		if err := s.deferToPending(ctx, participant, balance); err != nil {
			return models.IssueFailed, err
		}
		return models.IssueInsufficientBalance, nil
	}

	if err := s.sender.SendGift(ctx, telegramID); err != nil {
		if errors.Is(err, ErrInsufficientStars) {
			if balance < 0 {
				balance = 0
			}
			if err := s.deferToPending(ctx, participant, balance); err != nil {
				return models.IssueFailed, err
			}
			return models.IssueInsufficientBalance, nil
		}

		log.WithFields(log.Fields{
			"telegramID": telegramID,
			"attemptID":  attemptID,
		}).WithError(err).Error("Failed to send gift")
		return models.IssueFailed, nil
	}

	received, err := s.participantRepo.MarkReceived(ctx, telegramID)
	if err != nil {
		// The gift went out but the row did not flip: the participant stays
		// locally unfulfilled against an external grant. Loud log so an
		// operator can repair the row.
		log.WithFields(log.Fields{
			"telegramID": telegramID,
			"attemptID":  attemptID,
		}).WithError(err).Error("Gift sent but participant not marked received")
		return models.IssueFailed, fmt.Errorf("failed to mark participant received: %w", err)
	}
	if !received {
		// A concurrent issuance won the conditional update first.
		log.WithFields(log.Fields{
			"telegramID": telegramID,
			"attemptID":  attemptID,
		}).Warn("Participant already marked received by concurrent issuance")
	}

	s.publisher.Emit(ctx, events.GiftSentEvent{TelegramID: telegramID})
	log.WithFields(log.Fields{
		"telegramID": telegramID,
		"attemptID":  attemptID,
	}).Info("Gift sent")

	return models.IssueSent, nil
}

// deferToPending queues the participant for reconciliation. The low-balance
// notification fires only on the transition into pending, never for a
// participant already queued.
func (s *giftService) deferToPending(ctx context.Context, participant *models.Participant, balance int64) error {
	wasPending := participant.IsPending()

	if err := s.participantRepo.SetPending(ctx, participant.TelegramID, true); err != nil {
		return fmt.Errorf("failed to set participant pending: %w", err)
	}

	if !wasPending {
		s.guard.NotifyLowBalance(ctx, balance)
		s.publisher.Emit(ctx, events.ParticipantDeferredEvent{
			TelegramID:  participant.TelegramID,
			StarBalance: balance,
			RewardState: models.RewardStatePending,
		})
	}

	log.WithFields(log.Fields{
		"telegramID": participant.TelegramID,
		"balance":    balance,
	}).Warn("Participant deferred to pending queue")

	return nil
}
