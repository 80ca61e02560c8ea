package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"giftbot/models"
)

// eligibilityService implements the EligibilityService interface
type eligibilityService struct {
	participantRepo ParticipantRepository
	membership      MembershipVerifier
	activation      ActivationVerifier
	gifts           GiftService
	pause           *PauseState
}

// NewEligibilityService creates a new eligibility service
func NewEligibilityService(
	participantRepo ParticipantRepository,
	membership MembershipVerifier,
	activation ActivationVerifier,
	gifts GiftService,
	pause *PauseState,
) EligibilityService {
	return &eligibilityService{
		participantRepo: participantRepo,
		membership:      membership,
		activation:      activation,
		gifts:           gifts,
		pause:           pause,
	}
}

// Evaluate runs one eligibility check for the participant. Terminal states
// short-circuit before any external call, so repeated evaluation is always
// safe: a received participant stays received, a pending participant never
// re-enters condition checking and never re-triggers the low-balance
// notification.
func (s *eligibilityService) Evaluate(ctx context.Context, telegramID int64) (*models.Evaluation, error) {
	if s.pause.IsPaused() {
		return &models.Evaluation{Outcome: models.OutcomePaused}, nil
	}

	participant, err := s.participantRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}
	if participant == nil {
		return nil, ErrParticipantNotFound
	}

	if participant.HasReceived() {
		return &models.Evaluation{Outcome: models.OutcomeGiftReceived}, nil
	}
	if participant.IsPending() {
		return &models.Evaluation{Outcome: models.OutcomeGiftPending}, nil
	}

	// Both verifiers fail closed, so a flaky upstream reads as "condition not
	// met" and the participant can simply check again.
	result := models.VerificationResult{
		Membership:    s.membership.Check(ctx, telegramID),
		ServiceActive: s.activation.Check(ctx, telegramID),
	}

	// Only the membership half is cached on the row; activation is re-derived
	// every check since it changes independently.
	if err := s.participantRepo.SetMembershipVerified(ctx, telegramID, result.Membership); err != nil {
		return nil, fmt.Errorf("failed to persist membership result: %w", err)
	}

	if !result.AllMet() {
		log.WithFields(log.Fields{
			"telegramID":    telegramID,
			"membership":    result.Membership,
			"serviceActive": result.ServiceActive,
		}).Info("Conditions not met")
		return &models.Evaluation{
			Outcome:    models.OutcomeConditionsUnmet,
			Conditions: result,
		}, nil
	}

	issueResult, err := s.gifts.Issue(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue gift: %w", err)
	}

	switch issueResult {
	case models.IssueSent:
		return &models.Evaluation{Outcome: models.OutcomeGiftSent}, nil
	case models.IssueInsufficientBalance:
		return &models.Evaluation{Outcome: models.OutcomeGiftPending}, nil
	default:
		return &models.Evaluation{Outcome: models.OutcomeGiftFailed}, nil
	}
}
