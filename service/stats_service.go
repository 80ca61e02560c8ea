package service

import (
	"context"
	"fmt"

	"giftbot/models"
)

// statsService implements the StatsService interface
type statsService struct {
	participantRepo ParticipantRepository
	sender          GiftSender
	pause           *PauseState
}

// NewStatsService creates a new stats service
func NewStatsService(participantRepo ParticipantRepository, sender GiftSender, pause *PauseState) StatsService {
	return &statsService{
		participantRepo: participantRepo,
		sender:          sender,
		pause:           pause,
	}
}

// Snapshot collects the operator-facing counters and the live star balance
func (s *statsService) Snapshot(ctx context.Context) (*models.GiveawayStats, error) {
	participants, err := s.participantRepo.CountParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	received, err := s.participantRepo.CountReceived(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count received: %w", err)
	}

	pending, err := s.participantRepo.CountPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending: %w", err)
	}

	balance, err := s.sender.StarBalance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check star balance: %w", err)
	}

	return &models.GiveawayStats{
		Participants: participants,
		GiftsSent:    received,
		Pending:      pending,
		StarBalance:  balance,
		Paused:       s.pause.IsPaused(),
	}, nil
}
