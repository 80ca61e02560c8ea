package service

import (
	"context"

	"giftbot/events"
	"giftbot/models"
)

// ParticipantRepository defines the interface for participant data access
type ParticipantRepository interface {
	// CreateIfAbsent inserts a participant if none exists; true iff created
	CreateIfAbsent(ctx context.Context, telegramID int64, username string) (bool, error)

	// GetByTelegramID retrieves a participant, nil if absent
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.Participant, error)

	// SetMembershipVerified updates the cached membership check result
	SetMembershipVerified(ctx context.Context, telegramID int64, verified bool) error

	// SetPending moves a participant into or out of the pending queue
	SetPending(ctx context.Context, telegramID int64, pending bool) error

	// MarkReceived conditionally transitions to the terminal received state;
	// false (no error) means the participant was already received
	MarkReceived(ctx context.Context, telegramID int64) (bool, error)

	// GetPending returns all participants awaiting reconciliation
	GetPending(ctx context.Context) ([]*models.Participant, error)

	// GetAll returns all participants for admin export
	GetAll(ctx context.Context) ([]*models.Participant, error)

	// CountParticipants returns the total number of participants
	CountParticipants(ctx context.Context) (int64, error)

	// CountReceived returns the number of participants holding a gift
	CountReceived(ctx context.Context) (int64, error)

	// CountPending returns the number of participants awaiting reconciliation
	CountPending(ctx context.Context) (int64, error)

	// EnsureAdmin upserts a participant row with the admin flag set
	EnsureAdmin(ctx context.Context, telegramID int64) error

	// IsAdmin reports whether the participant row carries the admin flag
	IsAdmin(ctx context.Context, telegramID int64) (bool, error)
}

// MembershipVerifier checks the channel-membership condition. Implementations
// fail closed: any upstream error reads as "condition not met".
type MembershipVerifier interface {
	Check(ctx context.Context, telegramID int64) bool
}

// ActivationVerifier checks the VPN-activation condition. Implementations
// fail closed: any upstream error reads as "condition not met".
type ActivationVerifier interface {
	Check(ctx context.Context, telegramID int64) bool
}

// GiftSender wraps the external star-balance and gift-sending API
type GiftSender interface {
	// StarBalance returns the current spendable star balance
	StarBalance(ctx context.Context) (int64, error)

	// SendGift sends the configured gift to a participant. Returns
	// ErrInsufficientStars when the balance cannot cover the gift.
	SendGift(ctx context.Context, telegramID int64) error
}

// AdminNotifier delivers best-effort messages to a privileged actor
type AdminNotifier interface {
	Notify(ctx context.Context, adminID int64, text string) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event)
}

// EligibilityService drives a participant through the eligibility state machine
type EligibilityService interface {
	// Evaluate runs one eligibility check for the participant and, when both
	// conditions hold, attempts gift issuance. Safe to call repeatedly.
	Evaluate(ctx context.Context, telegramID int64) (*models.Evaluation, error)
}

// GiftService issues gifts against the star balance
type GiftService interface {
	// Issue attempts to send the gift to an eligible participant. An
	// insufficient balance routes the participant to pending and notifies
	// admins once per transition; transient failures leave state unchanged.
	Issue(ctx context.Context, telegramID int64) (models.IssueResult, error)
}

// ReconcileService drains the pending queue when stars have been topped up
type ReconcileService interface {
	// Reconcile re-attempts issuance for every pending participant. The
	// progress callback, if non-nil, is invoked after each attempt. Returns
	// ErrReconcileInProgress when a pass is already running.
	Reconcile(ctx context.Context, progress func(done, total int)) (*models.ReconcileSummary, error)
}

// StatsService produces the operator-facing giveaway snapshot
type StatsService interface {
	Snapshot(ctx context.Context) (*models.GiveawayStats, error)
}
