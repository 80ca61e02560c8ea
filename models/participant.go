package models

import (
	"time"
)

// RewardState represents the authoritative fulfillment status of a participant
type RewardState string

const (
	// RewardStateNone means no gift has been issued or queued
	RewardStateNone RewardState = "none"
	// RewardStatePending means the participant passed eligibility but issuance
	// was deferred for lack of stars
	RewardStatePending RewardState = "pending"
	// RewardStateReceived is terminal; no transition ever leaves it
	RewardStateReceived RewardState = "received"
)

// Participant represents a giveaway participant keyed by Telegram ID
type Participant struct {
	TelegramID         int64       `db:"telegram_id"`
	Username           string      `db:"username"`
	IsAdmin            bool        `db:"is_admin"`
	MembershipVerified bool        `db:"membership_verified"` // cached, refreshed on every check
	RewardState        RewardState `db:"reward_state"`
	ReceivedAt         *time.Time  `db:"received_at"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

// HasReceived reports whether the participant is in the terminal received state
func (p *Participant) HasReceived() bool {
	return p.RewardState == RewardStateReceived
}

// IsPending reports whether the participant is queued for reconciliation
func (p *Participant) IsPending() bool {
	return p.RewardState == RewardStatePending
}
