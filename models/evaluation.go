package models

// VerificationResult holds the fresh per-check verifier outputs. It is never
// persisted; the membership half is cached on the participant row separately.
type VerificationResult struct {
	Membership    bool
	ServiceActive bool
}

// AllMet reports whether both giveaway conditions are satisfied
func (v VerificationResult) AllMet() bool {
	return v.Membership && v.ServiceActive
}

// EvaluationOutcome represents the result of one eligibility evaluation
type EvaluationOutcome string

const (
	// OutcomeGiftSent means the gift was issued during this evaluation
	OutcomeGiftSent EvaluationOutcome = "gift_sent"
	// OutcomeGiftReceived means the participant already holds the gift
	OutcomeGiftReceived EvaluationOutcome = "gift_received"
	// OutcomeGiftPending means the participant is queued for reconciliation
	OutcomeGiftPending EvaluationOutcome = "gift_pending"
	// OutcomeConditionsUnmet means at least one condition failed
	OutcomeConditionsUnmet EvaluationOutcome = "conditions_unmet"
	// OutcomeGiftFailed means issuance failed transiently; the participant may retry
	OutcomeGiftFailed EvaluationOutcome = "gift_failed"
	// OutcomePaused means the giveaway is paused and no checks were run
	OutcomePaused EvaluationOutcome = "paused"
)

// Evaluation is the full result of EligibilityService.Evaluate. Conditions is
// only meaningful for OutcomeConditionsUnmet, where it carries the
// per-condition booleans for targeted guidance.
type Evaluation struct {
	Outcome    EvaluationOutcome
	Conditions VerificationResult
}

// IssueResult classifies the outcome of a single gift issuance attempt
type IssueResult string

const (
	// IssueSent means the gift was sent and the participant marked received
	IssueSent IssueResult = "sent"
	// IssueInsufficientBalance means the star balance cannot cover the gift
	IssueInsufficientBalance IssueResult = "insufficient_balance"
	// IssueFailed means a transient or unknown failure; state is unchanged
	IssueFailed IssueResult = "failed"
)

// ReconcileSummary aggregates the outcome of one reconciliation pass
type ReconcileSummary struct {
	Attempted int
	Sent      int
	Failed    int

	// Shortfall is non-zero when the pass aborted pre-flight: the number of
	// stars missing to cover the whole pending set
	Shortfall int64
}

// GiveawayStats is the operator-facing snapshot used by admin reporting
type GiveawayStats struct {
	Participants int64
	GiftsSent    int64
	Pending      int64
	StarBalance  int64
	Paused       bool
}
