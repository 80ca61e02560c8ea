package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"giftbot/database"
	"giftbot/models"
)

const participantColumns = `
	telegram_id,
	username,
	is_admin,
	membership_verified,
	reward_state,
	received_at,
	created_at,
	updated_at`

// ParticipantRepository implements the service.ParticipantRepository interface
type ParticipantRepository struct {
	q Queryable
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *database.DB) *ParticipantRepository {
	return &ParticipantRepository{q: db.Pool}
}

// NewParticipantRepositoryWithTx creates a participant repository bound to a transaction
func NewParticipantRepositoryWithTx(tx Queryable) *ParticipantRepository {
	return &ParticipantRepository{q: tx}
}

// CreateIfAbsent inserts a participant record if none exists for the Telegram ID.
// Returns true iff a new record was created. Re-registration never overwrites
// an existing row, so fulfillment state survives repeated /start.
func (r *ParticipantRepository) CreateIfAbsent(ctx context.Context, telegramID int64, username string) (bool, error) {
	query := `
		INSERT INTO participants (telegram_id, username)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id) DO NOTHING
		RETURNING telegram_id
	`

	var id int64
	err := r.q.QueryRow(ctx, query, telegramID, username).Scan(&id)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create participant %d: %w", telegramID, err)
	}

	return true, nil
}

// GetByTelegramID retrieves a participant by Telegram ID, nil if absent
func (r *ParticipantRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Participant, error) {
	query := `SELECT` + participantColumns + `
		FROM participants
		WHERE telegram_id = $1
	`

	participant, err := scanParticipant(r.q.QueryRow(ctx, query, telegramID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant %d: %w", telegramID, err)
	}

	return participant, nil
}

// SetMembershipVerified updates the cached membership check result
func (r *ParticipantRepository) SetMembershipVerified(ctx context.Context, telegramID int64, verified bool) error {
	query := `
		UPDATE participants
		SET membership_verified = $1, updated_at = NOW()
		WHERE telegram_id = $2
	`

	result, err := r.q.Exec(ctx, query, verified, telegramID)
	if err != nil {
		return fmt.Errorf("failed to update membership for participant %d: %w", telegramID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant %d not found", telegramID)
	}

	return nil
}

// SetPending moves a participant into or out of the pending queue. It never
// touches a received participant: received is terminal.
func (r *ParticipantRepository) SetPending(ctx context.Context, telegramID int64, pending bool) error {
	state := models.RewardStateNone
	if pending {
		state = models.RewardStatePending
	}

	query := `
		UPDATE participants
		SET reward_state = $1, updated_at = NOW()
		WHERE telegram_id = $2 AND reward_state <> 'received'
	`

	result, err := r.q.Exec(ctx, query, state, telegramID)
	if err != nil {
		return fmt.Errorf("failed to set pending for participant %d: %w", telegramID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("participant %d not found or already received", telegramID)
	}

	return nil
}

// MarkReceived transitions a participant to the terminal received state,
// stamping received_at and clearing any pending flag in the same statement.
// The update is conditional on the row not already being received; a
// concurrent duplicate attempt loses the race and gets false with no error,
// which callers treat as success-equivalent.
func (r *ParticipantRepository) MarkReceived(ctx context.Context, telegramID int64) (bool, error) {
	query := `
		UPDATE participants
		SET reward_state = 'received', received_at = NOW(), updated_at = NOW()
		WHERE telegram_id = $1 AND reward_state <> 'received'
	`

	result, err := r.q.Exec(ctx, query, telegramID)
	if err != nil {
		return false, fmt.Errorf("failed to mark participant %d received: %w", telegramID, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetPending returns all participants awaiting reconciliation, oldest first
func (r *ParticipantRepository) GetPending(ctx context.Context) ([]*models.Participant, error) {
	query := `SELECT` + participantColumns + `
		FROM participants
		WHERE reward_state = 'pending'
		ORDER BY updated_at ASC
	`

	return r.queryParticipants(ctx, query)
}

// GetAll returns all participants for admin export, oldest first
func (r *ParticipantRepository) GetAll(ctx context.Context) ([]*models.Participant, error) {
	query := `SELECT` + participantColumns + `
		FROM participants
		ORDER BY created_at ASC
	`

	return r.queryParticipants(ctx, query)
}

// CountParticipants returns the total number of participants
func (r *ParticipantRepository) CountParticipants(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM participants`)
}

// CountReceived returns the number of participants holding a gift
func (r *ParticipantRepository) CountReceived(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM participants WHERE reward_state = 'received'`)
}

// CountPending returns the number of participants awaiting reconciliation
func (r *ParticipantRepository) CountPending(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM participants WHERE reward_state = 'pending'`)
}

// EnsureAdmin upserts a participant row with the admin flag set. Run at
// startup for the configured admin IDs so admin commands work before /start.
func (r *ParticipantRepository) EnsureAdmin(ctx context.Context, telegramID int64) error {
	query := `
		INSERT INTO participants (telegram_id, is_admin)
		VALUES ($1, TRUE)
		ON CONFLICT (telegram_id) DO UPDATE SET is_admin = TRUE
	`

	if _, err := r.q.Exec(ctx, query, telegramID); err != nil {
		return fmt.Errorf("failed to ensure admin %d: %w", telegramID, err)
	}

	return nil
}

// IsAdmin reports whether the participant row carries the admin flag
func (r *ParticipantRepository) IsAdmin(ctx context.Context, telegramID int64) (bool, error) {
	query := `SELECT is_admin FROM participants WHERE telegram_id = $1`

	var isAdmin bool
	err := r.q.QueryRow(ctx, query, telegramID).Scan(&isAdmin)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check admin flag for %d: %w", telegramID, err)
	}

	return isAdmin, nil
}

func (r *ParticipantRepository) count(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return n, nil
}

func (r *ParticipantRepository) queryParticipants(ctx context.Context, query string) ([]*models.Participant, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, participant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

func scanParticipant(row pgx.Row) (*models.Participant, error) {
	var p models.Participant
	err := row.Scan(
		&p.TelegramID,
		&p.Username,
		&p.IsAdmin,
		&p.MembershipVerified,
		&p.RewardState,
		&p.ReceivedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
