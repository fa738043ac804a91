package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/timecop-bot/timecop/internal/models"
)

// SessionRepository handles conversation session database operations
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Get retrieves the session for a user. A user with no stored session is
// indistinguishable from one at idle, so absence yields a fresh idle session.
func (r *SessionRepository) Get(ctx context.Context, userID int64) (*models.UserSession, error) {
	query := `
		SELECT user_id, state, pending_data, updated_at
		FROM user_sessions
		WHERE user_id = $1
	`

	var (
		session models.UserSession
		raw     []byte
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&session.UserID,
		&session.State,
		&raw,
		&session.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewIdleSession(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session for user %d: %v: %w", userID, err, ErrUnavailable)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &session.Pending); err != nil {
			return nil, fmt.Errorf("failed to decode pending data for user %d: %w", userID, err)
		}
	}
	if !session.State.Valid() {
		// Corrupt state is unrecoverable mid-flow; restart at idle.
		return models.NewIdleSession(userID), nil
	}

	return &session, nil
}

// Save upserts the session for a user
func (r *SessionRepository) Save(ctx context.Context, session *models.UserSession) error {
	raw, err := json.Marshal(session.Pending)
	if err != nil {
		return fmt.Errorf("failed to encode pending data: %w", err)
	}

	session.UpdatedAt = time.Now()

	query := `
		INSERT INTO user_sessions (user_id, state, pending_data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET state = EXCLUDED.state,
		    pending_data = EXCLUDED.pending_data,
		    updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, session.UserID, session.State, raw, session.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save session for user %d: %w", session.UserID, wrapStoreErr(err))
	}

	return nil
}
