package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timecop-bot/timecop/internal/models"
	"github.com/timecop-bot/timecop/internal/timeutil"
)

// EntryRepository handles time entry database operations
type EntryRepository struct {
	db *DB
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryColumns = `id, date, user_id, description, project, category, estimated_hours, original_text, created_at, updated_at`

// CreateBatch inserts all entries of one confirmation in a single
// transaction. Partial writes are never observable.
func (r *EntryRepository) CreateBatch(ctx context.Context, entries []*models.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", wrapStoreErr(err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO time_entries (id, date, user_id, description, project, category, estimated_hours, original_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, entry := range entries {
		_, err := tx.ExecContext(ctx, query,
			entry.ID,
			entry.Date,
			entry.UserID,
			entry.Description,
			entry.Project,
			entry.Category,
			entry.EstimatedHours,
			entry.OriginalText,
			entry.CreatedAt,
			entry.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", entry.ID, wrapStoreErr(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry batch: %w", wrapStoreErr(err))
	}

	return nil
}

// GetByUserAndDate retrieves all entries for a user on a given date,
// ordered by creation time.
func (r *EntryRepository) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*models.TimeEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE user_id = $1 AND date = $2
		ORDER BY created_at ASC
	`
	return r.queryEntries(ctx, query, userID, date)
}

// GetByUserAndDateRange retrieves all entries for a user within an inclusive
// date range, ordered by date then creation time.
func (r *EntryRepository) GetByUserAndDateRange(ctx context.Context, userID int64, start, end time.Time) ([]*models.TimeEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM time_entries
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC, created_at ASC
	`
	return r.queryEntries(ctx, query, userID, start, end)
}

// GetByUserAndMonth retrieves all entries for a user in a calendar month,
// ordered by date then creation time.
func (r *EntryRepository) GetByUserAndMonth(ctx context.Context, userID int64, year int, month time.Month) ([]*models.TimeEntry, error) {
	start, end := timeutil.MonthRange(year, month)
	return r.GetByUserAndDateRange(ctx, userID, start, end)
}

// Delete removes an entry if it is owned by the given user
func (r *EntryRepository) Delete(ctx context.Context, id uuid.UUID, userID int64) error {
	query := `DELETE FROM time_entries WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", wrapStoreErr(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", wrapStoreErr(err))
	}
	if rowsAffected == 0 {
		return fmt.Errorf("entry %s for user %d: %w", id, userID, ErrNotFound)
	}

	return nil
}

func (r *EntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*models.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %v: %w", err, ErrUnavailable)
	}
	defer rows.Close()

	var entries []*models.TimeEntry
	for rows.Next() {
		entry := &models.TimeEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.Date,
			&entry.UserID,
			&entry.Description,
			&entry.Project,
			&entry.Category,
			&entry.EstimatedHours,
			&entry.OriginalText,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %v: %w", err, ErrUnavailable)
	}

	return entries, nil
}

// wrapStoreErr maps low-level database failures onto the store error
// taxonomy so callers can branch without importing driver internals.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrConnDone || err == context.DeadlineExceeded {
		return fmt.Errorf("%v: %w", err, ErrUnavailable)
	}
	return fmt.Errorf("%v: %w", err, ErrWriteFailed)
}
