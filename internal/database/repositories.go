package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/timecop-bot/timecop/internal/models"
)

// EntryStore defines the contract for persisting and querying time entries.
// This interface enables better testability by allowing mock implementations.
type EntryStore interface {
	// CreateBatch persists all entries of one confirmation as a single
	// atomic unit: either every entry becomes visible or none do.
	CreateBatch(ctx context.Context, entries []*models.TimeEntry) error
	GetByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*models.TimeEntry, error)
	GetByUserAndDateRange(ctx context.Context, userID int64, start, end time.Time) ([]*models.TimeEntry, error)
	GetByUserAndMonth(ctx context.Context, userID int64, year int, month time.Month) ([]*models.TimeEntry, error)
	// Delete removes an entry after verifying ownership; returns
	// ErrNotFound when the entry does not exist or belongs to another user.
	Delete(ctx context.Context, id uuid.UUID, userID int64) error
}

// SessionStore defines the contract for conversation session persistence
type SessionStore interface {
	// Get returns the user's session, or a default Idle session if absent
	Get(ctx context.Context, userID int64) (*models.UserSession, error)
	Save(ctx context.Context, session *models.UserSession) error
}

// Ensure concrete types implement the interfaces
var (
	_ EntryStore   = (*EntryRepository)(nil)
	_ SessionStore = (*SessionRepository)(nil)
	_ EntryStore   = (*MemoryStore)(nil)
	_ SessionStore = (*MemoryStore)(nil)
)
