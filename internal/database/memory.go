package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timecop-bot/timecop/internal/models"
	"github.com/timecop-bot/timecop/internal/timeutil"
)

// MemoryStore is an in-memory implementation of EntryStore and SessionStore
// used in tests and local development without Postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[uuid.UUID]*models.TimeEntry
	order    map[uuid.UUID]int
	sessions map[int64]*models.UserSession
	seq      int

	// FailWrites makes every mutating call fail, leaving stored state
	// untouched.
	FailWrites bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[uuid.UUID]*models.TimeEntry),
		order:    make(map[uuid.UUID]int),
		sessions: make(map[int64]*models.UserSession),
	}
}

// CreateBatch stores all entries or none of them
func (s *MemoryStore) CreateBatch(ctx context.Context, entries []*models.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return fmt.Errorf("memory store: %w", ErrWriteFailed)
	}

	for _, entry := range entries {
		copied := *entry
		s.entries[entry.ID] = &copied
		s.seq++
		s.order[entry.ID] = s.seq
	}
	return nil
}

// GetByUserAndDate returns entries for a user on a date in creation order
func (s *MemoryStore) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*models.TimeEntry, error) {
	day := timeutil.DateOf(date, time.UTC)
	return s.collect(userID, func(e *models.TimeEntry) bool {
		return timeutil.DateOf(e.Date, time.UTC).Equal(day)
	})
}

// GetByUserAndDateRange returns entries for a user within an inclusive range
func (s *MemoryStore) GetByUserAndDateRange(ctx context.Context, userID int64, start, end time.Time) ([]*models.TimeEntry, error) {
	lo, hi := timeutil.DateOf(start, time.UTC), timeutil.DateOf(end, time.UTC)
	return s.collect(userID, func(e *models.TimeEntry) bool {
		d := timeutil.DateOf(e.Date, time.UTC)
		return !d.Before(lo) && !d.After(hi)
	})
}

// GetByUserAndMonth returns entries for a user in a calendar month
func (s *MemoryStore) GetByUserAndMonth(ctx context.Context, userID int64, year int, month time.Month) ([]*models.TimeEntry, error) {
	start, end := timeutil.MonthRange(year, month)
	return s.GetByUserAndDateRange(ctx, userID, start, end)
}

// Delete removes an entry if it is owned by the given user
func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return fmt.Errorf("memory store: %w", ErrWriteFailed)
	}

	entry, ok := s.entries[id]
	if !ok || entry.UserID != userID {
		return fmt.Errorf("entry %s for user %d: %w", id, userID, ErrNotFound)
	}
	delete(s.entries, id)
	delete(s.order, id)
	return nil
}

// Get retrieves the session for a user, defaulting to idle
func (s *MemoryStore) Get(ctx context.Context, userID int64) (*models.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[userID]
	if !ok {
		return models.NewIdleSession(userID), nil
	}
	copied := *session
	return &copied, nil
}

// Save upserts the session for a user
func (s *MemoryStore) Save(ctx context.Context, session *models.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return fmt.Errorf("memory store: %w", ErrWriteFailed)
	}

	session.UpdatedAt = time.Now()
	copied := *session
	s.sessions[session.UserID] = &copied
	return nil
}

func (s *MemoryStore) collect(userID int64, match func(*models.TimeEntry) bool) ([]*models.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.TimeEntry
	for _, entry := range s.entries {
		if entry.UserID != userID || !match(entry) {
			continue
		}
		copied := *entry
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := timeutil.DateOf(out[i].Date, time.UTC), timeutil.DateOf(out[j].Date, time.UTC)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	return out, nil
}
