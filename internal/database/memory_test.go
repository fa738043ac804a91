package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/timecop-bot/timecop/internal/models"
)

func testEntry(userID int64, date time.Time, hours float64) *models.TimeEntry {
	now := time.Now()
	return &models.TimeEntry{
		ID:             uuid.New(),
		Date:           date,
		UserID:         userID,
		Description:    "worked on something",
		Project:        "internal",
		Category:       models.CategoryBillableProject,
		EstimatedHours: hours,
		OriginalText:   "worked on something",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestMemoryStoreCreateBatchAndQuery(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	first := testEntry(7, day, 2)
	second := testEntry(7, day, 3.5)
	other := testEntry(8, day, 1)

	if err := store.CreateBatch(ctx, []*models.TimeEntry{first, second, other}); err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}

	got, err := store.GetByUserAndDate(ctx, 7, day)
	if err != nil {
		t.Fatalf("GetByUserAndDate failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Error("expected entries in creation order")
	}
}

func TestMemoryStoreFailWritesLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	store.FailWrites = true
	err := store.CreateBatch(ctx, []*models.TimeEntry{testEntry(7, day, 2)})
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("expected ErrWriteFailed, got %v", err)
	}

	store.FailWrites = false
	got, err := store.GetByUserAndDate(ctx, 7, day)
	if err != nil {
		t.Fatalf("GetByUserAndDate failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no entries after failed write, got %d", len(got))
	}
}

func TestMemoryStoreDateRangeOrdering(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	wednesday := monday.AddDate(0, 0, 2)

	late := testEntry(7, wednesday, 1)
	early := testEntry(7, monday, 2)
	if err := store.CreateBatch(ctx, []*models.TimeEntry{late, early}); err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}

	got, err := store.GetByUserAndDateRange(ctx, 7, monday, monday.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("GetByUserAndDateRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if !got[0].Date.Equal(early.Date) {
		t.Error("expected entries ordered by date ascending")
	}
}

func TestMemoryStoreDeleteOwnership(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	entry := testEntry(7, day, 2)
	if err := store.CreateBatch(ctx, []*models.TimeEntry{entry}); err != nil {
		t.Fatalf("CreateBatch failed: %v", err)
	}

	if err := store.Delete(ctx, entry.ID, 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
	if err := store.Delete(ctx, entry.ID, 7); err != nil {
		t.Fatalf("Delete by owner failed: %v", err)
	}
	if err := store.Delete(ctx, entry.ID, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted entry, got %v", err)
	}
}

func TestMemoryStoreSessionDefaultsToIdle(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	session, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if session.State != models.SessionIdle {
		t.Errorf("expected idle state, got %s", session.State)
	}
	if !session.Pending.IsZero() {
		t.Error("expected empty pending data")
	}
}

func TestMemoryStoreSessionRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	session := models.NewIdleSession(42)
	session.State = models.SessionAwaitingFreeText
	session.Pending.Record = &models.RecordDraft{
		TargetDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State != models.SessionAwaitingFreeText {
		t.Errorf("expected awaiting_free_text, got %s", got.State)
	}
	if got.Pending.Record == nil {
		t.Fatal("expected pending record draft to survive round trip")
	}
}
