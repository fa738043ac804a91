package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPendingDataTaggedVariant(t *testing.T) {
	t.Parallel()

	var p PendingData
	if !p.IsZero() {
		t.Error("Expected fresh PendingData to be zero")
	}

	p.Record = &RecordDraft{TargetDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)}
	if p.IsZero() {
		t.Error("Expected PendingData with a record draft to be non-zero")
	}

	p.Clear()
	if !p.IsZero() {
		t.Error("Expected Clear to discard all flow data")
	}
}

func TestPendingDataSerializesOnlyActiveVariant(t *testing.T) {
	t.Parallel()

	p := PendingData{
		DateChoice: &DateChoice{Purpose: DatePurposeDelete},
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, ok := decoded["date_choice"]; !ok {
		t.Error("Expected date_choice variant to be present")
	}
	if _, ok := decoded["record"]; ok {
		t.Error("Expected inactive record variant to be omitted")
	}
	if _, ok := decoded["delete"]; ok {
		t.Error("Expected inactive delete variant to be omitted")
	}
}

func TestNewIdleSession(t *testing.T) {
	t.Parallel()

	sess := NewIdleSession(7)
	if sess.UserID != 7 {
		t.Errorf("Expected UserID 7, got %d", sess.UserID)
	}
	if sess.State != SessionIdle {
		t.Errorf("Expected state %q, got %q", SessionIdle, sess.State)
	}
	if !sess.Pending.IsZero() {
		t.Error("Expected empty pending data")
	}
}

func TestSessionStateValid(t *testing.T) {
	t.Parallel()

	states := []SessionState{
		SessionIdle, SessionAwaitingDateChoice, SessionAwaitingFreeText,
		SessionAwaitingConfirmation, SessionAwaitingEditSelection, SessionAwaitingDeleteTarget,
	}
	for _, s := range states {
		if !s.Valid() {
			t.Errorf("Expected %q to be valid", s)
		}
	}
	if SessionState("sleeping").Valid() {
		t.Error("Expected unknown state to be invalid")
	}
}
