package models

import (
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   Category
		wantOK bool
	}{
		{
			name:   "canonical billable",
			input:  "billable_project",
			want:   CategoryBillableProject,
			wantOK: true,
		},
		{
			name:   "mixed case with spaces",
			input:  "Billable Project",
			want:   CategoryBillableProject,
			wantOK: true,
		},
		{
			name:   "hyphenated non-billable",
			input:  "non-billable-project",
			want:   CategoryNonBillableProject,
			wantOK: true,
		},
		{
			name:   "upper case other",
			input:  "OTHER_NON_BILLABLE",
			want:   CategoryOtherNonBillable,
			wantOK: true,
		},
		{
			name:   "legacy spelling billable",
			input:  "proyectoFacturable",
			want:   CategoryBillableProject,
			wantOK: true,
		},
		{
			name:   "legacy spelling other",
			input:  "otrosNoFacturable",
			want:   CategoryOtherNonBillable,
			wantOK: true,
		},
		{
			name:   "surrounding whitespace",
			input:  "  other non billable  ",
			want:   CategoryOtherNonBillable,
			wantOK: true,
		},
		{
			name:   "unknown value",
			input:  "vacation",
			wantOK: false,
		},
		{
			name:   "empty string",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := ParseCategory(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseCategory(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategoryValid(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		if !c.Valid() {
			t.Errorf("Expected %q to be valid", c)
		}
	}
	if Category("billable").Valid() {
		t.Error("Expected raw alias to be invalid as a stored value")
	}
}

func TestRoundHours(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{3.456, 3.46},
		{3.454, 3.45},
		{8, 8},
		{0.005, 0.01},
		{23.999, 24},
	}

	for _, tt := range tests {
		if got := RoundHours(tt.in); got != tt.want {
			t.Errorf("RoundHours(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDraftEntryMaterialize(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 10, 18, 30, 0, 0, time.UTC)
	draft := DraftEntry{
		Date:           time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		UserID:         42,
		Description:    "Reviewed pull requests",
		Project:        "Alpha",
		Category:       CategoryBillableProject,
		EstimatedHours: 1.5,
		OriginalText:   "reviewed PRs for alpha 1.5h",
	}

	entry := draft.Materialize(now)

	if entry.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("Expected a generated ID")
	}
	if entry.CreatedAt != now || entry.UpdatedAt != now {
		t.Error("Expected timestamps to be set to materialization time")
	}
	if entry.UserID != draft.UserID || entry.Category != draft.Category ||
		entry.EstimatedHours != draft.EstimatedHours || entry.OriginalText != draft.OriginalText {
		t.Error("Expected draft fields to carry over unchanged")
	}
}
