package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/timecop-bot/timecop/internal/models"
)

func validDraft() models.DraftEntry {
	return models.DraftEntry{
		Date:           time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
		UserID:         1,
		Description:    "Planning meeting",
		Project:        "Alpha",
		Category:       models.CategoryBillableProject,
		EstimatedHours: 2,
		OriginalText:   "planning 2h",
	}
}

func TestValidateDraft(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*models.DraftEntry)
		wantErr string
	}{
		{
			name:   "valid draft",
			mutate: func(d *models.DraftEntry) {},
		},
		{
			name:    "empty description",
			mutate:  func(d *models.DraftEntry) { d.Description = "   " },
			wantErr: "description",
		},
		{
			name:    "empty project",
			mutate:  func(d *models.DraftEntry) { d.Project = "" },
			wantErr: "project",
		},
		{
			name:    "unknown category",
			mutate:  func(d *models.DraftEntry) { d.Category = "vacation" },
			wantErr: "category",
		},
		{
			name:    "zero hours",
			mutate:  func(d *models.DraftEntry) { d.EstimatedHours = 0 },
			wantErr: "greater than 0",
		},
		{
			name:    "hours above daily maximum",
			mutate:  func(d *models.DraftEntry) { d.EstimatedHours = 24.5 },
			wantErr: "not exceed",
		},
		{
			name:    "hours with three decimals",
			mutate:  func(d *models.DraftEntry) { d.EstimatedHours = 1.125 },
			wantErr: "two decimals",
		},
		{
			name:    "missing date",
			mutate:  func(d *models.DraftEntry) { d.Date = time.Time{} },
			wantErr: "date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			draft := validDraft()
			tt.mutate(&draft)

			err := ValidateDraft(draft)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestValidateHoursBoundaries(t *testing.T) {
	t.Parallel()

	if err := ValidateHours(24); err != nil {
		t.Errorf("Expected 24 hours to be allowed, got %v", err)
	}
	if err := ValidateHours(0.01); err != nil {
		t.Errorf("Expected 0.01 hours to be allowed, got %v", err)
	}
	if err := ValidateHours(-1); err == nil {
		t.Error("Expected negative hours to be rejected")
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	got := SanitizeText("  hello\x00 world\n line two\t\x07  ")
	want := "hello world\n line two"
	if got != want {
		t.Errorf("SanitizeText = %q, want %q", got, want)
	}
}

func TestCustomValidatorTags(t *testing.T) {
	t.Parallel()

	draft := validDraft()
	if err := Validate.Struct(draft); err != nil {
		t.Errorf("Expected valid draft to pass struct validation, got %v", err)
	}

	draft.Category = "holiday"
	if err := Validate.Struct(draft); err == nil {
		t.Error("Expected entry_category tag to reject unknown category")
	}
}
