package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category classifies the billability of a time entry
type Category string

const (
	CategoryBillableProject    Category = "billable_project"
	CategoryNonBillableProject Category = "non_billable_project"
	CategoryOtherNonBillable   Category = "other_non_billable"
)

// MaxEntryHours is the upper bound for a single entry's estimated hours
const MaxEntryHours = 24.0

// Categories returns all categories in their canonical reporting order
func Categories() []Category {
	return []Category{
		CategoryBillableProject,
		CategoryNonBillableProject,
		CategoryOtherNonBillable,
	}
}

// Valid reports whether c is one of the three known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryBillableProject, CategoryNonBillableProject, CategoryOtherNonBillable:
		return true
	default:
		return false
	}
}

// Label returns a human-readable name for the category
func (c Category) Label() string {
	switch c {
	case CategoryBillableProject:
		return "Billable project"
	case CategoryNonBillableProject:
		return "Non-billable project"
	case CategoryOtherNonBillable:
		return "Other non-billable"
	default:
		return string(c)
	}
}

// legacyCategoryAliases maps spellings used by earlier deployments to the
// canonical values. Keys are normalized (lowercase, separators stripped).
var legacyCategoryAliases = map[string]Category{
	"proyectofacturable":   CategoryBillableProject,
	"proyectonofacturable": CategoryNonBillableProject,
	"otrosnofacturable":    CategoryOtherNonBillable,
	"billable":             CategoryBillableProject,
	"nonbillable":          CategoryNonBillableProject,
}

// ParseCategory coerces a free-form category string to the closed enumeration.
// Matching is case-insensitive and ignores spaces, hyphens and underscores.
func ParseCategory(s string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, sep := range []string{" ", "-", "_"} {
		normalized = strings.ReplaceAll(normalized, sep, "")
	}

	for _, c := range Categories() {
		canonical := strings.ReplaceAll(string(c), "_", "")
		if normalized == canonical {
			return c, true
		}
	}

	if c, ok := legacyCategoryAliases[normalized]; ok {
		return c, true
	}

	return "", false
}

// TimeEntry is a persisted structured time-tracking record
type TimeEntry struct {
	ID             uuid.UUID `json:"id"`
	Date           time.Time `json:"date"`
	UserID         int64     `json:"user_id"`
	Description    string    `json:"description"`
	Project        string    `json:"project"`
	Category       Category  `json:"category"`
	EstimatedHours float64   `json:"estimated_hours"`
	OriginalText   string    `json:"original_text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DraftEntry is an extracted, not-yet-persisted candidate time entry awaiting
// user confirmation. Same shape as TimeEntry minus identity and timestamps.
type DraftEntry struct {
	Date           time.Time `json:"date"`
	UserID         int64     `json:"user_id"`
	Description    string    `json:"description" validate:"required"`
	Project        string    `json:"project" validate:"required"`
	Category       Category  `json:"category" validate:"entry_category"`
	EstimatedHours float64   `json:"estimated_hours" validate:"gt=0,lte=24"`
	OriginalText   string    `json:"original_text"`
}

// Materialize turns a confirmed draft into a persistable TimeEntry
func (d DraftEntry) Materialize(now time.Time) *TimeEntry {
	return &TimeEntry{
		ID:             uuid.New(),
		Date:           d.Date,
		UserID:         d.UserID,
		Description:    d.Description,
		Project:        d.Project,
		Category:       d.Category,
		EstimatedHours: d.EstimatedHours,
		OriginalText:   d.OriginalText,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RoundHours rounds an hour value to two fractional digits, the resolution
// every stored entry is kept at
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
