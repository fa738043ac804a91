package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/timecop-bot/timecop/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation
	if err := Validate.RegisterValidation("entry_category", validateEntryCategory); err != nil {
		panic(fmt.Sprintf("failed to register entry_category validator: %v", err))
	}
	if err := Validate.RegisterValidation("session_state", validateSessionState); err != nil {
		panic(fmt.Sprintf("failed to register session_state validator: %v", err))
	}
}

// validateEntryCategory validates that a string is a valid Category enum value
func validateEntryCategory(fl validator.FieldLevel) bool {
	return models.Category(fl.Field().String()).Valid()
}

// validateSessionState validates that a string is a valid SessionState enum value
func validateSessionState(fl validator.FieldLevel) bool {
	return models.SessionState(fl.Field().String()).Valid()
}

// SanitizeText sanitizes text input by removing control characters and
// trimming whitespace. Stripping can expose new trailing whitespace, so the
// trim runs last.
func SanitizeText(text string) string {
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return strings.TrimSpace(sanitized.String())
}

// ValidateHours checks the estimated-hours invariant for a single entry:
// greater than zero, at most 24, and expressible with two fractional digits.
func ValidateHours(hours float64) error {
	if hours <= 0 {
		return fmt.Errorf("estimated hours must be greater than 0, got %v", hours)
	}
	if hours > models.MaxEntryHours {
		return fmt.Errorf("estimated hours must not exceed %v, got %v", models.MaxEntryHours, hours)
	}
	if models.RoundHours(hours) != hours {
		return fmt.Errorf("estimated hours must have at most two decimals, got %v", hours)
	}
	return nil
}

// ValidateDraft checks a draft entry against the data-model invariants
// before it may be shown to the user or persisted.
func ValidateDraft(d models.DraftEntry) error {
	if strings.TrimSpace(d.Description) == "" {
		return fmt.Errorf("description must not be empty")
	}
	if strings.TrimSpace(d.Project) == "" {
		return fmt.Errorf("project must not be empty")
	}
	if !d.Category.Valid() {
		return fmt.Errorf("invalid category: %s", d.Category)
	}
	if err := ValidateHours(d.EstimatedHours); err != nil {
		return err
	}
	if d.Date.IsZero() {
		return fmt.Errorf("date must be set")
	}
	return nil
}
