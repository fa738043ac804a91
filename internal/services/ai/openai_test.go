package ai

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/timecop-bot/timecop/internal/models"
)

func TestParseAndValidateExtraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		wantLen  int
		wantKind ExtractionErrorKind
	}{
		{
			name:    "valid single entry",
			content: `{"entries":[{"description":"sprint planning","project":"acme","category":"billable_project","hours":2}]}`,
			wantLen: 1,
		},
		{
			name: "valid multiple entries",
			content: `{"entries":[
				{"description":"sprint planning","project":"acme","category":"billable_project","hours":2},
				{"description":"team retro","project":"","category":"other_non_billable","hours":1.5}
			]}`,
			wantLen: 2,
		},
		{
			name:    "fenced response",
			content: "```json\n{\"entries\":[{\"description\":\"code review\",\"project\":\"\",\"category\":\"non_billable_project\",\"hours\":1}]}\n```",
			wantLen: 1,
		},
		{
			name:    "legacy category alias",
			content: `{"entries":[{"description":"reunion","project":"acme","category":"proyectoFacturable","hours":3}]}`,
			wantLen: 1,
		},
		{
			name:     "not json",
			content:  "I could not find any time entries, sorry!",
			wantKind: KindInvalidSchema,
		},
		{
			name:     "empty entry list",
			content:  `{"entries":[]}`,
			wantKind: KindEmptyResult,
		},
		{
			name:     "missing entries field",
			content:  `{"result":"ok"}`,
			wantKind: KindEmptyResult,
		},
		{
			name:     "unknown category",
			content:  `{"entries":[{"description":"lunch","project":"","category":"personal","hours":1}]}`,
			wantKind: KindUnknownCategory,
		},
		{
			name:     "non numeric hours",
			content:  `{"entries":[{"description":"lunch","project":"","category":"other_non_billable","hours":"two"}]}`,
			wantKind: KindInvalidSchema,
		},
		{
			name:     "zero hours",
			content:  `{"entries":[{"description":"lunch","project":"","category":"other_non_billable","hours":0}]}`,
			wantKind: KindInvalidHours,
		},
		{
			name:     "hours above daily limit",
			content:  `{"entries":[{"description":"marathon","project":"","category":"billable_project","hours":25}]}`,
			wantKind: KindInvalidHours,
		},
		{
			name:     "empty description",
			content:  `{"entries":[{"description":"  ","project":"","category":"billable_project","hours":2}]}`,
			wantKind: KindInvalidSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			drafts, err := parseAndValidateExtraction(tt.content)
			if tt.wantKind != "" {
				extErr, ok := AsExtractionError(err)
				if !ok {
					t.Fatalf("expected ExtractionError, got %v", err)
				}
				if extErr.Kind != tt.wantKind {
					t.Errorf("expected kind %s, got %s", tt.wantKind, extErr.Kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(drafts) != tt.wantLen {
				t.Errorf("expected %d drafts, got %d", tt.wantLen, len(drafts))
			}
		})
	}
}

func TestParseAndValidateExtractionRoundsHours(t *testing.T) {
	t.Parallel()

	drafts, err := parseAndValidateExtraction(`{"entries":[{"description":"debugging","project":"acme","category":"billable_project","hours":2.34567}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drafts[0].EstimatedHours != 2.35 {
		t.Errorf("expected hours rounded to 2.35, got %v", drafts[0].EstimatedHours)
	}
}

func TestParseAndValidateExtractionLegacyAlias(t *testing.T) {
	t.Parallel()

	drafts, err := parseAndValidateExtraction(`{"entries":[{"description":"soporte","project":"","category":"otrosNoFacturable","hours":1}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if drafts[0].Category != models.CategoryOtherNonBillable {
		t.Errorf("expected legacy alias to map to %s, got %s", models.CategoryOtherNonBillable, drafts[0].Category)
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "plain json",
			content: `{"entries":[]}`,
			want:    `{"entries":[]}`,
		},
		{
			name:    "json fence",
			content: "```json\n{\"entries\":[]}\n```",
			want:    `{"entries":[]}`,
		},
		{
			name:    "bare fence",
			content: "```\n{\"entries\":[]}\n```",
			want:    `{"entries":[]}`,
		},
		{
			name:    "surrounding prose",
			content: "Here you go: {\"entries\":[]} hope that helps",
			want:    `{"entries":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := extractJSON(tt.content); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildExtractionPrompt(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	prompt := buildExtractionPrompt("worked 3 hours on the acme migration", date)

	if !strings.Contains(prompt, "2025-03-10") {
		t.Error("prompt should contain the target date")
	}
	for _, c := range models.Categories() {
		if !strings.Contains(prompt, string(c)) {
			t.Errorf("prompt should name category %s", c)
		}
	}
	if !strings.Contains(prompt, "worked 3 hours on the acme migration") {
		t.Error("prompt should contain the raw text")
	}
}

func TestExtractEntriesRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	p := NewOpenAIExtractor("test-key", "")
	_, err := p.ExtractEntries(context.Background(), "   ", time.Now())
	extErr, ok := AsExtractionError(err)
	if !ok {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extErr.Kind != KindInvalidInput {
		t.Errorf("expected invalid_input, got %s", extErr.Kind)
	}
}

func TestSanitizeAPIKey(t *testing.T) {
	t.Parallel()

	if got := SanitizeAPIKey("sk-test-1234567890"); !strings.HasPrefix(got, "sk-t") || !strings.HasSuffix(got, "7890") {
		t.Errorf("unexpected sanitized key: %s", got)
	}
	if got := SanitizeAPIKey("short"); got != RedactedValue {
		t.Errorf("short key should be fully redacted, got %s", got)
	}
}
