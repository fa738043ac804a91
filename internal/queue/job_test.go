package queue

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewMonthlyReportJob(t *testing.T) {
	t.Parallel()

	job := NewMonthlyReportJob(42, 2025, time.March)

	if job.Type != JobTypeMonthlyReport {
		t.Errorf("expected type %s, got %s", JobTypeMonthlyReport, job.Type)
	}
	if job.UserID != 42 {
		t.Errorf("expected user 42, got %d", job.UserID)
	}
	if job.Year != 2025 || job.Month != time.March {
		t.Errorf("expected 2025-03, got %d-%d", job.Year, job.Month)
	}
	if job.MaxRetries != 3 {
		t.Errorf("expected 3 max retries, got %d", job.MaxRetries)
	}
	if job.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a generated job ID")
	}
}

func TestJobShouldProcess(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name      string
		notBefore *time.Time
		notAfter  *time.Time
		want      bool
	}{
		{name: "no constraints", want: true},
		{name: "not before in past", notBefore: &past, want: true},
		{name: "not before in future", notBefore: &future, want: false},
		{name: "not after in future", notAfter: &future, want: true},
		{name: "not after in past", notAfter: &past, want: false},
		{name: "within window", notBefore: &past, notAfter: &future, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			job := NewMonthlyReportJob(1, 2025, time.January)
			job.NotBefore = tt.notBefore
			job.NotAfter = tt.notAfter

			if got := job.ShouldProcess(); got != tt.want {
				t.Errorf("ShouldProcess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJobRetryAccounting(t *testing.T) {
	t.Parallel()

	job := NewMonthlyReportJob(1, 2025, time.January)

	for i := 0; i < job.MaxRetries; i++ {
		if !job.CanRetry() {
			t.Fatalf("expected retry %d to be allowed", i+1)
		}
		job.IncrementRetry()
	}
	if job.CanRetry() {
		t.Error("expected retries to be exhausted")
	}
}

func TestJobIsExpired(t *testing.T) {
	t.Parallel()

	job := NewMonthlyReportJob(1, 2025, time.January)
	if job.IsExpired() {
		t.Error("job without NotAfter should never expire")
	}

	past := time.Now().Add(-time.Minute)
	job.NotAfter = &past
	if !job.IsExpired() {
		t.Error("job with NotAfter in the past should be expired")
	}
}

func TestJobJSONRoundTrip(t *testing.T) {
	t.Parallel()

	job := NewMonthlyReportJob(42, 2025, time.December)

	raw, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Job
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.ID != job.ID || decoded.UserID != job.UserID || decoded.Month != job.Month {
		t.Error("decoded job does not match original")
	}
	if decoded.NotBefore != nil {
		t.Error("expected omitted NotBefore to stay nil")
	}
}
