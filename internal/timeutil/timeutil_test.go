package timeutil

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "ISO format", input: "2026-02-09", want: want},
		{name: "slash format day first", input: "09/02/2026", want: want},
		{name: "dash format day first", input: "09-02-2026", want: want},
		{name: "surrounding whitespace", input: "  2026-02-09 ", want: want},
		{name: "US ordering rejected", input: "02/30/2026", wantErr: true},
		{name: "gibberish", input: "next tuesday", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) failed: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	t.Parallel()

	year, month, err := ParseMonth("02/2026")
	if err != nil {
		t.Fatalf("ParseMonth failed: %v", err)
	}
	if year != 2026 || month != time.February {
		t.Errorf("ParseMonth = %d/%v, want 2026/February", year, month)
	}

	if _, _, err := ParseMonth("2026-02"); err == nil {
		t.Error("Expected error for non MM/YYYY input")
	}
	if _, _, err := ParseMonth("13/2026"); err == nil {
		t.Error("Expected error for month 13")
	}
}

func TestWeekWindow(t *testing.T) {
	t.Parallel()

	// 2026-02-11 is a Wednesday
	wednesday := time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	if got := WeekStart(wednesday); !got.Equal(monday) {
		t.Errorf("WeekStart(wed) = %v, want %v", got, monday)
	}
	if got := WeekEnd(wednesday); !got.Equal(sunday) {
		t.Errorf("WeekEnd(wed) = %v, want %v", got, sunday)
	}

	// A Monday is its own week start, a Sunday belongs to the preceding Monday
	if got := WeekStart(monday); !got.Equal(monday) {
		t.Errorf("WeekStart(mon) = %v, want %v", got, monday)
	}
	if got := WeekStart(sunday); !got.Equal(monday) {
		t.Errorf("WeekStart(sun) = %v, want %v", got, monday)
	}
}

func TestMonthRange(t *testing.T) {
	t.Parallel()

	start, end := MonthRange(2025, time.December)
	if !start.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MonthRange start = %v", start)
	}
	if !end.Equal(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("MonthRange end = %v", end)
	}

	// February in a leap year
	_, febEnd := MonthRange(2024, time.February)
	if febEnd.Day() != 29 {
		t.Errorf("Expected leap-year February to end on the 29th, got %d", febEnd.Day())
	}
}

func TestDateOf(t *testing.T) {
	t.Parallel()

	bogota, err := LoadLocation("America/Bogota")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}

	// 03:00 UTC is still the previous day in Bogota (UTC-5)
	utcMorning := time.Date(2026, 2, 10, 3, 0, 0, 0, time.UTC)
	got := DateOf(utcMorning, bogota)
	want := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf = %v, want %v", got, want)
	}
}
