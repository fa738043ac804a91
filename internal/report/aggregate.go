package report

import (
	"time"

	"github.com/timecop-bot/timecop/internal/models"
)

// CategorySubtotal is the summed hours for one category
type CategorySubtotal struct {
	Category models.Category
	Hours    float64
}

// WeeklySummary aggregates a user's entries over one Monday-to-Sunday week.
// Total is computed as the sum of the subtotals, so the two always agree.
type WeeklySummary struct {
	Start     time.Time
	End       time.Time
	Subtotals []CategorySubtotal
	Total     float64
}

// MonthlySummary aggregates a user's entries over one calendar month
type MonthlySummary struct {
	Year      int
	Month     time.Month
	Rows      []models.ReportRow
	Subtotals []CategorySubtotal
	Total     float64
}

// Summarize groups entries by category. Subtotals follow the category enum
// order and include zero rows so every category always appears.
func Summarize(entries []*models.TimeEntry) ([]CategorySubtotal, float64) {
	byCategory := make(map[models.Category]float64)
	for _, entry := range entries {
		byCategory[entry.Category] += entry.EstimatedHours
	}

	subtotals := make([]CategorySubtotal, 0, len(models.Categories()))
	var total float64
	for _, category := range models.Categories() {
		hours := models.RoundHours(byCategory[category])
		subtotals = append(subtotals, CategorySubtotal{Category: category, Hours: hours})
		total += hours
	}

	return subtotals, models.RoundHours(total)
}

// SummarizeWeek builds the weekly summary for entries already filtered to
// the week starting at weekStart.
func SummarizeWeek(weekStart time.Time, entries []*models.TimeEntry) *WeeklySummary {
	subtotals, total := Summarize(entries)
	return &WeeklySummary{
		Start:     weekStart,
		End:       weekStart.AddDate(0, 0, 6),
		Subtotals: subtotals,
		Total:     total,
	}
}

// SummarizeMonth builds the monthly summary for entries already filtered to
// the given calendar month. Rows keep the storage order: date ascending,
// then creation order within a date.
func SummarizeMonth(year int, month time.Month, entries []*models.TimeEntry) *MonthlySummary {
	rows := make([]models.ReportRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, models.ReportRow{
			Date:        entry.Date,
			Project:     entry.Project,
			Category:    entry.Category,
			Description: entry.Description,
			Hours:       entry.EstimatedHours,
		})
	}

	subtotals, total := Summarize(entries)
	return &MonthlySummary{
		Year:      year,
		Month:     month,
		Rows:      rows,
		Subtotals: subtotals,
		Total:     total,
	}
}
