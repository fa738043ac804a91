package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// RenderCSV writes a monthly summary as CSV: one row per entry, then a
// blank row, the per-category subtotals, and the grand total.
func RenderCSV(w io.Writer, summary *MonthlySummary) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"date", "project", "category", "description", "hours"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range summary.Rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			row.Project,
			string(row.Category),
			row.Description,
			formatHours(row.Hours),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := writer.Write([]string{}); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for _, subtotal := range summary.Subtotals {
		record := []string{"", "", string(subtotal.Category), "subtotal", formatHours(subtotal.Hours)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write subtotal: %w", err)
		}
	}
	if err := writer.Write([]string{"", "", "", "total", formatHours(summary.Total)}); err != nil {
		return fmt.Errorf("failed to write total: %w", err)
	}

	writer.Flush()
	return writer.Error()
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.2f", h)
}
