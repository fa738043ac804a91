package models

import "time"

// ReportRow is a single row of a monthly report: one row per time entry,
// rendered into a tabular document by the spreadsheet-encoding collaborator.
type ReportRow struct {
	Date        time.Time `json:"date"`
	Project     string    `json:"project"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Hours       float64   `json:"hours"`
}
