package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/timecop-bot/timecop/internal/models"
	"github.com/timecop-bot/timecop/internal/report"
)

const helpText = `I turn your workday descriptions into time-tracking entries.

Commands:
/record_today - record what you worked on today
/record_day - record work for another day
/get_day - list entries for a date
/week - weekly summary (optionally pass a date)
/report - generate a monthly report (MM/YYYY)
/delete - delete an entry for a date
/cancel - abandon the current flow

You can also just describe your day and I will record it for today.`

const (
	promptFreeText      = "Tell me what you worked on. One message is enough, I will split it into entries."
	promptDate          = "Which date? (YYYY-MM-DD, DD/MM/YYYY or DD-MM-YYYY)"
	promptMonth         = "Which month? (MM/YYYY)"
	promptConfirm       = "Reply \"yes\" to save, \"no\" to discard, or \"edit\" to correct an entry."
	promptEditSelection = "Which entry should I change? Use: <number> <description|project|category|hours> <new value>"

	replyNothingToConfirm = "Nothing to confirm right now."
	replyNothingToCancel  = "Nothing to cancel, you are not in the middle of anything."
	replyCancelled        = "Okay, I discarded that. What next?"
	replyDiscarded        = "Discarded. Nothing was saved."
	replyTransient        = "Something went wrong on my side and nothing was saved. Your entries are still here, reply \"yes\" to try again."
	replyUnavailable      = "I cannot reach the storage right now, please try again in a moment."

	warnFlowReset = "I dropped the flow we were in the middle of.\n\n"
)

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// renderDrafts shows the numbered drafts awaiting confirmation
func renderDrafts(drafts []models.DraftEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is what I got for %s:\n", formatDate(drafts[0].Date))

	var total float64
	for i, d := range drafts {
		fmt.Fprintf(&b, "%d. %s - %s (%s, %.2fh)\n", i+1, d.Project, d.Description, d.Category.Label(), d.EstimatedHours)
		total += d.EstimatedHours
	}
	fmt.Fprintf(&b, "Total: %.2fh\n\n", models.RoundHours(total))
	b.WriteString(promptConfirm)
	return b.String()
}

// renderEntries shows stored entries for one date
func renderEntries(date string, entries []*models.TimeEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No entries recorded for %s.", date)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Entries for %s:\n", date)

	var total float64
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s - %s (%s, %.2fh)\n", i+1, e.Project, e.Description, e.Category.Label(), e.EstimatedHours)
		total += e.EstimatedHours
	}
	fmt.Fprintf(&b, "Total: %.2fh", models.RoundHours(total))
	return b.String()
}

// renderWeekly shows a weekly summary with per-category subtotals
func renderWeekly(summary *report.WeeklySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Week %s to %s:\n", formatDate(summary.Start), formatDate(summary.End))
	for _, s := range summary.Subtotals {
		fmt.Fprintf(&b, "%s: %.2fh\n", s.Category.Label(), s.Hours)
	}
	fmt.Fprintf(&b, "Total: %.2fh", summary.Total)
	return b.String()
}

// renderDeleteCandidates shows the numbered entries the user can delete
func renderDeleteCandidates(date string, entries []*models.TimeEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entries for %s:\n", date)
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s - %s (%.2fh)\n", i+1, e.Project, e.Description, e.EstimatedHours)
	}
	b.WriteString("Reply with the number of the entry to delete, or /cancel.")
	return b.String()
}

// extractionErrorReply maps an extraction failure to a corrective prompt
func extractionErrorReply(kind string) string {
	switch kind {
	case "invalid_input":
		return "I need a description of what you worked on. Try again."
	case "empty_result":
		return "I could not find any work activities in that. Describe what you did and roughly how long it took."
	case "unknown_category":
		return "I could not classify part of that. Mention whether the work was for a billable project, an internal project, or something else."
	case "invalid_hours":
		return "The hours did not add up: each activity needs more than 0 and at most 24 hours. Try again."
	default:
		return "I could not understand that as a workday description. Try rephrasing it."
	}
}
