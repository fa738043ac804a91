package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timecop-bot/timecop/internal/config"
	"github.com/timecop-bot/timecop/internal/database"
	"github.com/timecop-bot/timecop/internal/report"
	"github.com/timecop-bot/timecop/internal/timeutil"
)

// NewWeeklyCmd creates the weekly summary command
func NewWeeklyCmd() *cobra.Command {
	var userID int64
	var dateStr string

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Print a weekly summary",
		Long:  "Print category subtotals for the Monday-to-Sunday week containing the given date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user-id is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			loc, err := timeutil.LoadLocation(cfg.Timezone)
			if err != nil {
				return fmt.Errorf("failed to load timezone: %w", err)
			}

			anchor := timeutil.Today(loc)
			if dateStr != "" {
				anchor, err = timeutil.ParseDate(dateStr)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			start := timeutil.WeekStart(anchor)
			end := timeutil.WeekEnd(anchor)

			entryRepo := database.NewEntryRepository(db)
			entries, err := entryRepo.GetByUserAndDateRange(context.Background(), userID, start, end)
			if err != nil {
				return fmt.Errorf("failed to load entries: %w", err)
			}

			summary := report.SummarizeWeek(start, entries)

			fmt.Printf("Week %s to %s (user %d)\n", summary.Start.Format("2006-01-02"), summary.End.Format("2006-01-02"), userID)
			for _, sub := range summary.Subtotals {
				fmt.Printf("  %s: %.2fh\n", sub.Category.Label(), sub.Hours)
			}
			fmt.Printf("  Total: %.2fh\n", summary.Total)

			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "User ID to summarize")
	cmd.Flags().StringVar(&dateStr, "date", "", "Any date inside the week (YYYY-MM-DD), defaults to today")

	return cmd
}
