package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/timecop-bot/timecop/internal/config"
	"github.com/timecop-bot/timecop/internal/database"
	"github.com/timecop-bot/timecop/internal/report"
	"github.com/timecop-bot/timecop/internal/timeutil"
)

// NewMonthlyCmd creates the monthly report command
func NewMonthlyCmd() *cobra.Command {
	var userID int64
	var monthStr string
	var outPath string

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Generate a monthly CSV report",
		Long:  "Generate the per-entry CSV report with category subtotals for one user and month",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user-id is required")
			}
			year, month, err := timeutil.ParseMonth(monthStr)
			if err != nil {
				return fmt.Errorf("invalid --month, expected MM/YYYY: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
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

			entryRepo := database.NewEntryRepository(db)
			entries, err := entryRepo.GetByUserAndMonth(context.Background(), userID, year, month)
			if err != nil {
				return fmt.Errorf("failed to load entries: %w", err)
			}

			summary := report.SummarizeMonth(year, month, entries)

			var out io.Writer = os.Stdout
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer func() {
					if err := f.Close(); err != nil {
						fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", err)
					}
				}()
				out = f
			}

			if err := report.RenderCSV(out, summary); err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}

			if outPath != "" && outPath != "-" {
				fmt.Fprintf(os.Stderr, "Wrote %d rows (%.2fh) to %s\n", len(summary.Rows), summary.Total, outPath)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "User ID to report on")
	cmd.Flags().StringVar(&monthStr, "month", "", "Month to report on (MM/YYYY)")
	cmd.Flags().StringVar(&outPath, "out", "-", "Output file path, or - for stdout")

	return cmd
}
