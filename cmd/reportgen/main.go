package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timecop-bot/timecop/cmd/reportgen/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "timecop-reportgen",
		Short: "Report tool for the timecop time tracker",
		Long:  "CLI tool for generating time reports directly from the database",
	}

	rootCmd.AddCommand(commands.NewMonthlyCmd())
	rootCmd.AddCommand(commands.NewWeeklyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
