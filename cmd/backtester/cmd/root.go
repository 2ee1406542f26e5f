package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "A bar-by-bar trade simulation engine",
	Long: `Backtester replays OHLC bars against per-bar entry signals, take-profit
and stop-loss levels, sizes and expirations, and reports closed trades,
open trades, a per-bar exposure series and summary metrics.

It provides tools for:
  - Running backtests from CSV bar and signal files
  - Journaling results to CSV or SQLite
  - Serving the engine over an HTTP API`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
