package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Saransh-28/backtester/backtest"
	"github.com/Saransh-28/backtester/config"
	"github.com/Saransh-28/backtester/internal/id"
	"github.com/Saransh-28/backtester/journal"
	"github.com/Saransh-28/backtester/market"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest from CSV bar and signal files",
	Long: `Run loads the configured bar and signal files, replays them through the
engine and journals the results.

Example:
  backtester run --config run.yaml`,
	RunE: runBacktest,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to run config (required)")
	runCmd.MarkFlagRequired("config")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}

	series, err := market.LoadCSV(cfg.Data.Bars)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	signals, err := market.LoadSignalsCSV(cfg.Data.Signals)
	if err != nil {
		return fmt.Errorf("load signals: %w", err)
	}

	res, err := backtest.Run(backtest.Config{
		Series:        *series,
		Signals:       *signals,
		EntryFeeRate:  cfg.Costs.EntryFeeRate,
		ExitFeeRate:   cfg.Costs.ExitFeeRate,
		SlippageRate:  cfg.Costs.SlippageRate,
		InitialEquity: cfg.Account.InitialEquity,
		TieBreak:      cfg.TieBreak(),
	})
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	runID := id.New()
	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
		if err := journal.RecordResult(j, runID, cfg.Account.InitialEquity, res); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	printSummary(runID, series.Len(), res)
	return nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.Dir)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	}
	return nil, nil
}

func printSummary(runID string, bars int, res *backtest.Result) {
	m := res.Metrics.Overall

	fmt.Printf("Backtest complete (run %s)\n", runID)
	fmt.Printf("  Bars:          %d\n", bars)
	fmt.Printf("  Closed trades: %d (%d wins, %.1f%% win rate)\n", m.Trades, m.Wins, m.WinRate*100)
	fmt.Printf("  Open trades:   %d\n", len(res.OpenPositions))
	fmt.Printf("  Final equity:  %.2f (%.2f%% return)\n", m.FinalEquity, m.TotalReturn*100)
	fmt.Printf("  Max drawdown:  %.2f%%\n", m.MaxDrawdown*100)
	if m.ProfitFactor != nil {
		fmt.Printf("  Profit factor: %.2f\n", *m.ProfitFactor)
	}
	if len(res.Diagnostics) > 0 {
		fmt.Printf("  Skipped entries: %d\n", len(res.Diagnostics))
		for _, d := range res.Diagnostics {
			fmt.Printf("    - %s\n", d)
		}
	}
}
