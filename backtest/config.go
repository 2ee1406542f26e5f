package backtest

import (
	"fmt"

	"github.com/Saransh-28/backtester/market"
)

// Config is the complete input of one Run call. All slices must have the
// same length as the bar series; the scalars apply to every fill.
//
// Inputs are treated as read-only for the duration of the call. Run does not
// retain them afterwards.
type Config struct {
	Series  market.Series
	Signals market.SignalSet

	EntryFeeRate float64
	ExitFeeRate  float64
	SlippageRate float64

	InitialEquity float64

	// TieBreak picks the exit when one bar's range spans both the stop-loss
	// and the take-profit. Zero value is StopLossFirst.
	TieBreak TieBreak
}

// validate runs the fatal, pre-simulation checks: series invariants, aligned
// signal arrays and sane scalars. Any error here aborts the run atomically.
func (c *Config) validate() error {
	if err := c.Series.Validate(); err != nil {
		return err
	}

	n := c.Series.Len()
	cols := []struct {
		name string
		got  int
	}{
		{"long_signals", len(c.Signals.Long)},
		{"short_signals", len(c.Signals.Short)},
		{"long_tp", len(c.Signals.LongTP)},
		{"long_sl", len(c.Signals.LongSL)},
		{"short_tp", len(c.Signals.ShortTP)},
		{"short_sl", len(c.Signals.ShortSL)},
		{"long_size", len(c.Signals.LongSize)},
		{"short_size", len(c.Signals.ShortSize)},
		{"expiration_times", len(c.Signals.Expiry)},
	}
	for _, col := range cols {
		if col.got != n {
			return &market.ShapeError{Name: col.name, Want: n, Got: col.got}
		}
	}

	if c.EntryFeeRate < 0 || c.ExitFeeRate < 0 || c.SlippageRate < 0 {
		return fmt.Errorf("fee and slippage rates must be >= 0")
	}
	if c.InitialEquity <= 0 {
		return fmt.Errorf("initial equity must be > 0, got %v", c.InitialEquity)
	}
	return c.TieBreak.validate()
}

// levels returns the TP, SL and size arrays for one side.
func (c *Config) levels(s Side) (tp, sl, size []float64) {
	if s == Long {
		return c.Signals.LongTP, c.Signals.LongSL, c.Signals.LongSize
	}
	return c.Signals.ShortTP, c.Signals.ShortSL, c.Signals.ShortSize
}

// signal reports whether side s fires on bar i.
func (c *Config) signal(s Side, i int) bool {
	if s == Long {
		return c.Signals.Long[i]
	}
	return c.Signals.Short[i]
}
