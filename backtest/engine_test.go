package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saransh-28/backtester/market"
)

// seriesFromCloses builds a series with open=close, high=close+1, low=close-1
// and timestamps 0..n-1.
func seriesFromCloses(closes ...float64) market.Series {
	s := market.Series{}
	for i, c := range closes {
		s.Timestamp = append(s.Timestamp, float64(i))
		s.Open = append(s.Open, c)
		s.High = append(s.High, c+1)
		s.Low = append(s.Low, c-1)
		s.Close = append(s.Close, c)
	}
	return s
}

// quietSignals fills every per-bar array with valid but never-firing values:
// no signals, levels far away, size 1, expiry far in the future.
func quietSignals(n int, price float64) market.SignalSet {
	set := market.SignalSet{}
	for i := 0; i < n; i++ {
		set.Long = append(set.Long, false)
		set.Short = append(set.Short, false)
		set.LongTP = append(set.LongTP, price+50)
		set.LongSL = append(set.LongSL, price-50)
		set.ShortTP = append(set.ShortTP, price-50)
		set.ShortSL = append(set.ShortSL, price+50)
		set.LongSize = append(set.LongSize, 1)
		set.ShortSize = append(set.ShortSize, 1)
		set.Expiry = append(set.Expiry, 1e9)
	}
	return set
}

func flatConfig(n int, price float64) Config {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return Config{
		Series:        seriesFromCloses(closes...),
		Signals:       quietSignals(n, price),
		InitialEquity: 10_000,
	}
}

func TestRunValidation(t *testing.T) {
	t.Parallel()

	t.Run("bad series is fatal", func(t *testing.T) {
		cfg := flatConfig(3, 100)
		cfg.Series.Timestamp = []float64{2, 1, 0}

		res, err := Run(cfg)
		assert.Nil(t, res)
		var timeErr *market.NonMonotonicTimeError
		require.ErrorAs(t, err, &timeErr)
	})

	t.Run("misaligned signal array", func(t *testing.T) {
		cfg := flatConfig(3, 100)
		cfg.Signals.LongTP = cfg.Signals.LongTP[:2]

		_, err := Run(cfg)
		var shapeErr *market.ShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, "long_tp", shapeErr.Name)
	})

	t.Run("bad scalars", func(t *testing.T) {
		cfg := flatConfig(3, 100)
		cfg.InitialEquity = 0
		_, err := Run(cfg)
		require.Error(t, err)

		cfg = flatConfig(3, 100)
		cfg.SlippageRate = -0.1
		_, err = Run(cfg)
		require.Error(t, err)

		cfg = flatConfig(3, 100)
		cfg.TieBreak = "coin-flip"
		_, err = Run(cfg)
		require.Error(t, err)
	})
}

// Entry on the final bar: the position is reported open, never closed, and
// the exposure series never sees it (entries fill after the bar snapshot).
func TestRunEntryOnFinalBar(t *testing.T) {
	t.Parallel()

	cfg := flatConfig(11, 100)
	cfg.Signals.Long[10] = true

	res, err := Run(cfg)
	require.NoError(t, err)

	assert.Empty(t, res.ClosedPositions)
	require.Len(t, res.OpenPositions, 1)

	p := res.OpenPositions[0]
	assert.Equal(t, Long, p.Side)
	assert.Equal(t, 10, p.EntryIndex)
	assert.Equal(t, 100.0, p.EntryPrice)
	assert.Equal(t, StatusOpen, p.Status)
	assert.Equal(t, ExitEndOfData, p.ExitReason)
	assert.Equal(t, 0.0, p.UnrealizedPnL)

	require.Len(t, res.Exposure, 11)
	for i, rec := range res.Exposure {
		assert.Equal(t, cfg.Series.Timestamp[i], rec.Timestamp)
		assert.Equal(t, 0.0, rec.LongExposure)
		assert.Equal(t, 0.0, rec.ShortExposure)
		assert.Equal(t, 10_000.0, rec.Equity)
	}
}

// A long whose stop-loss sits above the entry close is rejected, recorded in
// diagnostics, and the run completes with no positions on that side.
func TestRunRejectsInvertedLevels(t *testing.T) {
	t.Parallel()

	cfg := flatConfig(5, 100)
	cfg.Signals.Long[1] = true
	cfg.Signals.LongSL[1] = 105 // above entry

	res, err := Run(cfg)
	require.NoError(t, err)

	assert.Empty(t, res.ClosedPositions)
	assert.Empty(t, res.OpenPositions)
	require.Len(t, res.Diagnostics, 1)

	d := res.Diagnostics[0]
	assert.Equal(t, 1, d.BarIndex)
	assert.Equal(t, Long, d.Side)
	assert.Contains(t, d.Reason, "inverted")
}

func TestRunRejectsBadSizeAndExpiry(t *testing.T) {
	t.Parallel()

	cfg := flatConfig(5, 100)
	cfg.Signals.Long[1] = true
	cfg.Signals.LongSize[1] = 0
	cfg.Signals.Short[2] = true
	cfg.Signals.Expiry[2] = 1 // not after bar 2's timestamp

	res, err := Run(cfg)
	require.NoError(t, err)

	assert.Empty(t, res.ClosedPositions)
	assert.Empty(t, res.OpenPositions)
	require.Len(t, res.Diagnostics, 2)
	assert.Contains(t, res.Diagnostics[0].Reason, "size")
	assert.Contains(t, res.Diagnostics[1].Reason, "expiration")
}

// With zero fees and slippage, a take-profit hit exactly at the bar high
// realizes (tp - entry_close) * size.
func TestRunTakeProfitExactAtHigh(t *testing.T) {
	t.Parallel()

	cfg := flatConfig(3, 100)
	cfg.Signals.Long[0] = true
	cfg.Signals.LongTP[0] = 101 // == high of every bar
	cfg.Signals.LongSL[0] = 95

	res, err := Run(cfg)
	require.NoError(t, err)

	require.Len(t, res.ClosedPositions, 1)
	p := res.ClosedPositions[0]
	assert.Equal(t, ExitTakeProfit, p.ExitReason)
	assert.Equal(t, 1, p.ExitIndex)
	assert.Equal(t, 101.0, p.ExitPrice)
	assert.Equal(t, 1.0, p.RealizedPnL)
	assert.Equal(t, StatusClosed, p.Status)

	// Exit price within the triggering bar's range.
	assert.LessOrEqual(t, p.ExitPrice, cfg.Series.High[p.ExitIndex])
	assert.GreaterOrEqual(t, p.ExitPrice, cfg.Series.Low[p.ExitIndex])

	// Conservation: realized PnL shows up 1:1 in the equity series.
	assert.Equal(t, 10_000.0, res.Exposure[0].Equity)
	assert.Equal(t, 10_001.0, res.Exposure[1].Equity)
	assert.Equal(t, 1.0, res.Exposure[1].RealizedPnL)
}

func TestRunStopFirstTieBreak(t *testing.T) {
	t.Parallel()

	mk := func(tb TieBreak) Config {
		// Bar 1 spans both levels.
		cfg := Config{
			Series:        seriesFromCloses(100, 100),
			Signals:       quietSignals(2, 100),
			InitialEquity: 10_000,
			TieBreak:      tb,
		}
		cfg.Series.High[1] = 115
		cfg.Series.Low[1] = 85
		cfg.Signals.Long[0] = true
		cfg.Signals.LongTP[0] = 110
		cfg.Signals.LongSL[0] = 90
		return cfg
	}

	res, err := Run(mk(StopLossFirst))
	require.NoError(t, err)
	require.Len(t, res.ClosedPositions, 1)
	assert.Equal(t, ExitStopLoss, res.ClosedPositions[0].ExitReason)
	assert.Equal(t, -10.0, res.ClosedPositions[0].RealizedPnL)

	res, err = Run(mk(TakeProfitFirst))
	require.NoError(t, err)
	require.Len(t, res.ClosedPositions, 1)
	assert.Equal(t, ExitTakeProfit, res.ClosedPositions[0].ExitReason)
	assert.Equal(t, 10.0, res.ClosedPositions[0].RealizedPnL)
}

func TestRunExpiration(t *testing.T) {
	t.Parallel()

	cfg := flatConfig(4, 100)
	cfg.Signals.Long[0] = true
	cfg.Signals.Expiry[0] = 2

	res, err := Run(cfg)
	require.NoError(t, err)

	require.Len(t, res.ClosedPositions, 1)
	p := res.ClosedPositions[0]
	assert.Equal(t, ExitExpired, p.ExitReason)
	assert.Equal(t, 2, p.ExitIndex)
	assert.Equal(t, 100.0, p.ExitPrice) // settles at the bar close
	assert.Equal(t, 0.0, p.RealizedPnL)
}

// A true signal while the same side is already open is ignored: no queuing,
// no pyramiding, no diagnostic.
func TestRunAtMostOnePositionPerSide(t *testing.T) {
	t.Parallel()

	cfg := flatConfig(6, 100)
	for i := range cfg.Signals.Long {
		cfg.Signals.Long[i] = true
	}

	res, err := Run(cfg)
	require.NoError(t, err)

	assert.Empty(t, res.ClosedPositions)
	require.Len(t, res.OpenPositions, 1)
	assert.Equal(t, 0, res.OpenPositions[0].EntryIndex)
	assert.Empty(t, res.Diagnostics)

	// Long and short sides are independent slots.
	cfg.Signals.Short[2] = true
	res, err = Run(cfg)
	require.NoError(t, err)
	require.Len(t, res.OpenPositions, 2)
}

func TestRunFeesAndSlippage(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Series:        seriesFromCloses(100, 100),
		Signals:       quietSignals(2, 100),
		InitialEquity: 10_000,
		EntryFeeRate:  0.001,
		ExitFeeRate:   0.002,
		SlippageRate:  0.01,
	}
	cfg.Series.High[1] = 105
	cfg.Signals.Long[0] = true
	cfg.Signals.LongTP[0] = 103
	cfg.Signals.LongSL[0] = 90

	res, err := Run(cfg)
	require.NoError(t, err)

	require.Len(t, res.ClosedPositions, 1)
	p := res.ClosedPositions[0]

	entry := 100 * 1.01
	exit := 103 * 0.99
	entryFee := entry * 1 * 0.001
	exitFee := exit * 1 * 0.002
	wantPnL := (exit - entry) - entryFee - exitFee

	assert.InDelta(t, entry, p.EntryPrice, 1e-9)
	assert.InDelta(t, exit, p.ExitPrice, 1e-9)
	assert.InDelta(t, entryFee, p.EntryFee, 1e-9)
	assert.InDelta(t, exitFee, p.ExitFee, 1e-9)
	assert.InDelta(t, wantPnL, p.RealizedPnL, 1e-9)
	assert.InDelta(t, entryFee+exitFee, p.FeesPaid(), 1e-9)
	assert.InDelta(t, 1.0, p.EntrySlippage, 1e-9)
	assert.InDelta(t, 103*0.01, p.ExitSlippage, 1e-9)
	assert.InDelta(t, exit/entry-1, p.AbsoluteReturn, 1e-9)
	assert.InDelta(t, wantPnL/entry, p.RealReturn, 1e-9)
}

func TestRunShortStopLoss(t *testing.T) {
	t.Parallel()

	cfg := flatConfig(3, 100)
	cfg.Signals.Short[0] = true
	cfg.Signals.ShortSL[0] = 101 // == high, hit on bar 1
	cfg.Signals.ShortTP[0] = 90

	res, err := Run(cfg)
	require.NoError(t, err)

	require.Len(t, res.ClosedPositions, 1)
	p := res.ClosedPositions[0]
	assert.Equal(t, Short, p.Side)
	assert.Equal(t, ExitStopLoss, p.ExitReason)
	assert.Equal(t, 101.0, p.ExitPrice)
	assert.Equal(t, -1.0, p.RealizedPnL)
}

func TestRunExposureTracksOpenPosition(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Series:        seriesFromCloses(100, 102, 104),
		Signals:       quietSignals(3, 100),
		InitialEquity: 10_000,
	}
	cfg.Signals.Long[0] = true
	cfg.Signals.LongSize[0] = 2
	cfg.Signals.LongTP[0] = 150
	cfg.Signals.LongSL[0] = 50

	res, err := Run(cfg)
	require.NoError(t, err)

	require.Len(t, res.Exposure, 3)

	// Bar 0: snapshot precedes the entry.
	assert.Equal(t, 0.0, res.Exposure[0].LongExposure)

	// Bar 1: marked at close 102.
	assert.InDelta(t, 4.0, res.Exposure[1].UnrealizedPnL, 1e-9)
	assert.InDelta(t, 204.0, res.Exposure[1].LongExposure, 1e-9)
	assert.InDelta(t, 204.0, res.Exposure[1].TotalExposure, 1e-9)
	assert.InDelta(t, 10_004.0, res.Exposure[1].Equity, 1e-9)

	// Bar 2: marked at close 104; position survives the data.
	assert.InDelta(t, 8.0, res.Exposure[2].UnrealizedPnL, 1e-9)
	require.Len(t, res.OpenPositions, 1)
	assert.InDelta(t, 8.0, res.OpenPositions[0].UnrealizedPnL, 1e-9)

	// Overall metrics take the equity curve from the exposure series.
	assert.InDelta(t, 10_008.0, res.Metrics.Overall.FinalEquity, 1e-9)
	assert.InDelta(t, 8.0/10_000, res.Metrics.Overall.TotalReturn, 1e-9)
}

// closed + open must equal accepted entries, and no position appears twice.
func TestRunEndOfDataCompleteness(t *testing.T) {
	t.Parallel()

	cfg := flatConfig(8, 100)
	// First long closes on TP, second stays open.
	cfg.Signals.Long[0] = true
	cfg.Signals.LongTP[0] = 101
	cfg.Signals.LongSL[0] = 90
	cfg.Signals.Long[4] = true
	cfg.Signals.Short[4] = true

	res, err := Run(cfg)
	require.NoError(t, err)

	require.Len(t, res.ClosedPositions, 1)
	require.Len(t, res.OpenPositions, 2)

	seen := map[string]bool{}
	for _, p := range res.ClosedPositions {
		assert.Equal(t, StatusClosed, p.Status)
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
	for _, p := range res.OpenPositions {
		assert.Equal(t, StatusOpen, p.Status)
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestRunIdempotent(t *testing.T) {
	t.Parallel()

	cfg := flatConfig(10, 100)
	cfg.Signals.Long[1] = true
	cfg.Signals.LongTP[1] = 101
	cfg.Signals.LongSL[1] = 95
	cfg.Signals.Short[3] = true
	cfg.EntryFeeRate = 0.0005
	cfg.ExitFeeRate = 0.0005
	cfg.SlippageRate = 0.0002

	first, err := Run(cfg)
	require.NoError(t, err)
	second, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
