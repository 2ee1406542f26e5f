// Package journal persists backtest output: one row per run, per closed or
// open position, and per exposure snapshot. Two backends are provided, CSV
// for quick inspection and SQLite for querying across runs.
package journal

import (
	"time"

	"github.com/Saransh-28/backtester/backtest"
)

// RunRecord mirrors the runs table: one row of denormalized summary per call.
type RunRecord struct {
	RunID   string
	Created time.Time

	Bars    int
	Trades  int
	Wins    int
	Open    int
	Skipped int // rejected entry requests

	InitialEquity float64
	FinalEquity   float64
	TotalReturn   float64
	MaxDrawdown   float64
}

// TradeRecord mirrors the trades table: one row per position, closed or
// still open at the end of the data.
type TradeRecord struct {
	RunID      string
	PositionID string
	Side       string
	Status     string

	EntryIndex int
	EntryTime  float64
	EntryPrice float64
	Size       float64
	TakeProfit float64
	StopLoss   float64
	Expiry     float64

	ExitIndex  int
	ExitTime   float64
	ExitPrice  float64
	ExitReason string

	EntryFee      float64
	ExitFee       float64
	RealizedPnL   float64
	UnrealizedPnL float64
}

// ExposureRow mirrors the exposure table: one row per bar of a run.
type ExposureRow struct {
	RunID         string
	Timestamp     float64
	Equity        float64
	RealizedPnL   float64
	UnrealizedPnL float64
	LongExposure  float64
	ShortExposure float64
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordExposure(ExposureRow) error
	Close() error
}

// tradeRecord flattens an engine position into a journal row.
func tradeRecord(runID string, p backtest.Position) TradeRecord {
	return TradeRecord{
		RunID:         runID,
		PositionID:    p.ID,
		Side:          p.Side.String(),
		Status:        string(p.Status),
		EntryIndex:    p.EntryIndex,
		EntryTime:     p.EntryTime,
		EntryPrice:    p.EntryPrice,
		Size:          p.Size,
		TakeProfit:    p.TakeProfit,
		StopLoss:      p.StopLoss,
		Expiry:        p.Expiry,
		ExitIndex:     p.ExitIndex,
		ExitTime:      p.ExitTime,
		ExitPrice:     p.ExitPrice,
		ExitReason:    string(p.ExitReason),
		EntryFee:      p.EntryFee,
		ExitFee:       p.ExitFee,
		RealizedPnL:   p.RealizedPnL,
		UnrealizedPnL: p.UnrealizedPnL,
	}
}

// RecordResult writes a complete engine result under one run id: the run
// summary first, then every position and exposure snapshot.
func RecordResult(j Journal, runID string, initialEquity float64, res *backtest.Result) error {
	run := RunRecord{
		RunID:         runID,
		Created:       time.Now().UTC(),
		Bars:          len(res.Exposure),
		Trades:        len(res.ClosedPositions),
		Wins:          res.Metrics.Overall.Wins,
		Open:          len(res.OpenPositions),
		Skipped:       len(res.Diagnostics),
		InitialEquity: initialEquity,
		FinalEquity:   res.Metrics.Overall.FinalEquity,
		TotalReturn:   res.Metrics.Overall.TotalReturn,
		MaxDrawdown:   res.Metrics.Overall.MaxDrawdown,
	}
	if err := j.RecordRun(run); err != nil {
		return err
	}

	for _, p := range res.ClosedPositions {
		if err := j.RecordTrade(tradeRecord(runID, p)); err != nil {
			return err
		}
	}
	for _, p := range res.OpenPositions {
		if err := j.RecordTrade(tradeRecord(runID, p)); err != nil {
			return err
		}
	}
	for _, rec := range res.Exposure {
		row := ExposureRow{
			RunID:         runID,
			Timestamp:     rec.Timestamp,
			Equity:        rec.Equity,
			RealizedPnL:   rec.RealizedPnL,
			UnrealizedPnL: rec.UnrealizedPnL,
			LongExposure:  rec.LongExposure,
			ShortExposure: rec.ShortExposure,
		}
		if err := j.RecordExposure(row); err != nil {
			return err
		}
	}
	return nil
}
