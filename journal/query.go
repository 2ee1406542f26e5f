package journal

import (
	"database/sql"
	"fmt"
)

// GetRun loads the summary row for one run id.
func (j *SQLiteJournal) GetRun(runID string) (RunRecord, error) {
	var r RunRecord
	err := j.db.QueryRow(`
		SELECT run_id, created, bars, trades, wins, open, skipped,
		       initial_equity, final_equity, total_return, max_drawdown
		FROM runs WHERE run_id = ?`, runID).Scan(
		&r.RunID, &r.Created, &r.Bars, &r.Trades, &r.Wins, &r.Open, &r.Skipped,
		&r.InitialEquity, &r.FinalEquity, &r.TotalReturn, &r.MaxDrawdown,
	)
	if err == sql.ErrNoRows {
		return r, fmt.Errorf("run %q not found", runID)
	}
	return r, err
}

// ListRuns returns all run summaries, newest first.
func (j *SQLiteJournal) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created, bars, trades, wins, open, skipped,
		       initial_equity, final_equity, total_return, max_drawdown
		FROM runs ORDER BY run_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.RunID, &r.Created, &r.Bars, &r.Trades, &r.Wins, &r.Open, &r.Skipped,
			&r.InitialEquity, &r.FinalEquity, &r.TotalReturn, &r.MaxDrawdown,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListTradesByRun returns a run's positions in entry order.
func (j *SQLiteJournal) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, position_id, side, status,
		       entry_index, entry_time, entry_price, size,
		       take_profit, stop_loss, expiration_time,
		       exit_index, exit_time, exit_price, exit_reason,
		       entry_fee, exit_fee, realized_pnl, unrealized_pnl
		FROM trades WHERE run_id = ? ORDER BY entry_index`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(
			&t.RunID, &t.PositionID, &t.Side, &t.Status,
			&t.EntryIndex, &t.EntryTime, &t.EntryPrice, &t.Size,
			&t.TakeProfit, &t.StopLoss, &t.Expiry,
			&t.ExitIndex, &t.ExitTime, &t.ExitPrice, &t.ExitReason,
			&t.EntryFee, &t.ExitFee, &t.RealizedPnL, &t.UnrealizedPnL,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListExposureByRun returns a run's exposure series in timestamp order.
func (j *SQLiteJournal) ListExposureByRun(runID string) ([]ExposureRow, error) {
	rows, err := j.db.Query(`
		SELECT run_id, timestamp, equity, realized_pnl_cum,
		       unrealized_pnl, long_exposure, short_exposure
		FROM exposure WHERE run_id = ? ORDER BY timestamp`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExposureRow
	for rows.Next() {
		var e ExposureRow
		if err := rows.Scan(
			&e.RunID, &e.Timestamp, &e.Equity, &e.RealizedPnL,
			&e.UnrealizedPnL, &e.LongExposure, &e.ShortExposure,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
