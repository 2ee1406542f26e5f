package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, bars, trades, wins, open, skipped,
		 initial_equity, final_equity, total_return, max_drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Bars, r.Trades, r.Wins, r.Open, r.Skipped,
		r.InitialEquity, r.FinalEquity, r.TotalReturn, r.MaxDrawdown,
	)
	return err
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, position_id, side, status,
		 entry_index, entry_time, entry_price, size,
		 take_profit, stop_loss, expiration_time,
		 exit_index, exit_time, exit_price, exit_reason,
		 entry_fee, exit_fee, realized_pnl, unrealized_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.PositionID, t.Side, t.Status,
		t.EntryIndex, t.EntryTime, t.EntryPrice, t.Size,
		t.TakeProfit, t.StopLoss, t.Expiry,
		t.ExitIndex, t.ExitTime, t.ExitPrice, t.ExitReason,
		t.EntryFee, t.ExitFee, t.RealizedPnL, t.UnrealizedPnL,
	)
	return err
}

func (j *SQLiteJournal) RecordExposure(e ExposureRow) error {
	_, err := j.db.Exec(`
		INSERT INTO exposure
		(run_id, timestamp, equity, realized_pnl_cum,
		 unrealized_pnl, long_exposure, short_exposure)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Timestamp, e.Equity, e.RealizedPnL,
		e.UnrealizedPnL, e.LongExposure, e.ShortExposure,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
