package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// CSVJournal writes runs.csv, trades.csv and exposure.csv into one directory.
type CSVJournal struct {
	runs     *csv.Writer
	trades   *csv.Writer
	exposure *csv.Writer
	files    []*os.File
}

func NewCSV(dir string) (*CSVJournal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	j := &CSVJournal{}
	headers := []struct {
		name   string
		fields []string
		dst    **csv.Writer
	}{
		{"runs.csv", []string{
			"run_id", "created", "bars", "trades", "wins", "open", "skipped",
			"initial_equity", "final_equity", "total_return", "max_drawdown",
		}, &j.runs},
		{"trades.csv", []string{
			"run_id", "position_id", "side", "status",
			"entry_index", "entry_time", "entry_price", "size",
			"take_profit", "stop_loss", "expiration_time",
			"exit_index", "exit_time", "exit_price", "exit_reason",
			"entry_fee", "exit_fee", "realized_pnl", "unrealized_pnl",
		}, &j.trades},
		{"exposure.csv", []string{
			"run_id", "timestamp", "equity", "realized_pnl_cum",
			"unrealized_pnl", "long_exposure", "short_exposure",
		}, &j.exposure},
	}

	for _, h := range headers {
		f, err := os.Create(filepath.Join(dir, h.name))
		if err != nil {
			j.Close()
			return nil, err
		}
		j.files = append(j.files, f)

		w := csv.NewWriter(f)
		if err := w.Write(h.fields); err != nil {
			j.Close()
			return nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			j.Close()
			return nil, err
		}
		*h.dst = w
	}

	return j, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Created.Format(time.RFC3339),
		strconv.Itoa(r.Bars),
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Open),
		strconv.Itoa(r.Skipped),
		f(r.InitialEquity),
		f(r.FinalEquity),
		f(r.TotalReturn),
		f(r.MaxDrawdown),
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.RunID,
		t.PositionID,
		t.Side,
		t.Status,
		strconv.Itoa(t.EntryIndex),
		f(t.EntryTime),
		f(t.EntryPrice),
		f(t.Size),
		f(t.TakeProfit),
		f(t.StopLoss),
		f(t.Expiry),
		strconv.Itoa(t.ExitIndex),
		f(t.ExitTime),
		f(t.ExitPrice),
		t.ExitReason,
		f(t.EntryFee),
		f(t.ExitFee),
		f(t.RealizedPnL),
		f(t.UnrealizedPnL),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordExposure(e ExposureRow) error {
	err := j.exposure.Write([]string{
		e.RunID,
		f(e.Timestamp),
		f(e.Equity),
		f(e.RealizedPnL),
		f(e.UnrealizedPnL),
		f(e.LongExposure),
		f(e.ShortExposure),
	})
	if err != nil {
		return err
	}
	j.exposure.Flush()
	return j.exposure.Error()
}

func (j *CSVJournal) Close() error {
	var firstErr error
	for _, w := range []*csv.Writer{j.runs, j.trades, j.exposure} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, file := range j.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
