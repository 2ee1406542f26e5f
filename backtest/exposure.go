package backtest

// ExposureRecord is one per-bar snapshot of equity and open notional. The
// engine appends exactly one record per bar, after exits are settled and
// before new entries fill, so a position opened on bar i first shows up in
// the record for bar i+1.
type ExposureRecord struct {
	Timestamp float64 `json:"timestamp"`

	// Equity = initial equity + cumulative realized PnL + unrealized PnL,
	// all marked at this bar's close.
	Equity        float64 `json:"equity"`
	RealizedPnL   float64 `json:"realized_pnl_cum"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`

	// Notional value of open positions per side, marked at the close.
	LongExposure  float64 `json:"long_exposure_value"`
	ShortExposure float64 `json:"short_exposure_value"`
	TotalExposure float64 `json:"total_exposure_value"`
}

// tracker accumulates the exposure series over one run.
type tracker struct {
	initialEquity float64
	cumRealized   float64
	records       []ExposureRecord
}

func newTracker(initialEquity float64, n int) *tracker {
	return &tracker{
		initialEquity: initialEquity,
		records:       make([]ExposureRecord, 0, n),
	}
}

func (tr *tracker) realize(pnl float64) { tr.cumRealized += pnl }

// snapshot appends the record for one bar. open holds the per-side slots,
// nil entries meaning no position on that side.
func (tr *tracker) snapshot(ts, mark float64, open []*Position) {
	rec := ExposureRecord{
		Timestamp:   ts,
		RealizedPnL: tr.cumRealized,
	}
	for _, p := range open {
		if p == nil {
			continue
		}
		rec.UnrealizedPnL += p.markPnL(mark)
		if p.Side == Long {
			rec.LongExposure += p.Notional(mark)
		} else {
			rec.ShortExposure += p.Notional(mark)
		}
	}
	rec.TotalExposure = rec.LongExposure + rec.ShortExposure
	rec.Equity = tr.initialEquity + tr.cumRealized + rec.UnrealizedPnL
	tr.records = append(tr.records, rec)
}
