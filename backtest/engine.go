package backtest

import "fmt"

// Result is the complete output of one Run call.
type Result struct {
	ClosedPositions []Position       `json:"closed_positions"`
	OpenPositions   []Position       `json:"open_positions"`
	Exposure        []ExposureRecord `json:"exposure_time_series"`
	Metrics         Summary          `json:"metrics"`
	Diagnostics     []Diagnostic     `json:"diagnostics,omitempty"`
}

// slot indexes for the per-side open-position array.
const (
	slotLong = iota
	slotShort
	slotCount
)

func slotFor(s Side) int {
	if s == Long {
		return slotLong
	}
	return slotShort
}

// Run simulates the configured signals over the bar series in one pass.
//
// Per bar the order is fixed: settle exits for open positions, snapshot the
// exposure tracker, then fill new entries at the bar close. Positions still
// open after the last bar are reported in OpenPositions marked to market at
// the final close; they are never force-closed and contribute nothing to
// realized metrics.
//
// Run is a pure function of cfg: no state survives the call and identical
// inputs produce identical outputs.
func Run(cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	n := cfg.Series.Len()
	res := &Result{
		ClosedPositions: []Position{},
		OpenPositions:   []Position{},
	}
	tr := newTracker(cfg.InitialEquity, n)

	var slots [slotCount]*Position

	for i := 0; i < n; i++ {
		bar := cfg.Series.Bar(i)

		// 1) Exits for any open position.
		for si, p := range slots {
			if p == nil {
				continue
			}
			ev, hit := evaluateExit(p, bar, cfg.TieBreak)
			if !hit {
				continue
			}
			closePosition(p, i, bar.Timestamp, ev, &cfg)
			tr.realize(p.RealizedPnL)
			res.ClosedPositions = append(res.ClosedPositions, *p)
			slots[si] = nil
		}

		// 2) One exposure record per bar, unconditionally.
		tr.snapshot(bar.Timestamp, bar.Close, slots[:])

		// 3) New entries at the bar close.
		for _, side := range []Side{Long, Short} {
			si := slotFor(side)
			if !cfg.signal(side, i) || slots[si] != nil {
				continue
			}
			p, err := openPosition(side, i, bar.Timestamp, bar.Close, &cfg)
			if err != nil {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					BarIndex: i,
					Time:     bar.Timestamp,
					Side:     side,
					Reason:   err.Error(),
				})
				continue
			}
			slots[si] = p
		}
	}

	// 4) Whatever is still open stays open, marked at the final close.
	finalClose := cfg.Series.Close[n-1]
	for _, p := range slots {
		if p == nil {
			continue
		}
		p.ExitReason = ExitEndOfData
		p.UnrealizedPnL = p.markPnL(finalClose)
		res.OpenPositions = append(res.OpenPositions, *p)
	}

	res.Exposure = tr.records
	res.Metrics = computeSummary(cfg.InitialEquity, res.ClosedPositions, res.Exposure)
	return res, nil
}

// openPosition validates one entry request and fills it at the bar close.
// The fill price carries slippage against the trader; the entry fee is on
// the filled notional and charged to equity, not baked into the price.
//
// A rejected request returns an error the caller records as a Diagnostic;
// rejections are never fatal to the run.
func openPosition(side Side, i int, ts, close float64, cfg *Config) (*Position, error) {
	tp, sl, size := cfg.levels(side)

	if size[i] <= 0 {
		return nil, fmt.Errorf("size %v must be > 0", size[i])
	}

	fill := close * (1 + cfg.SlippageRate*side.Sign())
	if side == Long {
		if tp[i] <= fill || sl[i] >= fill {
			return nil, fmt.Errorf("long levels inverted: need sl %v < entry %v < tp %v", sl[i], fill, tp[i])
		}
	} else {
		if tp[i] >= fill || sl[i] <= fill {
			return nil, fmt.Errorf("short levels inverted: need tp %v < entry %v < sl %v", tp[i], fill, sl[i])
		}
	}
	if cfg.Signals.Expiry[i] <= ts {
		return nil, fmt.Errorf("expiration %v not after entry time %v", cfg.Signals.Expiry[i], ts)
	}

	return &Position{
		ID:            fmt.Sprintf("%s-%d", side, i),
		Side:          side,
		EntryIndex:    i,
		EntryTime:     ts,
		EntryPrice:    fill,
		Size:          size[i],
		TakeProfit:    tp[i],
		StopLoss:      sl[i],
		Expiry:        cfg.Signals.Expiry[i],
		Status:        StatusOpen,
		EntryFee:      fill * size[i] * cfg.EntryFeeRate,
		EntrySlippage: fill - close,
	}, nil
}

// closePosition settles an exit event: slippage moves the fill against the
// trader, the exit fee is charged on the filled notional, and net PnL plus
// the reporting returns are finalized.
func closePosition(p *Position, i int, ts float64, ev exitEvent, cfg *Config) {
	fill := ev.Price * (1 - cfg.SlippageRate*p.Side.Sign())

	p.Status = StatusClosed
	p.ExitIndex = i
	p.ExitTime = ts
	p.ExitPrice = fill
	p.ExitReason = ev.Reason
	p.ExitSlippage = ev.Price - fill
	if p.ExitSlippage < 0 {
		p.ExitSlippage = -p.ExitSlippage
	}
	p.ExitFee = fill * p.Size * cfg.ExitFeeRate

	gross := (fill - p.EntryPrice) * p.Size * p.Side.Sign()
	p.RealizedPnL = gross - p.EntryFee - p.ExitFee
	p.UnrealizedPnL = 0

	p.AbsoluteReturn = fill/p.EntryPrice - 1
	if notional := p.EntryPrice * p.Size; notional > 0 {
		p.RealReturn = p.RealizedPnL / notional
	}
}
