package backtest

import "math"

// SideMetrics summarizes one scope of closed trades: overall, long-only or
// short-only. Ratio metrics that would divide by zero are nil rather than
// Inf/NaN, so results stay JSON-clean.
type SideMetrics struct {
	Trades  int     `json:"trades"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`

	GrossProfit float64 `json:"gross_profit"`
	// GrossLoss is reported as a positive magnitude.
	GrossLoss float64 `json:"gross_loss"`
	// ProfitFactor is gross profit over gross loss; nil when there are no
	// losing trades to divide by.
	ProfitFactor *float64 `json:"profit_factor"`

	AveragePnL    float64 `json:"average_pnl"`
	AverageReturn float64 `json:"average_return"`
	// SharpeRatio is mean over stddev of per-trade returns on the evolving
	// equity curve; nil with fewer than two trades or zero variance.
	SharpeRatio *float64 `json:"sharpe_ratio"`

	LargestWin  float64 `json:"largest_win"`
	LargestLoss float64 `json:"largest_loss"`

	MaxDrawdown float64 `json:"max_drawdown"`
	TotalPnL    float64 `json:"total_pnl"`
	TotalReturn float64 `json:"total_return"`
	FinalEquity float64 `json:"final_equity"`
}

// Summary groups the three metric scopes of one run.
type Summary struct {
	Overall SideMetrics `json:"overall"`
	Long    SideMetrics `json:"long"`
	Short   SideMetrics `json:"short"`
}

// computeSummary reduces the closed-trade list and the exposure series.
//
// The per-side scopes build their equity curve from closed trades alone. The
// overall scope instead takes its curve statistics (final equity, total
// return, max drawdown) from the bar-level exposure series, which also
// carries unrealized PnL of positions still open at the end.
func computeSummary(initialEquity float64, closed []Position, exposure []ExposureRecord) Summary {
	var longs, shorts []Position
	for _, p := range closed {
		if p.Side == Long {
			longs = append(longs, p)
		} else {
			shorts = append(shorts, p)
		}
	}

	overall := sideMetrics(initialEquity, closed)
	if len(exposure) > 0 {
		final := exposure[len(exposure)-1].Equity
		overall.FinalEquity = final
		overall.TotalReturn = final/initialEquity - 1
		overall.MaxDrawdown = equityDrawdown(initialEquity, exposure)
	}

	return Summary{
		Overall: overall,
		Long:    sideMetrics(initialEquity, longs),
		Short:   sideMetrics(initialEquity, shorts),
	}
}

// sideMetrics reduces one scope's closed trades. Trades arrive in exit
// order, so the equity curve needs no re-sort.
func sideMetrics(initialEquity float64, trades []Position) SideMetrics {
	m := SideMetrics{
		Trades:      len(trades),
		FinalEquity: initialEquity,
	}

	equity := initialEquity
	var returns []float64
	for _, p := range trades {
		prev := equity
		equity += p.RealizedPnL
		m.TotalPnL += p.RealizedPnL

		if p.RealizedPnL > 0 {
			m.Wins++
			m.GrossProfit += p.RealizedPnL
			if p.RealizedPnL > m.LargestWin {
				m.LargestWin = p.RealizedPnL
			}
		} else if p.RealizedPnL < 0 {
			m.GrossLoss += -p.RealizedPnL
			if -p.RealizedPnL > m.LargestLoss {
				m.LargestLoss = -p.RealizedPnL
			}
		}

		if prev > 0 {
			returns = append(returns, p.RealizedPnL/prev)
		} else {
			returns = append(returns, 0)
		}
	}

	if m.Trades == 0 {
		return m
	}

	m.FinalEquity = equity
	m.TotalReturn = equity/initialEquity - 1
	m.WinRate = float64(m.Wins) / float64(m.Trades)
	m.AveragePnL = m.TotalPnL / float64(m.Trades)
	if m.GrossLoss > 0 {
		pf := m.GrossProfit / m.GrossLoss
		m.ProfitFactor = &pf
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	m.AverageReturn = mean

	if len(returns) > 1 {
		variance := 0.0
		for _, r := range returns {
			variance += (r - mean) * (r - mean)
		}
		std := math.Sqrt(variance / float64(len(returns)-1))
		if std > 0 {
			sharpe := mean / std
			m.SharpeRatio = &sharpe
		}
	}

	m.MaxDrawdown = tradeDrawdown(initialEquity, trades)
	return m
}

// tradeDrawdown walks the closed-trade equity curve.
func tradeDrawdown(initialEquity float64, trades []Position) float64 {
	peak := initialEquity
	equity := initialEquity
	maxDD := 0.0
	for _, p := range trades {
		equity += p.RealizedPnL
		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (peak - equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// equityDrawdown walks the bar-level equity series.
func equityDrawdown(initialEquity float64, exposure []ExposureRecord) float64 {
	peak := initialEquity
	maxDD := 0.0
	for _, rec := range exposure {
		if rec.Equity > peak {
			peak = rec.Equity
		}
		if peak > 0 {
			if dd := (peak - rec.Equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}
