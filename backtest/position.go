// Package backtest implements a single-instrument, bar-by-bar trade
// simulator. One call to Run walks the bar series once, opening at most one
// long and one short position at a time from boolean entry signals, exiting
// on take-profit, stop-loss or expiration, and accumulating an exposure
// series plus summary metrics.
package backtest

import "fmt"

// Side: +1 long, -1 short.
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	if s == Short {
		return "short"
	}
	return "long"
}

// Sign returns the direction multiplier used in PnL arithmetic.
func (s Side) Sign() float64 { return float64(s) }

// Status of a position's lifecycle. Positions the data ran out on stay Open.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// ExitReason tags why a position left (or outlived) the simulation.
type ExitReason string

const (
	ExitTakeProfit ExitReason = "take_profit"
	ExitStopLoss   ExitReason = "stop_loss"
	ExitExpired    ExitReason = "expired"
	ExitEndOfData  ExitReason = "end_of_data"
)

// Position is one simulated trade. Identity is (Side, EntryIndex); the ID
// string is derived from exactly that pair, so repeated runs over the same
// inputs produce byte-identical results.
//
// Entry/exit prices include slippage. Fees are tracked separately and are
// charged against equity, never folded into the fill prices.
type Position struct {
	ID   string `json:"id"`
	Side Side   `json:"side"`

	EntryIndex int     `json:"entry_index"`
	EntryTime  float64 `json:"entry_time"`
	EntryPrice float64 `json:"entry_price"`
	Size       float64 `json:"size"`

	TakeProfit float64 `json:"take_profit"`
	StopLoss   float64 `json:"stop_loss"`
	Expiry     float64 `json:"expiration_time"`

	Status     Status     `json:"status"`
	ExitIndex  int        `json:"exit_index,omitempty"`
	ExitTime   float64    `json:"exit_time,omitempty"`
	ExitPrice  float64    `json:"exit_price,omitempty"`
	ExitReason ExitReason `json:"exit_reason,omitempty"`

	EntryFee      float64 `json:"entry_fee"`
	ExitFee       float64 `json:"exit_fee"`
	EntrySlippage float64 `json:"entry_slippage"`
	ExitSlippage  float64 `json:"exit_slippage"`

	// RealizedPnL is net of both fees; set only once closed.
	RealizedPnL float64 `json:"realized_pnl"`
	// UnrealizedPnL is the mark-to-market at the final close; set only for
	// positions still open when the data ends.
	UnrealizedPnL float64 `json:"unrealized_pnl,omitempty"`

	// AbsoluteReturn is exit/entry - 1; RealReturn is net PnL over entry
	// notional. Both zero while open.
	AbsoluteReturn float64 `json:"absolute_return"`
	RealReturn     float64 `json:"real_return"`
}

// FeesPaid is the total of entry and exit fees charged so far.
func (p *Position) FeesPaid() float64 { return p.EntryFee + p.ExitFee }

// Notional is the position's value marked at the given price.
func (p *Position) Notional(mark float64) float64 { return p.Size * mark }

// markPnL is the unrealized PnL at the given mark price, before fees.
func (p *Position) markPnL(mark float64) float64 {
	return (mark - p.EntryPrice) * p.Size * p.Side.Sign()
}

// Diagnostic records an entry request that was rejected and skipped.
// Rejections never abort the run; they are surfaced on the Result instead.
type Diagnostic struct {
	BarIndex int     `json:"bar_index"`
	Time     float64 `json:"time"`
	Side     Side    `json:"side"`
	Reason   string  `json:"reason"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("bar %d %s entry skipped: %s", d.BarIndex, d.Side, d.Reason)
}
