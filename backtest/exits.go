package backtest

import (
	"fmt"

	"github.com/Saransh-28/backtester/market"
)

// TieBreak decides which exit wins when a single bar's range touches both
// the stop-loss and the take-profit. OHLC alone cannot tell which level was
// hit first, so the choice is policy, not inference.
type TieBreak string

const (
	// StopLossFirst is the conservative worst-case-for-the-trader default.
	StopLossFirst TieBreak = "stop_first"
	// TakeProfitFirst is the optimistic alternative.
	TakeProfitFirst TieBreak = "take_first"
)

func (tb TieBreak) validate() error {
	switch tb {
	case "", StopLossFirst, TakeProfitFirst:
		return nil
	}
	return fmt.Errorf("unknown tie-break policy %q", tb)
}

// choose resolves the both-levels-hit case for a position. This is the single
// decision point for the policy; the engine never inspects the tie itself.
func (tb TieBreak) choose(p *Position) (float64, ExitReason) {
	if tb == TakeProfitFirst {
		return p.TakeProfit, ExitTakeProfit
	}
	return p.StopLoss, ExitStopLoss
}

// exitEvent is the evaluator's verdict for one open position on one bar.
// Price is the raw trigger level before slippage.
type exitEvent struct {
	Price  float64
	Reason ExitReason
}

// evaluateExit checks an open position against one bar's range.
//
// Priority: expiration settles at the bar close, but only when the price has
// not independently reached a level within the same bar; otherwise the level
// exit wins. When both stop and take are reachable the tie-break policy
// picks one. Exit prices are the trigger levels themselves, never the bar
// open or close (except expiration, which settles at the close).
func evaluateExit(p *Position, bar market.Bar, tb TieBreak) (exitEvent, bool) {
	var hitSL, hitTP bool
	if p.Side == Long {
		hitSL = bar.Low <= p.StopLoss
		hitTP = bar.High >= p.TakeProfit
	} else {
		hitSL = bar.High >= p.StopLoss
		hitTP = bar.Low <= p.TakeProfit
	}

	if bar.Timestamp >= p.Expiry && !hitSL && !hitTP {
		return exitEvent{Price: bar.Close, Reason: ExitExpired}, true
	}

	switch {
	case hitSL && hitTP:
		price, reason := tb.choose(p)
		return exitEvent{Price: price, Reason: reason}, true
	case hitSL:
		return exitEvent{Price: p.StopLoss, Reason: ExitStopLoss}, true
	case hitTP:
		return exitEvent{Price: p.TakeProfit, Reason: ExitTakeProfit}, true
	}
	return exitEvent{}, false
}
