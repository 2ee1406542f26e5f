package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saransh-28/backtester/market"
)

func openLong(tp, sl, expiry float64) *Position {
	return &Position{
		Side:       Long,
		EntryPrice: 100,
		Size:       1,
		TakeProfit: tp,
		StopLoss:   sl,
		Expiry:     expiry,
		Status:     StatusOpen,
	}
}

func openShort(tp, sl, expiry float64) *Position {
	p := openLong(tp, sl, expiry)
	p.Side = Short
	return p
}

func bar(ts, high, low, close float64) market.Bar {
	return market.Bar{Timestamp: ts, Open: close, High: high, Low: low, Close: close}
}

func TestEvaluateExit(t *testing.T) {
	t.Parallel()

	t.Run("no exit", func(t *testing.T) {
		p := openLong(110, 90, 1000)
		_, hit := evaluateExit(p, bar(1, 105, 95, 100), StopLossFirst)
		assert.False(t, hit)
	})

	t.Run("long stop loss", func(t *testing.T) {
		p := openLong(110, 90, 1000)
		ev, hit := evaluateExit(p, bar(1, 100, 89, 95), StopLossFirst)
		require.True(t, hit)
		assert.Equal(t, ExitStopLoss, ev.Reason)
		assert.Equal(t, 90.0, ev.Price)
	})

	t.Run("long take profit", func(t *testing.T) {
		p := openLong(110, 90, 1000)
		ev, hit := evaluateExit(p, bar(1, 111, 95, 105), StopLossFirst)
		require.True(t, hit)
		assert.Equal(t, ExitTakeProfit, ev.Reason)
		assert.Equal(t, 110.0, ev.Price)
	})

	t.Run("short stop loss on high", func(t *testing.T) {
		p := openShort(90, 110, 1000)
		ev, hit := evaluateExit(p, bar(1, 111, 95, 105), StopLossFirst)
		require.True(t, hit)
		assert.Equal(t, ExitStopLoss, ev.Reason)
		assert.Equal(t, 110.0, ev.Price)
	})

	t.Run("short take profit on low", func(t *testing.T) {
		p := openShort(90, 110, 1000)
		ev, hit := evaluateExit(p, bar(1, 105, 89, 95), StopLossFirst)
		require.True(t, hit)
		assert.Equal(t, ExitTakeProfit, ev.Reason)
		assert.Equal(t, 90.0, ev.Price)
	})

	t.Run("both levels default stop first", func(t *testing.T) {
		p := openLong(110, 90, 1000)
		ev, hit := evaluateExit(p, bar(1, 115, 85, 100), StopLossFirst)
		require.True(t, hit)
		assert.Equal(t, ExitStopLoss, ev.Reason)
		assert.Equal(t, 90.0, ev.Price)
	})

	t.Run("both levels take first policy", func(t *testing.T) {
		p := openLong(110, 90, 1000)
		ev, hit := evaluateExit(p, bar(1, 115, 85, 100), TakeProfitFirst)
		require.True(t, hit)
		assert.Equal(t, ExitTakeProfit, ev.Reason)
		assert.Equal(t, 110.0, ev.Price)
	})

	t.Run("expired settles at close", func(t *testing.T) {
		p := openLong(110, 90, 5)
		ev, hit := evaluateExit(p, bar(5, 105, 95, 101), StopLossFirst)
		require.True(t, hit)
		assert.Equal(t, ExitExpired, ev.Reason)
		assert.Equal(t, 101.0, ev.Price)
	})

	t.Run("level beats expiry within same bar", func(t *testing.T) {
		p := openLong(110, 90, 5)
		ev, hit := evaluateExit(p, bar(5, 111, 95, 101), StopLossFirst)
		require.True(t, hit)
		assert.Equal(t, ExitTakeProfit, ev.Reason)
	})

	t.Run("empty tie break acts as stop first", func(t *testing.T) {
		p := openLong(110, 90, 1000)
		ev, hit := evaluateExit(p, bar(1, 115, 85, 100), TieBreak(""))
		require.True(t, hit)
		assert.Equal(t, ExitStopLoss, ev.Reason)
	})
}

func TestTieBreakValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, TieBreak("").validate())
	assert.NoError(t, StopLossFirst.validate())
	assert.NoError(t, TakeProfitFirst.validate())
	assert.Error(t, TieBreak("coin-flip").validate())
}
