// Package market holds the bar-series container the backtest engine consumes:
// aligned timestamp/OHLC arrays plus the validation that must pass before any
// simulation is allowed to start.
package market

import (
	"fmt"
	"math"
)

// ShapeError reports input arrays whose lengths disagree (or an empty series).
type ShapeError struct {
	Name string // which array is off
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	if e.Want == e.Got {
		return fmt.Sprintf("series %q must have at least one bar", e.Name)
	}
	return fmt.Sprintf("series %q has length %d, want %d", e.Name, e.Got, e.Want)
}

// NonMonotonicTimeError reports a timestamp that does not strictly increase.
type NonMonotonicTimeError struct {
	Index int
	Prev  float64
	Curr  float64
}

func (e *NonMonotonicTimeError) Error() string {
	return fmt.Sprintf("timestamp[%d]=%v does not increase over %v", e.Index, e.Curr, e.Prev)
}

// InvalidPriceError reports a NaN or infinite value in a price array.
type InvalidPriceError struct {
	Field string
	Index int
	Value float64
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("%s[%d]=%v is not a finite price", e.Field, e.Index, e.Value)
}

// Bar is one OHLC candle plus its timestamp in float seconds.
type Bar struct {
	Timestamp float64
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// Series holds the aligned bar arrays. The engine indexes it directly, so a
// Series must be validated before use.
type Series struct {
	Timestamp []float64
	Open      []float64
	High      []float64
	Low       []float64
	Close     []float64
}

// Len returns the number of bars keyed off the timestamp array.
func (s *Series) Len() int { return len(s.Timestamp) }

// Bar returns the candle at index i. No bounds check beyond the slice's own.
func (s *Series) Bar(i int) Bar {
	return Bar{
		Timestamp: s.Timestamp[i],
		Open:      s.Open[i],
		High:      s.High[i],
		Low:       s.Low[i],
		Close:     s.Close[i],
	}
}

// Validate checks the series invariants:
//   - all arrays share the same non-zero length (ShapeError otherwise),
//   - timestamps are strictly increasing (NonMonotonicTimeError),
//   - every price and timestamp is finite (InvalidPriceError with index).
//
// Validation has no side effects; it is run once per backtest call and a
// failure aborts the call before any simulation state is built.
func (s *Series) Validate() error {
	n := s.Len()
	if n == 0 {
		return &ShapeError{Name: "timestamp"}
	}

	cols := []struct {
		name string
		data []float64
	}{
		{"open", s.Open},
		{"high", s.High},
		{"low", s.Low},
		{"close", s.Close},
	}
	for _, col := range cols {
		if len(col.data) != n {
			return &ShapeError{Name: col.name, Want: n, Got: len(col.data)}
		}
	}

	for i, ts := range s.Timestamp {
		if math.IsNaN(ts) || math.IsInf(ts, 0) {
			return &InvalidPriceError{Field: "timestamp", Index: i, Value: ts}
		}
		if i > 0 && ts <= s.Timestamp[i-1] {
			return &NonMonotonicTimeError{Index: i, Prev: s.Timestamp[i-1], Curr: ts}
		}
	}

	for _, col := range cols {
		for i, v := range col.data {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &InvalidPriceError{Field: col.name, Index: i, Value: v}
			}
		}
	}

	return nil
}
