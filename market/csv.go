package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// SignalSet carries the per-bar entry parameters aligned with a Series:
// boolean triggers, absolute TP/SL levels, sizes and expiration timestamps.
type SignalSet struct {
	Long      []bool
	Short     []bool
	LongTP    []float64
	LongSL    []float64
	ShortTP   []float64
	ShortSL   []float64
	LongSize  []float64
	ShortSize []float64
	Expiry    []float64
}

// LoadCSV reads a bar file with columns time,open,high,low,close.
// The time column accepts RFC3339 or unix seconds; a header row is optional.
// Files ending in .xz are decompressed transparently.
func LoadCSV(path string) (*Series, error) {
	r, closer, err := openMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	s := &Series{}
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return s, nil
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}
		if first {
			first = false
			if isHeader(row[0]) {
				continue
			}
		}
		if len(row) < 5 {
			return nil, fmt.Errorf("bad bar row (need time,open,high,low,close): %v", row)
		}

		ts, err := parseTime(row[0])
		if err != nil {
			return nil, err
		}
		vals := make([]float64, 4)
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("bad price %q: %w", row[i+1], err)
			}
			vals[i] = v
		}

		s.Timestamp = append(s.Timestamp, ts)
		s.Open = append(s.Open, vals[0])
		s.High = append(s.High, vals[1])
		s.Low = append(s.Low, vals[2])
		s.Close = append(s.Close, vals[3])
	}
}

// LoadSignalsCSV reads per-bar entry parameters with columns
// long,short,long_tp,long_sl,short_tp,short_sl,long_size,short_size,expiration.
// Rows align 1:1 with the bar file; a header row is optional and .xz files
// are decompressed transparently.
func LoadSignalsCSV(path string) (*SignalSet, error) {
	r, closer, err := openMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	set := &SignalSet{}
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return set, nil
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 {
			continue
		}
		if first {
			first = false
			if isHeader(row[0]) {
				continue
			}
		}
		if len(row) < 9 {
			return nil, fmt.Errorf("bad signal row (need 9 columns): %v", row)
		}

		long, err := parseBool(row[0])
		if err != nil {
			return nil, err
		}
		short, err := parseBool(row[1])
		if err != nil {
			return nil, err
		}
		vals := make([]float64, 7)
		for i := 0; i < 7; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i+2]), 64)
			if err != nil {
				return nil, fmt.Errorf("bad signal value %q: %w", row[i+2], err)
			}
			vals[i] = v
		}

		set.Long = append(set.Long, long)
		set.Short = append(set.Short, short)
		set.LongTP = append(set.LongTP, vals[0])
		set.LongSL = append(set.LongSL, vals[1])
		set.ShortTP = append(set.ShortTP, vals[2])
		set.ShortSL = append(set.ShortSL, vals[3])
		set.LongSize = append(set.LongSize, vals[4])
		set.ShortSize = append(set.ShortSize, vals[5])
		set.Expiry = append(set.Expiry, vals[6])
	}
}

func openMaybeCompressed(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(path, ".xz") {
		return f, f.Close, nil
	}
	xr, err := xz.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("open xz %s: %w", path, err)
	}
	return xr, f.Close, nil
}

func isHeader(field string) bool {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "time", "timestamp", "long":
		return true
	}
	return false
}

func parseTime(field string) (float64, error) {
	s := strings.TrimSpace(field)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return float64(t.Unix()), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return float64(t.Unix()), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad time %q: %w", field, err)
	}
	return v, nil
}

func parseBool(field string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "1", "true", "t", "yes":
		return true, nil
	case "0", "false", "f", "no", "":
		return false, nil
	}
	return false, fmt.Errorf("bad bool %q", field)
}
