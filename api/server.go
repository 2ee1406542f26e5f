// Package api exposes the backtest engine over HTTP: one POST endpoint
// taking the full input arrays as JSON and returning the engine result,
// plus health and Prometheus metrics endpoints.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/Saransh-28/backtester/backtest"
	"github.com/Saransh-28/backtester/market"
)

// BacktestRequest mirrors backtest.Config field-for-field as JSON.
type BacktestRequest struct {
	Timestamp []float64 `json:"timestamp" binding:"required"`
	Open      []float64 `json:"open" binding:"required"`
	High      []float64 `json:"high" binding:"required"`
	Low       []float64 `json:"low" binding:"required"`
	Close     []float64 `json:"close" binding:"required"`

	LongSignals  []bool `json:"long_signals" binding:"required"`
	ShortSignals []bool `json:"short_signals" binding:"required"`

	LongTP  []float64 `json:"long_tp" binding:"required"`
	LongSL  []float64 `json:"long_sl" binding:"required"`
	ShortTP []float64 `json:"short_tp" binding:"required"`
	ShortSL []float64 `json:"short_sl" binding:"required"`

	LongSize  []float64 `json:"long_size" binding:"required"`
	ShortSize []float64 `json:"short_size" binding:"required"`

	ExpirationTimes []float64 `json:"expiration_times" binding:"required"`

	EntryFeeRate  float64 `json:"entry_fee_rate"`
	ExitFeeRate   float64 `json:"exit_fee_rate"`
	SlippageRate  float64 `json:"slippage_rate"`
	InitialEquity float64 `json:"initial_equity" binding:"required"`

	TieBreak string `json:"tie_break,omitempty"`
}

func (r *BacktestRequest) toConfig() backtest.Config {
	return backtest.Config{
		Series: market.Series{
			Timestamp: r.Timestamp,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
		},
		Signals: market.SignalSet{
			Long:      r.LongSignals,
			Short:     r.ShortSignals,
			LongTP:    r.LongTP,
			LongSL:    r.LongSL,
			ShortTP:   r.ShortTP,
			ShortSL:   r.ShortSL,
			LongSize:  r.LongSize,
			ShortSize: r.ShortSize,
			Expiry:    r.ExpirationTimes,
		},
		EntryFeeRate:  r.EntryFeeRate,
		ExitFeeRate:   r.ExitFeeRate,
		SlippageRate:  r.SlippageRate,
		InitialEquity: r.InitialEquity,
		TieBreak:      backtest.TieBreak(r.TieBreak),
	}
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server wraps the gin router and its CORS layer.
type Server struct {
	router *gin.Engine
}

func NewServer() *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{router: router}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/backtest", s.runBacktest)
	}

	return s
}

// Handler returns the full HTTP stack, CORS included.
func (s *Server) Handler() http.Handler {
	return cors.Default().Handler(s.router)
}

// ListenAndServe blocks serving the API on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) runBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mtxRuns.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: errorDetail{Code: "INVALID_REQUEST", Message: err.Error()},
		})
		return
	}

	start := time.Now()
	res, err := backtest.Run(req.toConfig())
	if err != nil {
		// Run fails only on input validation; the pass itself cannot error.
		mtxRuns.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: errorDetail{Code: inputErrorCode(err), Message: err.Error()},
		})
		return
	}

	mtxRuns.WithLabelValues("ok").Inc()
	mtxRunDuration.Observe(time.Since(start).Seconds())
	mtxBars.Observe(float64(len(req.Timestamp)))
	mtxRejectedEntries.Add(float64(len(res.Diagnostics)))

	c.JSON(http.StatusOK, res)
}

// inputErrorCode maps the typed validation errors to stable API codes.
func inputErrorCode(err error) string {
	var shape *market.ShapeError
	var mono *market.NonMonotonicTimeError
	var price *market.InvalidPriceError
	switch {
	case errors.As(err, &shape):
		return "SHAPE_ERROR"
	case errors.As(err, &mono):
		return "NON_MONOTONIC_TIME"
	case errors.As(err, &price):
		return "INVALID_PRICE"
	}
	return "INVALID_INPUT"
}
