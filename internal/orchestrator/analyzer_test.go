package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/config"
	"github.com/advaitm/stockpilot/pkg/logger"
)

type historyStub struct {
	candles []contracts.Candle
	err     error
}

func (h *historyStub) History(ctx context.Context, symbol string, lookbackDays int) ([]contracts.Candle, error) {
	return h.candles, h.err
}

func (h *historyStub) Quotes(ctx context.Context, symbols []string) (map[string]contracts.Quote, error) {
	return nil, nil
}

// uptrendCandles builds n weekday bars with a steady climb
func uptrendCandles(n int) []contracts.Candle {
	out := make([]contracts.Candle, 0, n)
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 100.0
	for len(out) < n {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			price *= 1.002
			out = append(out, contracts.Candle{
				Date: day, Open: price * 0.995, High: price * 1.01,
				Low: price * 0.99, Close: price, Volume: 1000 + int64(len(out)),
			})
		}
		day = day.AddDate(0, 0, 1)
	}
	return out
}

func newTestAnalyzer(prices contracts.PriceProvider) *PipelineAnalyzer {
	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
		Analysis: config.AnalysisConfig{LookbackDays: 730, ScoreTimeout: time.Second},
	}
	return NewAnalyzer(cfg, prices, logger.New(cfg))
}

func TestAnalyzeScoresUptrend(t *testing.T) {
	a := newTestAnalyzer(&historyStub{candles: uptrendCandles(500)})

	analysis, err := a.Analyze(context.Background(), contracts.Instrument{Symbol: "UP", Name: "Up"})
	require.NoError(t, err)

	assert.Equal(t, "UP", analysis.Symbol)
	assert.Greater(t, analysis.Score, 50.0)
	assert.NotEmpty(t, analysis.Label)
	assert.NotEmpty(t, analysis.Reasons)
	assert.Greater(t, analysis.Price, 100.0)
}

func TestAnalyzeFetchFailure(t *testing.T) {
	a := newTestAnalyzer(&historyStub{err: contracts.ErrDataUnavailable})

	_, err := a.Analyze(context.Background(), contracts.Instrument{Symbol: "DOWN"})
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}

func TestAnalyzeShortHistory(t *testing.T) {
	a := newTestAnalyzer(&historyStub{candles: uptrendCandles(20)})

	_, err := a.Analyze(context.Background(), contracts.Instrument{Symbol: "IPO"})
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}
