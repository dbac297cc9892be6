package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advaitm/stockpilot/internal/contracts"
)

func TestWeekEnding(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want time.Time
	}{
		{
			"monday maps to same week friday",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), // Mon
			time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			"friday maps to itself",
			time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			"saturday rolls to next friday",
			time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday rolls to next friday",
			time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, weekEnding(tt.date))
		})
	}
}

func TestWeeklyCloseIndexes(t *testing.T) {
	// Mon 2024-01-01 through Wed 2024-01-10, weekdays only
	var candles []contracts.Candle
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for len(candles) < 8 {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			candles = append(candles, contracts.Candle{Date: day, Close: 100})
		}
		day = day.AddDate(0, 0, 1)
	}

	idx := weeklyCloseIndexes(candles)
	require.Len(t, idx, 2)
	// First week ends at Fri Jan 5 (index 4), second at Wed Jan 10 (index 7)
	assert.Equal(t, 4, idx[0])
	assert.Equal(t, 7, idx[1])
}

func TestDisplacedSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := displacedSMA(values, 2)

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 1.5, out[2], 1e-9)
	assert.InDelta(t, 2.5, out[3], 1e-9)
	assert.InDelta(t, 3.5, out[4], 1e-9)
}

func TestEMASeriesConstantInput(t *testing.T) {
	values := []float64{10, 10, 10, 10, 10}
	out := emaSeries(values, 3)
	for _, v := range out {
		assert.InDelta(t, 10.0, v, 1e-9)
	}
}

func TestRSISeries(t *testing.T) {
	// Strictly rising closes never lose, so RSI saturates at 100
	values := make([]float64, 20)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	out := rsiSeries(values, 14)

	assert.True(t, math.IsNaN(out[13]))
	assert.InDelta(t, 100.0, out[14], 1e-9)
	assert.InDelta(t, 100.0, out[19], 1e-9)

	// Strictly falling closes pin RSI at 0
	for i := range values {
		values[i] = 100 - float64(i)
	}
	out = rsiSeries(values, 14)
	assert.InDelta(t, 0.0, out[19], 1e-9)
}

func TestPctChanges(t *testing.T) {
	out := pctChanges([]float64{100, 110, 99})
	require.Len(t, out, 2)
	assert.InDelta(t, 10.0, out[0], 1e-9)
	assert.InDelta(t, -10.0, out[1], 1e-9)

	assert.Nil(t, pctChanges([]float64{100}))
}

func TestStdDev(t *testing.T) {
	assert.InDelta(t, 2.0, stdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	assert.Equal(t, 0.0, stdDev(nil))
}
