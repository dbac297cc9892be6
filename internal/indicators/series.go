package indicators

import (
	"math"
	"time"

	"github.com/advaitm/stockpilot/internal/contracts"
)

// weekEnding returns the Friday on or after t. Saturday and Sunday
// dates roll forward to the next week's Friday.
func weekEnding(t time.Time) time.Time {
	days := (int(time.Friday) - int(t.Weekday()) + 7) % 7
	end := t.AddDate(0, 0, days)
	return time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, t.Location())
}

// weeklyCloseIndexes returns, for each Friday-ending week present in
// the candles, the index of that week's last trading day. Candles
// must be in ascending date order.
func weeklyCloseIndexes(candles []contracts.Candle) []int {
	var idx []int
	var current time.Time
	for i, c := range candles {
		end := weekEnding(c.Date)
		if i == 0 || !end.Equal(current) {
			idx = append(idx, i)
			current = end
		} else {
			idx[len(idx)-1] = i
		}
	}
	return idx
}

// sampleAt picks series values at the given indexes, dropping NaN
// warmup values.
func sampleAt(series []float64, indexes []int) []float64 {
	out := make([]float64, 0, len(indexes))
	for _, i := range indexes {
		if !math.IsNaN(series[i]) {
			out = append(out, series[i])
		}
	}
	return out
}

// tail returns the last n values of s, or s itself when shorter
func tail(s []float64, n int) []float64 {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// displacedSMA computes a rolling mean over the previous window
// values, excluding the current one. Warmup values are NaN.
func displacedSMA(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i := range values {
		if i > 0 {
			sum += values[i-1]
		}
		if i < window {
			out[i] = math.NaN()
			continue
		}
		if i > window {
			sum -= values[i-window-1]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// emaSeries computes an exponential moving average with the usual
// alpha = 2/(span+1), seeded with the first value.
func emaSeries(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// rsiSeries computes a Wilder-smoothed RSI. Warmup values are NaN.
func rsiSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(values) <= period {
		return out
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// mean averages s; zero for an empty slice
func mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

// stdDev computes the population standard deviation of s
func stdDev(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	m := mean(s)
	var sq float64
	for _, v := range s {
		sq += (v - m) * (v - m)
	}
	return math.Sqrt(sq / float64(len(s)))
}

// pctChanges converts a series into percent changes between
// consecutive values.
func pctChanges(s []float64) []float64 {
	if len(s) < 2 {
		return nil
	}
	out := make([]float64, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		if s[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (s[i]-s[i-1])/s[i-1]*100)
	}
	return out
}
