package indicators

import (
	"fmt"
	"math"
	"sort"

	"github.com/advaitm/stockpilot/internal/contracts"
)

const (
	// MinDailyBars is the minimum daily history required before any
	// indicator is computed.
	MinDailyBars = 50

	// analysisWeeks is the weekly window all indicators are judged over
	analysisWeeks = 26

	// volumeMADays is the moving average window for OBV and VPT
	volumeMADays = 120

	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
	rsiPeriod  = 14
)

// Calculator computes the weekly indicator bundle from daily candles.
// It is stateless and safe for concurrent use.
type Calculator struct{}

// NewCalculator returns a Calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute derives the full indicator bundle for one instrument.
// Candles may arrive in any order; they are sorted by date. Returns
// ErrInsufficientData when fewer than MinDailyBars are supplied.
// Individual indicators that lack enough history are left nil.
func (c *Calculator) Compute(symbol string, candles []contracts.Candle) (*Bundle, error) {
	if len(candles) < MinDailyBars {
		return nil, fmt.Errorf("%s: %d daily bars, need %d: %w",
			symbol, len(candles), MinDailyBars, contracts.ErrInsufficientData)
	}

	sorted := make([]contracts.Candle, len(candles))
	copy(sorted, candles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	closes := make([]float64, len(sorted))
	volumes := make([]float64, len(sorted))
	for i, cd := range sorted {
		if cd.Close <= 0 {
			return nil, fmt.Errorf("%s: non-positive close on %s: %w",
				symbol, cd.Date.Format("2006-01-02"), contracts.ErrValidation)
		}
		closes[i] = cd.Close
		volumes[i] = float64(cd.Volume)
	}

	weekIdx := weeklyCloseIndexes(sorted)
	weeklyCloses := sampleAt(closes, weekIdx)
	weeklyVolumes := weeklyVolumeSums(sorted)
	price := closes[len(closes)-1]

	b := &Bundle{Symbol: symbol, Price: price}
	b.SMA50 = c.movingAverage(closes, weeklyCloses, weekIdx, 50, price)
	b.SMA200 = c.movingAverage(closes, weeklyCloses, weekIdx, 200, price)
	b.MACD = c.macd(weeklyCloses)
	b.RSI = c.rsi(weeklyCloses)
	b.OBV = c.volumeIndicator(obvSeries(closes, volumes), weekIdx)
	b.VPT = c.volumeIndicator(vptSeries(closes, volumes), weekIdx)
	b.PriceAction = c.priceAction(weeklyCloses, weeklyVolumes)

	return b, nil
}

// movingAverage builds the displaced SMA view for one window. Nil
// when the window never fills.
func (c *Calculator) movingAverage(closes, weeklyCloses []float64, weekIdx []int, window int, price float64) *MovingAverage {
	dma := displacedSMA(closes, window)
	weekly := tail(sampleAt(dma, weekIdx), analysisWeeks)
	if len(weekly) < 2 {
		return nil
	}

	current := weekly[len(weekly)-1]
	trend := TrendFalling
	if current > weekly[0] {
		trend = TrendRising
	}

	// Weekly closes align with the MA samples from the end; the MA
	// series only loses points to warmup at the front.
	aligned := tail(weeklyCloses, len(weekly))
	above := make([]bool, len(weekly))
	for i := range weekly {
		above[i] = aligned[i] > weekly[i]
	}

	return &MovingAverage{
		Window:      window,
		Current:     current,
		Weekly:      weekly,
		PriceAbove:  price > current,
		AboveSeries: above,
		Trend:       trend,
	}
}

// macd computes the weekly MACD. Nil when fewer weekly closes than
// the slow span are available.
func (c *Calculator) macd(weeklyCloses []float64) *MACD {
	if len(weeklyCloses) < macdSlow {
		return nil
	}

	fast := emaSeries(weeklyCloses, macdFast)
	slow := emaSeries(weeklyCloses, macdSlow)
	line := make([]float64, len(weeklyCloses))
	for i := range line {
		line[i] = fast[i] - slow[i]
	}
	signal := emaSeries(line, macdSignal)

	last := len(line) - 1
	m := &MACD{
		Line:      line[last],
		Signal:    signal[last],
		Histogram: line[last] - signal[last],
		Crossover: CrossoverNone,
	}
	// Crossover is a cross event on the latest week, not the position
	// of the line. A line that has sat above its signal for months
	// stays CrossoverNone.
	if line[last] > signal[last] && line[last-1] <= signal[last-1] {
		m.Crossover = CrossoverBullish
	} else if line[last] < signal[last] && line[last-1] >= signal[last-1] {
		m.Crossover = CrossoverBearish
	}

	// Count crossover events over the last four weeks
	from := last - 4
	if from < 1 {
		from = 1
	}
	for i := from; i <= last; i++ {
		up := line[i] > signal[i] && line[i-1] <= signal[i-1]
		down := line[i] < signal[i] && line[i-1] >= signal[i-1]
		if up {
			m.RecentBullish++
		}
		if down {
			m.RecentBearish++
		}
	}

	return m
}

// rsi computes the weekly Wilder RSI. Nil before the warmup fills.
func (c *Calculator) rsi(weeklyCloses []float64) *RSI {
	series := rsiSeries(weeklyCloses, rsiPeriod)
	last := len(series) - 1
	if last < 0 || math.IsNaN(series[last]) {
		return nil
	}

	r := &RSI{Current: series[last]}
	if last >= 4 && !math.IsNaN(series[last-4]) && series[last-4] != 0 {
		r.Trend4W = (series[last] - series[last-4]) / series[last-4] * 100
		r.HasTrend = true
	}
	return r
}

// volumeIndicator summarizes a cumulative volume series (OBV or VPT)
func (c *Calculator) volumeIndicator(series []float64, weekIdx []int) *VolumeIndicator {
	weekly := tail(sampleAt(series, weekIdx), analysisWeeks)
	if len(weekly) < 2 {
		return nil
	}

	current := weekly[len(weekly)-1]
	v := &VolumeIndicator{Current: current}
	if first := weekly[0]; first != 0 {
		v.ChangePct = (current - first) / math.Abs(first) * 100
	}
	if len(series) >= volumeMADays {
		v.MA = mean(series[len(series)-volumeMADays:])
		v.AboveMA = current > v.MA
		v.HasMA = true
	}
	return v
}

// priceAction summarizes the last month of weekly behavior. Nil when
// fewer than five weekly closes exist.
func (c *Calculator) priceAction(weeklyCloses, weeklyVolumes []float64) *PriceAction {
	changes := pctChanges(weeklyCloses)
	if len(changes) < 4 {
		return nil
	}

	last4 := tail(changes, 4)
	p := &PriceAction{
		WeeklyChanges:   last4,
		AvgWeeklyChange: mean(last4),
		// Volatility covers the analysis window only, so an old wild
		// stretch outside it cannot mark a now-quiet stock as risky
		Volatility: stdDev(tail(changes, analysisWeeks-1)),
	}
	if len(weeklyVolumes) >= 8 {
		recent := mean(weeklyVolumes[len(weeklyVolumes)-4:])
		prior := mean(weeklyVolumes[len(weeklyVolumes)-8 : len(weeklyVolumes)-4])
		if prior != 0 {
			p.VolumeTrend = (recent - prior) / prior * 100
			p.HasVolumeTrend = true
		}
	}
	return p
}

// obvSeries builds daily on-balance volume
func obvSeries(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// vptSeries builds daily volume-price trend
func vptSeries(closes, volumes []float64) []float64 {
	out := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := (closes[i] - closes[i-1]) / closes[i-1]
		out[i] = out[i-1] + volumes[i]*change
	}
	return out
}

// weeklyVolumeSums sums daily volume per Friday-ending week
func weeklyVolumeSums(candles []contracts.Candle) []float64 {
	var out []float64
	var current int64 = math.MinInt64
	for _, c := range candles {
		end := weekEnding(c.Date).Unix()
		if end != current {
			out = append(out, 0)
			current = end
		}
		out[len(out)-1] += float64(c.Volume)
	}
	return out
}
