package indicators

// Trend is the direction of an indicator over its window
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
)

// Crossover is a MACD line/signal cross event on the latest week
type Crossover string

const (
	CrossoverBullish Crossover = "bullish"
	CrossoverBearish Crossover = "bearish"
	CrossoverNone    Crossover = "none"
)

// MovingAverage holds a displaced moving average sampled weekly.
// The average is computed over closes up to but excluding the
// current day, then sampled at each week's last trading day.
type MovingAverage struct {
	Window     int       `json:"window"`
	Current    float64   `json:"current"`
	Weekly     []float64 `json:"weekly"`
	PriceAbove bool      `json:"price_above"`

	// AboveSeries flags, per weekly point, whether the close sat
	// above the average.
	AboveSeries []bool `json:"above_series,omitempty"`

	Trend Trend `json:"trend"`
}

// MACD holds the weekly MACD state
type MACD struct {
	Line      float64   `json:"line"`
	Signal    float64   `json:"signal"`
	Histogram float64   `json:"histogram"`
	Crossover Crossover `json:"crossover"`

	// Crossover events observed in the last four weeks
	RecentBullish int `json:"recent_bullish"`
	RecentBearish int `json:"recent_bearish"`
}

// RSI holds the weekly relative strength index
type RSI struct {
	Current  float64 `json:"current"`
	Trend4W  float64 `json:"trend_4w"` // percent change over four weeks
	HasTrend bool    `json:"has_trend"`
}

// VolumeIndicator holds a cumulative volume series (OBV or VPT)
// sampled weekly over the analysis window.
type VolumeIndicator struct {
	Current   float64 `json:"current"`
	ChangePct float64 `json:"change_pct"` // over the 26-week window
	MA        float64 `json:"ma"`         // 120-day moving average
	AboveMA   bool    `json:"above_ma"`
	HasMA     bool    `json:"has_ma"`
}

// PriceAction summarizes recent weekly price and volume behavior
type PriceAction struct {
	WeeklyChanges   []float64 `json:"weekly_changes"`    // last 4 weeks, percent
	AvgWeeklyChange float64   `json:"avg_weekly_change"` // mean of WeeklyChanges
	Volatility      float64   `json:"volatility"`        // stddev of weekly changes, 26-week window
	VolumeTrend     float64   `json:"volume_trend"`      // last 4w vs prior 4w, percent
	HasVolumeTrend  bool      `json:"has_volume_trend"`
}

// Bundle is the full indicator set for one instrument. Indicators
// that lack enough history are nil and skipped by the scorer.
type Bundle struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`

	SMA50       *MovingAverage   `json:"sma50,omitempty"`
	SMA200      *MovingAverage   `json:"sma200,omitempty"`
	MACD        *MACD            `json:"macd,omitempty"`
	RSI         *RSI             `json:"rsi,omitempty"`
	OBV         *VolumeIndicator `json:"obv,omitempty"`
	VPT         *VolumeIndicator `json:"vpt,omitempty"`
	PriceAction *PriceAction     `json:"price_action,omitempty"`
}
