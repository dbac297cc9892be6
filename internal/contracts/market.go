package contracts

import "time"

// Candle represents a single daily price bar.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Quote represents the latest traded price for an instrument
type Quote struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"as_of"`
}

// Instrument is a tradable equity in the analysis universe
type Instrument struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Series string `json:"series,omitempty"` // NSE series, e.g. EQ
	ISIN   string `json:"isin,omitempty"`
	Sector string `json:"sector,omitempty"`
}

// Analysis is the per-instrument result handed from the analysis
// stage to the lifecycle manager. It carries only what lifecycle
// decisions need, not the full indicator breakdown.
type Analysis struct {
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	Score      float64   `json:"score"`
	Label      string    `json:"label"`
	Reasons    string    `json:"reasons"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}
