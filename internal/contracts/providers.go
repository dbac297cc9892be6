package contracts

import "context"

// PriceProvider supplies market data for analysis
type PriceProvider interface {
	// History returns daily candles in ascending date order covering
	// up to lookbackDays of history. Returns ErrDataUnavailable on
	// fetch failure.
	History(ctx context.Context, symbol string, lookbackDays int) ([]Candle, error)

	// Quotes returns the latest price for each symbol. Symbols that
	// could not be quoted are absent from the result map.
	Quotes(ctx context.Context, symbols []string) (map[string]Quote, error)
}

// UniverseProvider supplies the instrument universe for a cycle
type UniverseProvider interface {
	Instruments(ctx context.Context) ([]Instrument, error)

	// Source names the provider for logging
	Source() string
}

// Analyzer runs the full indicator and scoring pipeline for one
// instrument against fresh market data.
type Analyzer interface {
	Analyze(ctx context.Context, inst Instrument) (*Analysis, error)
}
