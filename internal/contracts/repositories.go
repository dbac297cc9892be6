package contracts

import (
	"context"
	"time"
)

// Promotion carries the fields updated when a WEAK recommendation
// is promoted to STRONG.
type Promotion struct {
	Price       float64
	Score       float64
	Label       string
	TargetPrice float64
	StopLoss    float64
	PromotedAt  time.Time
}

// Sale carries the fields updated when a recommendation is closed.
// When Watch is non-nil the watchlist row is inserted in the same
// transaction that marks the recommendation SOLD.
type Sale struct {
	Price     float64
	ReturnPct float64
	Reason    string
	SoldAt    time.Time
	Watch     *WatchlistEntry
}

// RecommendationRepository manages recommendation rows
type RecommendationRepository interface {
	// Create inserts a new ACTIVE row. Fails with ErrValidation if an
	// ACTIVE row already exists for the symbol.
	Create(ctx context.Context, rec *Recommendation) (int64, error)

	GetActive(ctx context.Context) ([]*Recommendation, error)
	GetActiveByTier(ctx context.Context, tier Tier) ([]*Recommendation, error)
	GetActiveBySymbol(ctx context.Context, symbol string) (*Recommendation, error)
	GetRecentlySold(ctx context.Context, since time.Time) ([]*Recommendation, error)

	// UpdateCheck records the latest observed price and score
	UpdateCheck(ctx context.Context, id int64, price, score float64, label string, checkedAt time.Time) error

	Promote(ctx context.Context, id int64, p Promotion) error
	Sell(ctx context.Context, id int64, s Sale) error

	// UpdateWeeklyReference refreshes the promotion reference close
	UpdateWeeklyReference(ctx context.Context, id int64, price float64, asOf time.Time) error
}

// PerformanceRepository manages append-only performance samples
type PerformanceRepository interface {
	Add(ctx context.Context, sample *PerformanceSample) error
	GetByRecommendation(ctx context.Context, recommendationID int64, limit int) ([]*PerformanceSample, error)
}

// WatchlistRepository manages watchlist entries
type WatchlistRepository interface {
	GetAll(ctx context.Context) ([]*WatchlistEntry, error)
	UpdateCheck(ctx context.Context, id int64, score float64, checkedAt time.Time) error
	Remove(ctx context.Context, id int64) error

	// Reenter creates a fresh ACTIVE recommendation and deletes the
	// watchlist entry in one transaction. Returns the new row id.
	Reenter(ctx context.Context, entryID int64, rec *Recommendation) (int64, error)
}

// InstrumentRepository caches the last good instrument universe so a
// cycle can still run when every live source is down.
type InstrumentRepository interface {
	// ReplaceAll swaps the cached universe for the given one in a
	// single transaction.
	ReplaceAll(ctx context.Context, instruments []Instrument) error

	// GetAll returns the cached universe, ErrNotFound when empty.
	GetAll(ctx context.Context) ([]Instrument, error)
}

// SummaryRepository manages end-of-week summaries
type SummaryRepository interface {
	Add(ctx context.Context, summary *WeeklySummary) error
	GetRecent(ctx context.Context, limit int) ([]*WeeklySummary, error)
}
