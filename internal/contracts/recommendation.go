package contracts

import "time"

// Tier is the lifecycle tier of a recommendation
type Tier string

const (
	TierStrong Tier = "STRONG"
	TierWeak   Tier = "WEAK"
	TierHold   Tier = "HOLD"
)

// Tier thresholds. Scores below MinActionableScore are never persisted.
const (
	StrongTierMinScore = 70.0
	WeakTierMinScore   = 50.0
	MinActionableScore = 35.0
)

// TierForScore maps a composite score to its lifecycle tier
func TierForScore(score float64) Tier {
	switch {
	case score >= StrongTierMinScore:
		return TierStrong
	case score >= WeakTierMinScore:
		return TierWeak
	default:
		return TierHold
	}
}

// Status is the persistence status of a recommendation
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusSold   Status = "SOLD"
)

// Sell reasons, in evaluation priority order for STRONG holdings
const (
	SellScoreDeterioration = "hard score deterioration"
	SellStopLoss           = "stop loss"
	SellWeakWithLoss       = "weak-indicator confirmation"

	// End-of-week cleanup reasons, evaluated before the daily rules
	SellFastDecline = "fast decline"
	SellSlowDecline = "slow decline"
	SellStagnant    = "stagnation"
)

// Recommendation is one tracked instrument position candidate.
// At most one ACTIVE row exists per symbol.
type Recommendation struct {
	ID           int64   `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Sector       string  `json:"sector,omitempty"`
	Tier         Tier    `json:"tier"`
	Status       Status  `json:"status"`
	Score        float64 `json:"score"`
	Label        string  `json:"label"`
	Reasons      string  `json:"reasons"`
	EntryPrice   float64 `json:"entry_price"`
	CurrentPrice float64 `json:"current_price"`
	TargetPrice  float64 `json:"target_price"`
	StopLoss     float64 `json:"stop_loss"`

	// Reference close used by the promotion check. Set at creation,
	// refreshed each end-of-week cycle for non-STRONG rows.
	WeeklyRefPrice float64 `json:"weekly_ref_price"`

	RecommendedAt  time.Time  `json:"recommended_at"`
	PromotedAt     *time.Time `json:"promoted_at,omitempty"`
	SoldAt         *time.Time `json:"sold_at,omitempty"`
	SellPrice      float64    `json:"sell_price,omitempty"`
	SellReason     string     `json:"sell_reason,omitempty"`
	RealizedReturn float64    `json:"realized_return,omitempty"`
	LastCheckedAt  time.Time  `json:"last_checked_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Return computes the percent return of price against the entry price
func (r *Recommendation) Return(price float64) float64 {
	if r.EntryPrice == 0 {
		return 0
	}
	return (price - r.EntryPrice) / r.EntryPrice * 100
}

// HoldingDays returns full days elapsed since the recommendation was made
func (r *Recommendation) HoldingDays(now time.Time) int {
	return int(now.Sub(r.RecommendedAt).Hours() / 24)
}

// IsActive reports whether the row is still tracked
func (r *Recommendation) IsActive() bool {
	return r.Status == StatusActive
}

// PerformanceSample is one append-only price observation for an
// active recommendation.
type PerformanceSample struct {
	ID               int64     `json:"id"`
	RecommendationID int64     `json:"recommendation_id"`
	Price            float64   `json:"price"`
	ReturnPct        float64   `json:"return_pct"`
	DaysHeld         int       `json:"days_held"`
	Score            float64   `json:"score,omitempty"`
	Tier             Tier      `json:"tier"`
	SampledAt        time.Time `json:"sampled_at"`
}

// WatchlistEntry tracks a formerly STRONG instrument that was sold,
// kept around for a possible re-entry. One entry per symbol.
type WatchlistEntry struct {
	ID            int64     `json:"id"`
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	EntryPrice    float64   `json:"entry_price"`
	ExitPrice     float64   `json:"exit_price"`
	ExitReason    string    `json:"exit_reason"`
	OriginalScore float64   `json:"original_score"`
	LastScore     float64   `json:"last_score"`
	LastCheckedAt time.Time `json:"last_checked_at"`
	AddedAt       time.Time `json:"added_at"`
}

// ProfitPerShare is the absolute per-share money made on the exit
func (e *WatchlistEntry) ProfitPerShare() float64 {
	return e.ExitPrice - e.EntryPrice
}

// WeeklySummary is the per-cycle aggregate written by the
// end-of-week run.
type WeeklySummary struct {
	ID              int64     `json:"id"`
	AnalysisDate    time.Time `json:"analysis_date"`
	UniverseSize    int       `json:"universe_size"`
	AnalyzedCount   int       `json:"analyzed_count"`
	ActionableCount int       `json:"actionable_count"`
	StrongBuyCount  int       `json:"strong_buy_count"`
	BuyCount        int       `json:"buy_count"`
	WeakBuyCount    int       `json:"weak_buy_count"`
	HoldCount       int       `json:"hold_count"`
	AvgScore        float64   `json:"avg_score"`
	BestSymbol      string    `json:"best_symbol"`
	BestScore       float64   `json:"best_score"`
	Duration        float64   `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}
