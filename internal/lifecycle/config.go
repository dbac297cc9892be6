package lifecycle

// Config holds the lifecycle thresholds. All percentages are in
// percent units, negative for declines.
type Config struct {
	// Promotion: a non-STRONG row gains PromotionGainPct against its
	// weekly reference and re-scores at or above PromotionMinScore.
	PromotionGainPct  float64
	PromotionMinScore float64

	// STRONG sell chain, in priority order
	HardSellScore float64 // fresh re-score below this sells outright
	StopLossPct   float64 // decline from entry that always sells
	WeakSellPct   float64 // decline that sells when paired with a weak score
	WeakSellScore float64

	// Watchlist re-entry
	ReentryMinScore float64

	// End-of-week cleanup for STRONG rows, ahead of the daily chain
	CleanupFastPct      float64
	CleanupFastDays     int
	CleanupSlowPct      float64
	CleanupSlowDays     int
	CleanupStagnantPct  float64
	CleanupStagnantDays int
}

// DefaultConfig returns the production lifecycle thresholds
func DefaultConfig() Config {
	return Config{
		PromotionGainPct:  2,
		PromotionMinScore: 70,

		HardSellScore: 50,
		StopLossPct:   -7,
		WeakSellPct:   -5,
		WeakSellScore: 35,

		ReentryMinScore: 60,

		CleanupFastPct:      -5,
		CleanupFastDays:     7,
		CleanupSlowPct:      -3,
		CleanupSlowDays:     14,
		CleanupStagnantPct:  2,
		CleanupStagnantDays: 30,
	}
}
