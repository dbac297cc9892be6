package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTierForScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  Tier
	}{
		{"strong at threshold", 70, TierStrong},
		{"strong above threshold", 72, TierStrong},
		{"weak mid range", 55, TierWeak},
		{"weak at threshold", 50, TierWeak},
		{"hold just below weak", 49.9, TierHold},
		{"hold low", 42, TierHold},
		{"hold at zero", 0, TierHold},
		{"strong at max", 100, TierStrong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierForScore(tt.score))
		})
	}
}

func TestRecommendationReturn(t *testing.T) {
	rec := &Recommendation{EntryPrice: 100}

	assert.InDelta(t, 15.0, rec.Return(115), 1e-9)
	assert.InDelta(t, -7.0, rec.Return(93), 1e-9)
	assert.InDelta(t, 0.0, rec.Return(100), 1e-9)

	// Zero entry price must not divide by zero
	zero := &Recommendation{}
	assert.Equal(t, 0.0, zero.Return(50))
}

func TestRecommendationHoldingDays(t *testing.T) {
	now := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	rec := &Recommendation{RecommendedAt: now.AddDate(0, 0, -14)}

	assert.Equal(t, 14, rec.HoldingDays(now))
}

func TestCadenceValid(t *testing.T) {
	assert.True(t, CadenceIntraWeek.Valid())
	assert.True(t, CadenceEndOfWeek.Valid())
	assert.False(t, Cadence("daily").Valid())
	assert.False(t, Cadence("").Valid())
}

func TestCycleReportDuration(t *testing.T) {
	start := time.Date(2025, 6, 20, 16, 0, 0, 0, time.UTC)
	report := &CycleReport{
		Cadence:    CadenceEndOfWeek,
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Minute),
	}

	assert.Equal(t, 42*time.Minute, report.Duration())
}
