package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/advaitm/stockpilot/internal/contracts"
	"github.com/advaitm/stockpilot/pkg/logger"
)

// Outcome reports what a lifecycle evaluation did to a row
type Outcome struct {
	Sold     bool
	Promoted bool
	Reason   string
	Score    float64
}

// Manager owns every recommendation state transition. Repositories
// handle transaction mechanics; this type holds the decision rules.
type Manager struct {
	cfg      Config
	recs     contracts.RecommendationRepository
	perf     contracts.PerformanceRepository
	watch    contracts.WatchlistRepository
	analyzer contracts.Analyzer
	logger   *logger.Logger
}

// NewManager wires a Manager
func NewManager(
	cfg Config,
	recs contracts.RecommendationRepository,
	perf contracts.PerformanceRepository,
	watch contracts.WatchlistRepository,
	analyzer contracts.Analyzer,
	log *logger.Logger,
) *Manager {
	return &Manager{
		cfg:      cfg,
		recs:     recs,
		perf:     perf,
		watch:    watch,
		analyzer: analyzer,
		logger:   log,
	}
}

// RecordNew persists a fresh analysis as a new ACTIVE recommendation.
// Scores below minScore are skipped; callers pass the effective
// minimum so a per-run override applies here too. When an ACTIVE row
// already exists for the symbol the row is refreshed instead of
// duplicated; a weaker re-score keeps the stored score and label and
// only stamps the price and check time.
func (m *Manager) RecordNew(ctx context.Context, inst contracts.Instrument, a *contracts.Analysis, minScore float64, now time.Time) (bool, error) {
	if a.Score < minScore {
		return false, nil
	}

	existing, err := m.recs.GetActiveBySymbol(ctx, inst.Symbol)
	if err != nil && !errors.Is(err, contracts.ErrNotFound) {
		return false, fmt.Errorf("lookup %s: %w", inst.Symbol, err)
	}
	if existing != nil {
		score, label := existing.Score, existing.Label
		if a.Score > existing.Score {
			score, label = a.Score, a.Label
		}
		if err := m.recs.UpdateCheck(ctx, existing.ID, a.Price, score, label, now); err != nil {
			return false, fmt.Errorf("refresh %s: %w", inst.Symbol, err)
		}
		return false, nil
	}

	levels := ComputeLevels(a.Price, a.Score, a.Label)
	rec := &contracts.Recommendation{
		Symbol:         inst.Symbol,
		Name:           inst.Name,
		Sector:         inst.Sector,
		Tier:           contracts.TierForScore(a.Score),
		Status:         contracts.StatusActive,
		Score:          a.Score,
		Label:          a.Label,
		Reasons:        a.Reasons,
		EntryPrice:     a.Price,
		CurrentPrice:   a.Price,
		TargetPrice:    levels.Target,
		StopLoss:       levels.Stop,
		WeeklyRefPrice: a.Price,
		RecommendedAt:  now,
		LastCheckedAt:  now,
	}

	if _, err := m.recs.Create(ctx, rec); err != nil {
		return false, fmt.Errorf("create %s: %w", inst.Symbol, err)
	}

	m.logger.WithFields(map[string]interface{}{
		"symbol": inst.Symbol,
		"score":  a.Score,
		"tier":   rec.Tier,
	}).Info("New recommendation")

	return true, nil
}

// MonitorStrong runs the sell chain for one STRONG holding. Rules
// apply in strict priority order: score deterioration beats stop
// loss, stop loss beats weakness. A sold STRONG row always lands on
// the watchlist in the same transaction.
func (m *Manager) MonitorStrong(ctx context.Context, rec *contracts.Recommendation, price float64, now time.Time) (*Outcome, error) {
	fresh, err := m.analyzer.Analyze(ctx, contracts.Instrument{Symbol: rec.Symbol, Name: rec.Name})
	if err != nil {
		return nil, fmt.Errorf("re-score %s: %w", rec.Symbol, err)
	}

	ret := rec.Return(price)
	reason := ""
	switch {
	case fresh.Score < m.cfg.HardSellScore:
		reason = contracts.SellScoreDeterioration
	case ret <= m.cfg.StopLossPct:
		reason = contracts.SellStopLoss
	case ret <= m.cfg.WeakSellPct && fresh.Score < m.cfg.WeakSellScore:
		reason = contracts.SellWeakWithLoss
	}

	if reason == "" {
		if err := m.recs.UpdateCheck(ctx, rec.ID, price, fresh.Score, fresh.Label, now); err != nil {
			return nil, fmt.Errorf("update %s: %w", rec.Symbol, err)
		}
		return &Outcome{Score: fresh.Score}, nil
	}

	sale := m.strongSale(rec, price, reason, fresh.Score, now)
	if err := m.recs.Sell(ctx, rec.ID, sale); err != nil {
		return nil, fmt.Errorf("sell %s: %w", rec.Symbol, err)
	}

	m.logger.WithFields(map[string]interface{}{
		"symbol": rec.Symbol,
		"reason": reason,
		"return": ret,
		"score":  fresh.Score,
	}).Warn("STRONG holding sold")

	return &Outcome{Sold: true, Reason: reason, Score: fresh.Score}, nil
}

// strongSale builds the Sale for a STRONG row, including the
// watchlist entry written in the same transaction.
func (m *Manager) strongSale(rec *contracts.Recommendation, price float64, reason string, freshScore float64, now time.Time) contracts.Sale {
	return contracts.Sale{
		Price:     price,
		ReturnPct: rec.Return(price),
		Reason:    reason,
		SoldAt:    now,
		Watch: &contracts.WatchlistEntry{
			Symbol:        rec.Symbol,
			Name:          rec.Name,
			EntryPrice:    rec.EntryPrice,
			ExitPrice:     price,
			ExitReason:    reason,
			OriginalScore: rec.Score,
			LastScore:     freshScore,
			LastCheckedAt: now,
			AddedAt:       now,
		},
	}
}

// CheckPromotion promotes a WEAK row when the price has gained
// enough against the weekly reference AND a fresh analysis confirms
// a STRONG score. Both conditions are required; a big price move
// with a mediocre re-score does nothing. Promotion resets the entry
// to the current price and recomputes levels.
func (m *Manager) CheckPromotion(ctx context.Context, rec *contracts.Recommendation, price float64, now time.Time) (*Outcome, error) {
	if rec.Tier != contracts.TierWeak || rec.WeeklyRefPrice <= 0 {
		return &Outcome{}, nil
	}

	gain := (price - rec.WeeklyRefPrice) / rec.WeeklyRefPrice * 100
	if gain < m.cfg.PromotionGainPct {
		return &Outcome{}, nil
	}

	fresh, err := m.analyzer.Analyze(ctx, contracts.Instrument{Symbol: rec.Symbol, Name: rec.Name})
	if err != nil {
		return nil, fmt.Errorf("re-score %s: %w", rec.Symbol, err)
	}
	if fresh.Score < m.cfg.PromotionMinScore {
		// Price moved but conviction is missing; record the check only
		if err := m.recs.UpdateCheck(ctx, rec.ID, price, fresh.Score, fresh.Label, now); err != nil {
			return nil, fmt.Errorf("update %s: %w", rec.Symbol, err)
		}
		return &Outcome{Score: fresh.Score}, nil
	}

	levels := ComputeLevels(price, fresh.Score, fresh.Label)
	p := contracts.Promotion{
		Price:       price,
		Score:       fresh.Score,
		Label:       fresh.Label,
		TargetPrice: levels.Target,
		StopLoss:    levels.Stop,
		PromotedAt:  now,
	}
	if err := m.recs.Promote(ctx, rec.ID, p); err != nil {
		return nil, fmt.Errorf("promote %s: %w", rec.Symbol, err)
	}

	m.logger.WithFields(map[string]interface{}{
		"symbol": rec.Symbol,
		"gain":   gain,
		"score":  fresh.Score,
	}).Info("Promoted to STRONG")

	return &Outcome{Promoted: true, Score: fresh.Score}, nil
}

// WeeklyCleanup closes under-performing STRONG rows on the weekly
// cycle, ahead of the daily sell chain. First matching rule fires.
// Like any STRONG sell, the instrument lands on the watchlist.
// Returns the reason, or empty when kept.
func (m *Manager) WeeklyCleanup(ctx context.Context, rec *contracts.Recommendation, price float64, now time.Time) (string, error) {
	if rec.Tier != contracts.TierStrong {
		return "", nil
	}

	ret := rec.Return(price)
	days := rec.HoldingDays(now)

	reason := ""
	switch {
	case ret <= m.cfg.CleanupFastPct && days >= m.cfg.CleanupFastDays:
		reason = contracts.SellFastDecline
	case ret <= m.cfg.CleanupSlowPct && days >= m.cfg.CleanupSlowDays:
		reason = contracts.SellSlowDecline
	case ret < m.cfg.CleanupStagnantPct && days >= m.cfg.CleanupStagnantDays:
		reason = contracts.SellStagnant
	}
	if reason == "" {
		return "", nil
	}

	sale := m.strongSale(rec, price, reason, rec.Score, now)
	if err := m.recs.Sell(ctx, rec.ID, sale); err != nil {
		return "", fmt.Errorf("cleanup sell %s: %w", rec.Symbol, err)
	}

	m.logger.WithFields(map[string]interface{}{
		"symbol": rec.Symbol,
		"reason": reason,
		"return": ret,
		"days":   days,
	}).Info("Cleanup sell")

	return reason, nil
}

// CheckReentry re-analyzes one watchlist entry. A score at or above
// the re-entry threshold creates a brand-new STRONG recommendation
// and removes the entry in one transaction; otherwise the entry's
// check fields are refreshed.
func (m *Manager) CheckReentry(ctx context.Context, entry *contracts.WatchlistEntry, now time.Time) (bool, error) {
	fresh, err := m.analyzer.Analyze(ctx, contracts.Instrument{Symbol: entry.Symbol, Name: entry.Name})
	if err != nil {
		return false, fmt.Errorf("re-score %s: %w", entry.Symbol, err)
	}

	if fresh.Score < m.cfg.ReentryMinScore {
		if err := m.watch.UpdateCheck(ctx, entry.ID, fresh.Score, now); err != nil {
			return false, fmt.Errorf("update watchlist %s: %w", entry.Symbol, err)
		}
		return false, nil
	}

	levels := ComputeLevels(fresh.Price, fresh.Score, fresh.Label)
	rec := &contracts.Recommendation{
		Symbol:         entry.Symbol,
		Name:           entry.Name,
		Tier:           contracts.TierStrong,
		Status:         contracts.StatusActive,
		Score:          fresh.Score,
		Label:          fresh.Label,
		Reasons:        fresh.Reasons,
		EntryPrice:     fresh.Price,
		CurrentPrice:   fresh.Price,
		TargetPrice:    levels.Target,
		StopLoss:       levels.Stop,
		WeeklyRefPrice: fresh.Price,
		RecommendedAt:  now,
		LastCheckedAt:  now,
	}
	if _, err := m.watch.Reenter(ctx, entry.ID, rec); err != nil {
		return false, fmt.Errorf("re-enter %s: %w", entry.Symbol, err)
	}

	m.logger.WithFields(map[string]interface{}{
		"symbol": entry.Symbol,
		"score":  fresh.Score,
	}).Info("Watchlist re-entry")

	return true, nil
}

// RefreshReference updates the promotion reference close for one
// non-STRONG ACTIVE row. Run at end of week after cleanup.
func (m *Manager) RefreshReference(ctx context.Context, rec *contracts.Recommendation, price float64, now time.Time) error {
	if rec.Tier == contracts.TierStrong {
		return nil
	}
	if err := m.recs.UpdateWeeklyReference(ctx, rec.ID, price, now); err != nil {
		return fmt.Errorf("refresh reference %s: %w", rec.Symbol, err)
	}
	return nil
}

// RecordSample appends one performance observation for an active row
func (m *Manager) RecordSample(ctx context.Context, rec *contracts.Recommendation, price float64, now time.Time) error {
	sample := &contracts.PerformanceSample{
		RecommendationID: rec.ID,
		Price:            price,
		ReturnPct:        rec.Return(price),
		DaysHeld:         rec.HoldingDays(now),
		Score:            rec.Score,
		Tier:             rec.Tier,
		SampledAt:        now,
	}
	if err := m.perf.Add(ctx, sample); err != nil {
		return fmt.Errorf("sample %s: %w", rec.Symbol, err)
	}
	return nil
}
