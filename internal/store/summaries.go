package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/advaitm/stockpilot/internal/contracts"
)

// SummaryRepo is the PostgreSQL implementation of
// contracts.SummaryRepository.
type SummaryRepo struct {
	pool *pgxpool.Pool
}

// NewSummaryRepo creates a SummaryRepo
func NewSummaryRepo(pool *pgxpool.Pool) *SummaryRepo {
	return &SummaryRepo{pool: pool}
}

// Add inserts one end-of-week summary
func (r *SummaryRepo) Add(ctx context.Context, s *contracts.WeeklySummary) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO screener.weekly_summaries (
			analysis_date, universe_size, analyzed_count, actionable_count,
			strong_buy_count, buy_count, weak_buy_count, hold_count,
			avg_score, best_symbol, best_score, duration_seconds
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		s.AnalysisDate, s.UniverseSize, s.AnalyzedCount, s.ActionableCount,
		s.StrongBuyCount, s.BuyCount, s.WeakBuyCount, s.HoldCount,
		s.AvgScore, s.BestSymbol, s.BestScore, s.Duration)
	if err != nil {
		return fmt.Errorf("failed to add weekly summary: %w", err)
	}
	return nil
}

// GetRecent returns the most recent summaries
func (r *SummaryRepo) GetRecent(ctx context.Context, limit int) ([]*contracts.WeeklySummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, analysis_date, universe_size, analyzed_count, actionable_count,
			strong_buy_count, buy_count, weak_buy_count, hold_count,
			avg_score, best_symbol, best_score, duration_seconds, created_at
		FROM screener.weekly_summaries
		ORDER BY analysis_date DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly summaries: %w", err)
	}
	defer rows.Close()

	var out []*contracts.WeeklySummary
	for rows.Next() {
		var s contracts.WeeklySummary
		if err := rows.Scan(&s.ID, &s.AnalysisDate, &s.UniverseSize, &s.AnalyzedCount,
			&s.ActionableCount, &s.StrongBuyCount, &s.BuyCount, &s.WeakBuyCount,
			&s.HoldCount, &s.AvgScore, &s.BestSymbol, &s.BestScore,
			&s.Duration, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan weekly summary: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
