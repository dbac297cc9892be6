package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/advaitm/stockpilot/internal/contracts"
)

// PerformanceRepo is the PostgreSQL implementation of
// contracts.PerformanceRepository.
type PerformanceRepo struct {
	pool *pgxpool.Pool
}

// NewPerformanceRepo creates a PerformanceRepo
func NewPerformanceRepo(pool *pgxpool.Pool) *PerformanceRepo {
	return &PerformanceRepo{pool: pool}
}

// Add appends one performance sample
func (r *PerformanceRepo) Add(ctx context.Context, s *contracts.PerformanceSample) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO screener.performance_samples (
			recommendation_id, price, return_pct, days_held, score, tier, sampled_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.RecommendationID, s.Price, s.ReturnPct, s.DaysHeld, s.Score, s.Tier, s.SampledAt)
	if err != nil {
		return fmt.Errorf("failed to add performance sample: %w", err)
	}
	return nil
}

// GetByRecommendation returns the most recent samples for one row
func (r *PerformanceRepo) GetByRecommendation(ctx context.Context, recommendationID int64, limit int) ([]*contracts.PerformanceSample, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, recommendation_id, price, return_pct, days_held, score, tier, sampled_at
		FROM screener.performance_samples
		WHERE recommendation_id = $1
		ORDER BY sampled_at DESC
		LIMIT $2`,
		recommendationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance samples: %w", err)
	}
	defer rows.Close()

	var out []*contracts.PerformanceSample
	for rows.Next() {
		var s contracts.PerformanceSample
		if err := rows.Scan(&s.ID, &s.RecommendationID, &s.Price, &s.ReturnPct,
			&s.DaysHeld, &s.Score, &s.Tier, &s.SampledAt); err != nil {
			return nil, fmt.Errorf("failed to scan performance sample: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
