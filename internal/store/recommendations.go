package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/advaitm/stockpilot/internal/contracts"
)

// RecommendationRepo is the PostgreSQL implementation of
// contracts.RecommendationRepository.
type RecommendationRepo struct {
	pool *pgxpool.Pool
}

// NewRecommendationRepo creates a RecommendationRepo
func NewRecommendationRepo(pool *pgxpool.Pool) *RecommendationRepo {
	return &RecommendationRepo{pool: pool}
}

const recColumns = `
	id, symbol, name, sector, tier, status, score, label, reasons,
	entry_price, current_price, target_price, stop_loss, weekly_ref_price,
	recommended_at, promoted_at, sold_at, sell_price, sell_reason,
	realized_return, last_checked_at, created_at, updated_at`

func scanRec(row pgx.Row) (*contracts.Recommendation, error) {
	var r contracts.Recommendation
	err := row.Scan(
		&r.ID, &r.Symbol, &r.Name, &r.Sector, &r.Tier, &r.Status,
		&r.Score, &r.Label, &r.Reasons,
		&r.EntryPrice, &r.CurrentPrice, &r.TargetPrice, &r.StopLoss,
		&r.WeeklyRefPrice,
		&r.RecommendedAt, &r.PromotedAt, &r.SoldAt, &r.SellPrice,
		&r.SellReason, &r.RealizedReturn, &r.LastCheckedAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts a new ACTIVE recommendation. The precondition (no
// existing ACTIVE row for the symbol) is checked explicitly inside
// the transaction rather than inferred from a constraint violation.
func (r *RecommendationRepo) Create(ctx context.Context, rec *contracts.Recommendation) (int64, error) {
	var id int64
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM screener.recommendations
				WHERE symbol = $1 AND status = 'ACTIVE')`,
			rec.Symbol).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("active recommendation exists for %s: %w",
				rec.Symbol, contracts.ErrValidation)
		}

		return tx.QueryRow(ctx, `
			INSERT INTO screener.recommendations (
				symbol, name, sector, tier, status, score, label, reasons,
				entry_price, current_price, target_price, stop_loss,
				weekly_ref_price, recommended_at, last_checked_at
			) VALUES ($1,$2,$3,$4,'ACTIVE',$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			RETURNING id`,
			rec.Symbol, rec.Name, rec.Sector, rec.Tier, rec.Score,
			rec.Label, rec.Reasons, rec.EntryPrice, rec.CurrentPrice,
			rec.TargetPrice, rec.StopLoss, rec.WeeklyRefPrice,
			rec.RecommendedAt, rec.LastCheckedAt,
		).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetActive returns all ACTIVE recommendations
func (r *RecommendationRepo) GetActive(ctx context.Context) ([]*contracts.Recommendation, error) {
	query := `SELECT ` + recColumns + `
		FROM screener.recommendations
		WHERE status = 'ACTIVE'
		ORDER BY score DESC`

	return r.queryRecs(ctx, query)
}

// GetActiveByTier returns ACTIVE recommendations in one tier
func (r *RecommendationRepo) GetActiveByTier(ctx context.Context, tier contracts.Tier) ([]*contracts.Recommendation, error) {
	query := `SELECT ` + recColumns + `
		FROM screener.recommendations
		WHERE status = 'ACTIVE' AND tier = $1
		ORDER BY score DESC`

	return r.queryRecs(ctx, query, tier)
}

// GetActiveBySymbol returns the single ACTIVE row for a symbol
func (r *RecommendationRepo) GetActiveBySymbol(ctx context.Context, symbol string) (*contracts.Recommendation, error) {
	query := `SELECT ` + recColumns + `
		FROM screener.recommendations
		WHERE symbol = $1 AND status = 'ACTIVE'`

	rec, err := scanRec(r.pool.QueryRow(ctx, query, symbol))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation for %s: %w", symbol, err)
	}
	return rec, nil
}

// GetRecentlySold returns rows sold at or after since
func (r *RecommendationRepo) GetRecentlySold(ctx context.Context, since time.Time) ([]*contracts.Recommendation, error) {
	query := `SELECT ` + recColumns + `
		FROM screener.recommendations
		WHERE status = 'SOLD' AND sold_at >= $1
		ORDER BY sold_at DESC`

	return r.queryRecs(ctx, query, since)
}

// UpdateCheck records the latest observed price and score
func (r *RecommendationRepo) UpdateCheck(ctx context.Context, id int64, price, score float64, label string, checkedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE screener.recommendations
		SET current_price = $2, score = $3, label = $4,
			last_checked_at = $5, updated_at = now()
		WHERE id = $1 AND status = 'ACTIVE'`,
		id, price, score, label, checkedAt)
	if err != nil {
		return fmt.Errorf("failed to update check for %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrNotFound
	}
	return nil
}

// Promote moves a row to STRONG, resetting entry and levels
func (r *RecommendationRepo) Promote(ctx context.Context, id int64, p contracts.Promotion) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE screener.recommendations
			SET tier = 'STRONG',
				entry_price = $2, current_price = $2, weekly_ref_price = $2,
				score = $3, label = $4, target_price = $5, stop_loss = $6,
				promoted_at = $7, last_checked_at = $7, updated_at = now()
			WHERE id = $1 AND status = 'ACTIVE'`,
			id, p.Price, p.Score, p.Label, p.TargetPrice, p.StopLoss, p.PromotedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return contracts.ErrNotFound
		}
		return nil
	})
}

// Sell marks a row SOLD. When the sale carries a watchlist entry it
// is upserted in the same transaction.
func (r *RecommendationRepo) Sell(ctx context.Context, id int64, s contracts.Sale) error {
	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE screener.recommendations
			SET status = 'SOLD', sold_at = $2, sell_price = $3,
				sell_reason = $4, realized_return = $5,
				current_price = $3, updated_at = now()
			WHERE id = $1 AND status = 'ACTIVE'`,
			id, s.SoldAt, s.Price, s.Reason, s.ReturnPct)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return contracts.ErrNotFound
		}

		if s.Watch == nil {
			return nil
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO screener.watchlist_entries (
				symbol, name, entry_price, exit_price, exit_reason,
				original_score, last_score, last_checked_at, added_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (symbol) DO UPDATE SET
				entry_price = EXCLUDED.entry_price,
				exit_price = EXCLUDED.exit_price,
				exit_reason = EXCLUDED.exit_reason,
				original_score = EXCLUDED.original_score,
				last_score = EXCLUDED.last_score,
				last_checked_at = EXCLUDED.last_checked_at,
				added_at = EXCLUDED.added_at`,
			s.Watch.Symbol, s.Watch.Name, s.Watch.EntryPrice,
			s.Watch.ExitPrice, s.Watch.ExitReason, s.Watch.OriginalScore,
			s.Watch.LastScore, s.Watch.LastCheckedAt, s.Watch.AddedAt)
		return err
	})
}

// UpdateWeeklyReference refreshes the promotion reference close
func (r *RecommendationRepo) UpdateWeeklyReference(ctx context.Context, id int64, price float64, asOf time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE screener.recommendations
		SET weekly_ref_price = $2, last_checked_at = $3, updated_at = now()
		WHERE id = $1 AND status = 'ACTIVE'`,
		id, price, asOf)
	if err != nil {
		return fmt.Errorf("failed to update weekly reference for %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrNotFound
	}
	return nil
}

func (r *RecommendationRepo) queryRecs(ctx context.Context, query string, args ...interface{}) ([]*contracts.Recommendation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	var out []*contracts.Recommendation
	for rows.Next() {
		rec, err := scanRec(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
