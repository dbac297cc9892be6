package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/advaitm/stockpilot/internal/contracts"
)

// WatchlistRepo is the PostgreSQL implementation of
// contracts.WatchlistRepository.
type WatchlistRepo struct {
	pool *pgxpool.Pool
}

// NewWatchlistRepo creates a WatchlistRepo
func NewWatchlistRepo(pool *pgxpool.Pool) *WatchlistRepo {
	return &WatchlistRepo{pool: pool}
}

// GetAll returns every watchlist entry
func (r *WatchlistRepo) GetAll(ctx context.Context) ([]*contracts.WatchlistEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, symbol, name, entry_price, exit_price, exit_reason,
			original_score, last_score, last_checked_at, added_at
		FROM screener.watchlist_entries
		ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var out []*contracts.WatchlistEntry
	for rows.Next() {
		var e contracts.WatchlistEntry
		if err := rows.Scan(&e.ID, &e.Symbol, &e.Name, &e.EntryPrice, &e.ExitPrice,
			&e.ExitReason, &e.OriginalScore, &e.LastScore, &e.LastCheckedAt,
			&e.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// UpdateCheck records the latest re-entry score for an entry
func (r *WatchlistRepo) UpdateCheck(ctx context.Context, id int64, score float64, checkedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE screener.watchlist_entries
		SET last_score = $2, last_checked_at = $3
		WHERE id = $1`,
		id, score, checkedAt)
	if err != nil {
		return fmt.Errorf("failed to update watchlist entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrNotFound
	}
	return nil
}

// Remove deletes a watchlist entry
func (r *WatchlistRepo) Remove(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM screener.watchlist_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to remove watchlist entry %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrNotFound
	}
	return nil
}

// Reenter creates a fresh ACTIVE recommendation and deletes the
// watchlist entry in one transaction.
func (r *WatchlistRepo) Reenter(ctx context.Context, entryID int64, rec *contracts.Recommendation) (int64, error) {
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

		err = tx.QueryRow(ctx, `
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
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`DELETE FROM screener.watchlist_entries WHERE id = $1`, entryID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return contracts.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}
