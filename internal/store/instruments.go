package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/advaitm/stockpilot/internal/contracts"
)

// InstrumentRepo caches the last good instrument universe
type InstrumentRepo struct {
	pool *pgxpool.Pool
}

// NewInstrumentRepo creates an InstrumentRepo
func NewInstrumentRepo(pool *pgxpool.Pool) *InstrumentRepo {
	return &InstrumentRepo{pool: pool}
}

// ReplaceAll swaps the cached universe atomically. An empty input is
// rejected so a failed fetch can never wipe the cache.
func (r *InstrumentRepo) ReplaceAll(ctx context.Context, instruments []contracts.Instrument) error {
	if len(instruments) == 0 {
		return fmt.Errorf("%w: refusing to cache an empty universe", contracts.ErrValidation)
	}

	return inTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM screener.instruments`); err != nil {
			return fmt.Errorf("clear instrument cache: %w", err)
		}

		rows := make([][]interface{}, 0, len(instruments))
		for _, inst := range instruments {
			rows = append(rows, []interface{}{
				inst.Symbol, inst.Name, inst.Series, inst.ISIN, inst.Sector,
			})
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"screener", "instruments"},
			[]string{"symbol", "name", "series", "isin", "sector"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy instruments: %w", err)
		}
		return nil
	})
}

// GetAll returns the cached universe in symbol order
func (r *InstrumentRepo) GetAll(ctx context.Context) ([]contracts.Instrument, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT symbol, name, series, isin, sector
		FROM screener.instruments
		ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query instrument cache: %w", err)
	}
	defer rows.Close()

	var instruments []contracts.Instrument
	for rows.Next() {
		var inst contracts.Instrument
		if err := rows.Scan(&inst.Symbol, &inst.Name, &inst.Series, &inst.ISIN, &inst.Sector); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		instruments = append(instruments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read instrument cache: %w", err)
	}
	if len(instruments) == 0 {
		return nil, fmt.Errorf("%w: instrument cache is empty", contracts.ErrNotFound)
	}
	return instruments, nil
}
