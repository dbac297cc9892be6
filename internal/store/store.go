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

// txAttempts bounds per-transaction retries. A transaction that
// keeps failing aborts only that instrument's update, never the
// whole cycle.
const txAttempts = 3

// inTx runs fn inside a transaction, retrying the whole transaction
// on failure with a short linear backoff.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		if err := runTx(ctx, pool, fn); err != nil {
			lastErr = err
			// Precondition and not-found failures are final
			if isFinal(err) {
				return err
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %v", contracts.ErrPersistence, lastErr)
}

func runTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// isFinal reports whether the error is a precondition failure that
// retrying cannot fix.
func isFinal(err error) bool {
	return errors.Is(err, contracts.ErrNotFound) || errors.Is(err, contracts.ErrValidation)
}
