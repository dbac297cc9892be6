package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL creates the screener schema. Idempotent; run at startup.
const schemaDDL = `
CREATE SCHEMA IF NOT EXISTS screener;

CREATE TABLE IF NOT EXISTS screener.recommendations (
	id                BIGSERIAL PRIMARY KEY,
	symbol            TEXT NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	sector            TEXT NOT NULL DEFAULT '',
	tier              TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'ACTIVE',
	score             DOUBLE PRECISION NOT NULL,
	label             TEXT NOT NULL DEFAULT '',
	reasons           TEXT NOT NULL DEFAULT '',
	entry_price       DOUBLE PRECISION NOT NULL,
	current_price     DOUBLE PRECISION NOT NULL,
	target_price      DOUBLE PRECISION NOT NULL,
	stop_loss         DOUBLE PRECISION NOT NULL,
	weekly_ref_price  DOUBLE PRECISION NOT NULL,
	recommended_at    TIMESTAMPTZ NOT NULL,
	promoted_at       TIMESTAMPTZ,
	sold_at           TIMESTAMPTZ,
	sell_price        DOUBLE PRECISION NOT NULL DEFAULT 0,
	sell_reason       TEXT NOT NULL DEFAULT '',
	realized_return   DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_checked_at   TIMESTAMPTZ NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS recommendations_active_symbol_uq
	ON screener.recommendations (symbol) WHERE status = 'ACTIVE';

CREATE INDEX IF NOT EXISTS recommendations_status_tier_idx
	ON screener.recommendations (status, tier);

CREATE TABLE IF NOT EXISTS screener.performance_samples (
	id                 BIGSERIAL PRIMARY KEY,
	recommendation_id  BIGINT NOT NULL
		REFERENCES screener.recommendations(id) ON DELETE CASCADE,
	price              DOUBLE PRECISION NOT NULL,
	return_pct         DOUBLE PRECISION NOT NULL,
	days_held          INTEGER NOT NULL DEFAULT 0,
	score              DOUBLE PRECISION NOT NULL DEFAULT 0,
	tier               TEXT NOT NULL,
	sampled_at         TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS performance_samples_rec_idx
	ON screener.performance_samples (recommendation_id, sampled_at DESC);

CREATE TABLE IF NOT EXISTS screener.watchlist_entries (
	id               BIGSERIAL PRIMARY KEY,
	symbol           TEXT NOT NULL UNIQUE,
	name             TEXT NOT NULL DEFAULT '',
	entry_price      DOUBLE PRECISION NOT NULL DEFAULT 0,
	exit_price       DOUBLE PRECISION NOT NULL DEFAULT 0,
	exit_reason      TEXT NOT NULL DEFAULT '',
	original_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_score       DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_checked_at  TIMESTAMPTZ NOT NULL,
	added_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS screener.instruments (
	symbol      TEXT PRIMARY KEY,
	name        TEXT NOT NULL DEFAULT '',
	series      TEXT NOT NULL DEFAULT '',
	isin        TEXT NOT NULL DEFAULT '',
	sector      TEXT NOT NULL DEFAULT '',
	cached_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS screener.weekly_summaries (
	id                BIGSERIAL PRIMARY KEY,
	analysis_date     DATE NOT NULL,
	universe_size     INTEGER NOT NULL DEFAULT 0,
	analyzed_count    INTEGER NOT NULL DEFAULT 0,
	actionable_count  INTEGER NOT NULL DEFAULT 0,
	strong_buy_count  INTEGER NOT NULL DEFAULT 0,
	buy_count         INTEGER NOT NULL DEFAULT 0,
	weak_buy_count    INTEGER NOT NULL DEFAULT 0,
	hold_count        INTEGER NOT NULL DEFAULT 0,
	avg_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
	best_symbol       TEXT NOT NULL DEFAULT '',
	best_score        DOUBLE PRECISION NOT NULL DEFAULT 0,
	duration_seconds  DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates all screener tables and indexes
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create screener schema: %w", err)
	}
	return nil
}
