package database

import (
	"context"
	"fmt"

	"github.com/yourusername/keiba-advisor/internal/config"
)

// schema is applied idempotently at startup
var schema = []string{
	`CREATE TABLE IF NOT EXISTS recommendations (
		id          UUID PRIMARY KEY,
		race_id     TEXT NOT NULL,
		race_level  TEXT NOT NULL,
		bet_type    TEXT NOT NULL,
		total_cost  BIGINT NOT NULL,
		payload     JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_recommendations_race_id ON recommendations (race_id)`,
	`CREATE TABLE IF NOT EXISTS purchase_history (
		id               UUID PRIMARY KEY,
		recommendation_id UUID,
		race_id          TEXT NOT NULL,
		purchase_date    DATE NOT NULL,
		season           TEXT NOT NULL,
		venue            TEXT NOT NULL DEFAULT '',
		bet_type         TEXT NOT NULL,
		combinations     TEXT[] NOT NULL,
		strategy_type    TEXT NOT NULL,
		purchase_count   BIGINT NOT NULL,
		unit_price       BIGINT NOT NULL,
		total_cost       BIGINT NOT NULL,
		expected_value   DOUBLE PRECISION NOT NULL DEFAULT 0,
		expected_return  DOUBLE PRECISION NOT NULL DEFAULT 0,
		actual_return    BIGINT NOT NULL DEFAULT 0,
		is_hit           BOOLEAN NOT NULL DEFAULT FALSE,
		recovery_rate    DOUBLE PRECISION NOT NULL DEFAULT 0,
		settled_at       TIMESTAMPTZ,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_history_created_at ON purchase_history (created_at DESC)`,
	`ALTER TABLE purchase_history ADD COLUMN IF NOT EXISTS recommendation_id UUID`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_purchase_history_recommendation_id
		ON purchase_history (recommendation_id) WHERE recommendation_id IS NOT NULL`,
}

// Initialize creates the connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema statements in order
func Migrate(ctx context.Context, db *DB) error {
	return db.WithTransaction(ctx, func(txCtx context.Context) error {
		for i, stmt := range schema {
			if _, err := db.Conn(txCtx).Exec(txCtx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}
