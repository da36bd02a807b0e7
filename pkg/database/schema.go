package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Execer is implemented by pgxpool.Pool, pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Schema creates the promotions table and its lookup indexes. It is idempotent.
const Schema = `
	CREATE TABLE IF NOT EXISTS promotions (
		promotion_id   BIGSERIAL PRIMARY KEY,
		name           VARCHAR(255) NOT NULL,
		product_id     BIGINT NOT NULL,
		discount_ratio NUMERIC(10, 6) NOT NULL CHECK (discount_ratio > 0 AND discount_ratio <= 1),
		redeemed_count INTEGER NOT NULL DEFAULT 0 CHECK (redeemed_count >= 0),
		created_at     TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_promotions_name ON promotions(name);
	CREATE INDEX IF NOT EXISTS idx_promotions_product_id ON promotions(product_id);
`

// Migrate applies Schema. It runs once at startup, before the server accepts requests.
func Migrate(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Info().Msg("database schema ready")
	return nil
}
