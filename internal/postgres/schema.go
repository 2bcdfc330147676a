package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Catalog tables. unit carries its own CHECK so no write path can oversell.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		price       TEXT NOT NULL DEFAULT '',
		banner      TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		available   BOOLEAN NOT NULL DEFAULT TRUE,
		supplier    TEXT NOT NULL DEFAULT '',
		unit        INTEGER NOT NULL DEFAULT 0 CHECK (unit >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS products_category_idx ON products (category)`,
	`CREATE TABLE IF NOT EXISTS stock_ledger (
		order_id    TEXT NOT NULL,
		product_id  TEXT NOT NULL,
		qty         INTEGER NOT NULL,
		status      TEXT NOT NULL DEFAULT 'applied',
		applied_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (order_id, product_id)
	)`,
}

// EnsureSchema creates the catalog tables when they are missing. It is not a
// migration tool: existing tables are left as they are.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
