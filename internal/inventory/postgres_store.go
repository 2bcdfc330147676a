package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps stock in products.unit and applied order lines in
// stock_ledger. See postgres.EnsureSchema for the tables.
type PostgresStore struct{ DB *pgxpool.Pool }

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore { return &PostgresStore{DB: db} }

const adjustSQL = `
	UPDATE products SET unit = unit + $2
	WHERE id = $1 AND unit + $2 >= 0
	RETURNING unit`

func (s *PostgresStore) Adjust(ctx context.Context, productID string, delta int) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, adjustSQL, productID, delta).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, s.classify(ctx, s.DB, productID)
	}
	if err != nil {
		return 0, fmt.Errorf("adjust stock %s: %w", productID, err)
	}
	return n, nil
}

// Ledger statuses. A line keeps the status of its first attempt.
const (
	lineApplied      = "applied"
	lineInsufficient = "insufficient_stock"
	lineNoProduct    = "product_not_found"
)

// ApplyOrderLine records the line in the ledger and decrements stock in one
// transaction. A ledger conflict means a re-delivery: nothing is changed and
// the recorded outcome is returned. A rejected line is committed with its
// rejection status rather than rolled back.
func (s *PostgresStore) ApplyOrderLine(ctx context.Context, orderID, productID string, qty int) (int, bool, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `
		INSERT INTO stock_ledger(order_id, product_id, qty, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (order_id, product_id) DO NOTHING`, orderID, productID, qty, lineApplied)
	if err != nil {
		return 0, false, fmt.Errorf("ledger %s/%s: %w", orderID, productID, err)
	}
	if ct.RowsAffected() == 0 {
		return s.recorded(ctx, tx, orderID, productID)
	}

	var n int
	err = tx.QueryRow(ctx, adjustSQL, productID, -qty).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		rejected := s.classify(ctx, tx, productID)
		status, ok := statusOf(rejected)
		if !ok {
			return 0, false, rejected
		}
		if _, err := tx.Exec(ctx, `
			UPDATE stock_ledger SET status = $3
			WHERE order_id = $1 AND product_id = $2`, orderID, productID, status); err != nil {
			return 0, false, fmt.Errorf("ledger %s/%s: %w", orderID, productID, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return 0, false, err
		}
		return 0, false, rejected
	}
	if err != nil {
		return 0, false, fmt.Errorf("decrement stock %s: %w", productID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// recorded answers a re-delivered line from the ledger.
func (s *PostgresStore) recorded(ctx context.Context, q querier, orderID, productID string) (int, bool, error) {
	var status string
	err := q.QueryRow(ctx, `
		SELECT status FROM stock_ledger
		WHERE order_id = $1 AND product_id = $2`, orderID, productID).Scan(&status)
	if err != nil {
		return 0, false, fmt.Errorf("ledger %s/%s: %w", orderID, productID, err)
	}
	switch status {
	case lineInsufficient:
		return 0, false, ErrInsufficientStock
	case lineNoProduct:
		return 0, false, ErrProductNotFound
	}
	n, err := stockOf(ctx, q, productID)
	return n, false, err
}

func statusOf(rejected error) (string, bool) {
	switch {
	case errors.Is(rejected, ErrInsufficientStock):
		return lineInsufficient, true
	case errors.Is(rejected, ErrProductNotFound):
		return lineNoProduct, true
	}
	return "", false
}

func (s *PostgresStore) Stock(ctx context.Context, productID string) (int, error) {
	return stockOf(ctx, s.DB, productID)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func stockOf(ctx context.Context, q querier, productID string) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT unit FROM products WHERE id = $1`, productID).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrProductNotFound
	}
	return n, err
}

// classify explains why the conditional update touched no row.
func (s *PostgresStore) classify(ctx context.Context, q querier, productID string) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
		return fmt.Errorf("lookup product %s: %w", productID, err)
	}
	if !exists {
		return ErrProductNotFound
	}
	return ErrInsufficientStock
}
