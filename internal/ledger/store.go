// Package ledger journals filled transactions to Postgres.
package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/zappabad/papertrade/internal/account"
)

// Store persists transactions.
type Store interface {
	Append(ctx context.Context, tx account.Transaction) error
	Truncate(ctx context.Context) error
	Recent(ctx context.Context, limit int) ([]account.Transaction, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	seq         BIGSERIAL PRIMARY KEY,
	id          TEXT NOT NULL UNIQUE,
	symbol      TEXT NOT NULL,
	side        TEXT NOT NULL,
	shares      BIGINT NOT NULL CHECK (shares > 0),
	price       NUMERIC NOT NULL,
	executed_at TIMESTAMPTZ NOT NULL,
	stop_loss   DOUBLE PRECISION,
	take_profit DOUBLE PRECISION
)`

// PGStore is a Store backed by a PostgreSQL connection pool.
type PGStore struct {
	Pool *pgxpool.Pool
}

// NewPGStore connects to dsn.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return &PGStore{Pool: pool}, nil
}

// Migrate creates the transactions table if it does not exist.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Append inserts tx. Re-appending the same ID is a no-op.
func (s *PGStore) Append(ctx context.Context, tx account.Transaction) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO transactions (id, symbol, side, shares, price, executed_at, stop_loss, take_profit)
		 VALUES (@id, @symbol, @side, @shares, @price, @executed_at, @stop_loss, @take_profit)
		 ON CONFLICT (id) DO NOTHING`,
		pgx.NamedArgs{
			"id":          tx.ID,
			"symbol":      tx.Symbol,
			"side":        string(tx.Side),
			"shares":      tx.Shares,
			"price":       tx.Price.String(),
			"executed_at": tx.Timestamp,
			"stop_loss":   tx.StopLoss,
			"take_profit": tx.TakeProfit,
		})
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// Truncate removes every journaled transaction.
func (s *PGStore) Truncate(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, "TRUNCATE TABLE transactions RESTART IDENTITY"); err != nil {
		return fmt.Errorf("failed to truncate transactions: %w", err)
	}
	return nil
}

// Recent returns up to limit transactions, newest first.
func (s *PGStore) Recent(ctx context.Context, limit int) ([]account.Transaction, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, symbol, side, shares, price::text, executed_at, stop_loss, take_profit
		 FROM transactions ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var out []account.Transaction
	for rows.Next() {
		var (
			tx    account.Transaction
			side  string
			price string
		)
		if err := rows.Scan(&tx.ID, &tx.Symbol, &side, &tx.Shares, &price, &tx.Timestamp, &tx.StopLoss, &tx.TakeProfit); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Side = account.Side(side)
		if tx.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("failed to parse price %q: %w", price, err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return out, nil
}

// Close closes the pool.
func (s *PGStore) Close() {
	s.Pool.Close()
}
