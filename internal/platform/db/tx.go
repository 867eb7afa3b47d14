package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the query surface shared by pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type querierKey struct{}

// QuerierFrom returns the transaction carried by ctx, falling back to the
// pool. Repositories route every statement through this, so the same method
// works inside and outside a Runner callback.
func QuerierFrom(ctx context.Context, pool *pgxpool.Pool) Querier {
	if q, ok := ctx.Value(querierKey{}).(Querier); ok {
		return q
	}
	return pool
}

// Runner executes callbacks inside a transaction, handing the transaction to
// any repository call made through the callback's context.
type Runner struct {
	pool *pgxpool.Pool
}

// NewRunner builds a Runner over the pool.
func NewRunner(pool *pgxpool.Pool) *Runner {
	return &Runner{pool: pool}
}

// Serializable runs fn inside a serializable transaction.
func (r *Runner) Serializable(ctx context.Context, fn func(context.Context) error) error {
	return WithSerializableTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, querierKey{}, Querier(tx)))
	})
}

// RepeatableRead runs fn inside a repeatable-read transaction.
func (r *Runner) RepeatableRead(ctx context.Context, fn func(context.Context) error) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, querierKey{}, Querier(tx)))
	})
}

// WithTx executes fn inside a repeatable-read transaction.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	return withTx(ctx, pool, pgx.RepeatableRead, fn)
}

// WithSerializableTx executes fn inside a serializable transaction. Booking
// mutations go through this level; the store has no row versioning, so the
// isolation level is the only cross-process guard against lost updates.
func WithSerializableTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	return withTx(ctx, pool, pgx.Serializable, fn)
}

func withTx(ctx context.Context, pool *pgxpool.Pool, level pgx.TxIsoLevel, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: level})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}
	return nil
}
