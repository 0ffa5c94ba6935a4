// Package tx threads a SQL transaction through context so a service can make
// a record write and its outbox event commit or roll back together.
package tx

import (
	"context"
	"database/sql"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Runner abstracts transaction scoping so services stay storage-agnostic.
// The in-memory stores use NopRunner; postgres wiring uses SQLRunner.
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopRunner executes fn directly. In-memory stores serialize internally.
type NopRunner struct{}

func (NopRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SQLRunner scopes fn to one SQL transaction.
type SQLRunner struct {
	DB *sql.DB
}

func (r SQLRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return RunInTx(ctx, r.DB, fn)
}

// RunInTx executes fn inside a transaction placed in context. Stores that
// check From(ctx) will join it; the whole call commits or rolls back as one.
func RunInTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
