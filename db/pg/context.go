package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type txContextKey struct{}

// WithTx returns a new context carrying the provided transaction. If tx is
// nil, the original context is returned unchanged.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txContextKey{}, tx)
}

// TxFromContext extracts a transaction previously stored with WithTx.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txContextKey{}).(pgx.Tx)
	return tx, ok
}

// Beginner starts transactions. It's implemented by *pgxpool.Pool and
// *pgx.Conn.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InTx runs fn in a transaction started on b. The context passed to fn carries
// the transaction, so the queries of this package run within it. The
// transaction is committed if fn succeeds, and rolled back otherwise.
func InTx(ctx context.Context, b Beginner, fn func(ctx context.Context) error) error {
	//nolint:wrapcheck // Errors of fn are returned as is.
	return pgx.BeginFunc(ctx, b, func(tx pgx.Tx) error {
		return fn(WithTx(ctx, tx))
	})
}
