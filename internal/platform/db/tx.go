package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

// DBTxKey carries an open transaction through a request context so that
// repositories participating in the same unit of work share it.
const DBTxKey contextKey = "db_tx"

// TxFromContext retrieves the transaction from context, or nil when the
// caller is not running inside one.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(DBTxKey).(pgx.Tx)
	return tx
}

// TxRunner executes a function inside a single atomic unit of work. The
// function receives a context that repositories recognize; if it returns an
// error every write made through that context is rolled back.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PoolTxRunner runs units of work as PostgreSQL transactions on a pgx pool.
type PoolTxRunner struct {
	pool *pgxpool.Pool
}

func NewPoolTxRunner(pool *pgxpool.Pool) *PoolTxRunner {
	return &PoolTxRunner{pool: pool}
}

func (r *PoolTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, DBTxKey, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
