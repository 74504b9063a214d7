// Package dbx provides the small DB plumbing shared by repositories: a
// minimal executor interface satisfied by both *sql.DB and *sql.Tx, and a
// runner that threads a transaction through context so one lifecycle
// transition can span several repositories atomically.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql the repositories use.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// FromContext returns the transaction carried by ctx, or the fallback DB.
func FromContext(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// Runner runs a function inside a single transaction. Services depend on
// this interface so tests can substitute a pass-through.
type Runner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type sqlRunner struct {
	db *sql.DB
}

func NewRunner(db *sql.DB) Runner {
	return &sqlRunner{db: db}
}

// WithinTx begins a transaction, stores it in the context handed to fn, and
// commits on success or rolls back on error/panic. Panics are rethrown.
func (r *sqlRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx))
	return err
}
