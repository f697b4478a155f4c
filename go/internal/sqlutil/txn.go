package sqlutil

import (
	"context"
	"database/sql"
)

// Transactor runs fn against a repository bound to a single database
// transaction. fn returning an error rolls back every write it made.
type Transactor[R any] interface {
	InTx(ctx context.Context, fn func(repo R) error) error
}

// Run executes fn inside one database transaction, committing if fn returns nil.
func Run[T any](ctx context.Context, db *sql.DB, bind func(*sql.Tx) T, fn func(q T) error) error {
	tx, err := db.BeginTx(ctx, nil) // BEGIN
	if err != nil {
		return err
	}

	q := bind(tx) // bind the repository to this tx
	if err := fn(q); err != nil {
		_ = tx.Rollback() // ROLLBACK
		return err
	}

	return tx.Commit() // COMMIT
}

// TxRunner is the Postgres Transactor.
type TxRunner[R any] struct {
	db   *sql.DB
	bind func(*sql.Tx) R
}

func NewTxRunner[R any](db *sql.DB, bind func(*sql.Tx) R) *TxRunner[R] {
	return &TxRunner[R]{db: db, bind: bind}
}

func (r *TxRunner[R]) InTx(ctx context.Context, fn func(repo R) error) error {
	return Run(ctx, r.db, r.bind, fn)
}
