package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-api/internal/apperr"
)

// InTx runs fn inside one unit of work. Any error from fn, or a panic,
// rolls everything back; otherwise the transaction is committed.
// Driver errors come back classified as apperr.Contention or
// apperr.StorageFailure; errors already classified by fn pass through.
func (db *DB) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, db.Dialect.txOptions)
	if err != nil {
		return Classify(err, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				db.log.Warn("rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return Classify(err, "transaction")
	}
	if err = tx.Commit(); err != nil {
		return Classify(err, "commit")
	}
	return nil
}

// Classify maps a raw driver error onto the apperr taxonomy.
func Classify(err error, op string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if IsContention(err) {
		return apperr.Wrap(apperr.Contention, err, "%s: lock wait exceeded, retry later", op)
	}
	return apperr.Wrap(apperr.StorageFailure, err, "%s failed", op)
}
