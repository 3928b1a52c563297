// Package sqlxrepos implements the repositories over PostgreSQL with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	pkgerrors "github.com/pkg/errors"
)

const uniqueViolation = "23505"

// constraintError maps a unique violation on one of the given constraints to its sentinel error.
// Any other error is returned as is.
func constraintError(err error, sentinels map[string]error) error {
	if err == nil {
		return nil
	}

	var constraint string
	var pqErr *pq.Error
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pqErr) && pqErr.Code == uniqueViolation:
		constraint = pqErr.Constraint
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		constraint = pgErr.ConstraintName
	default:
		return err
	}

	if sentinel, ok := sentinels[constraint]; ok {
		return sentinel
	}
	return err
}

// notFound turns sql.ErrNoRows into sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

// affected returns sentinel when the statement touched no row.
func affected(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return pkgerrors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return sentinel
	}
	return nil
}

// withTx runs fn in a transaction, committed only if fn succeeds.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return pkgerrors.Wrap(tx.Commit(), "committing transaction")
}
