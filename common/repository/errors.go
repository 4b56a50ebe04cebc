package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/softserv/softserv/common/apperr"
)

// Postgres error codes we care about
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// wrapErr maps low-level database failures onto the shared taxonomy.
// Uniqueness violations become conflicts, broken references become
// not-found, anything else stays an opaque internal error.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperr.Conflictf("%s: value already exists", op)
		case pgForeignKeyViolation:
			return apperr.NotFoundf("%s: referenced entity does not exist", op)
		}
	}
	return apperr.Internal(op, err)
}
