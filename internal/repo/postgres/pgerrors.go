package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	return false
}

// IsForeignKeyViolation reports whether err is a 23503 on the named
// constraint. An empty constraint matches any FK violation.
func IsForeignKeyViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		if pgErr.Code != "23503" {
			return false
		}
		return constraint == "" || pgErr.ConstraintName == constraint
	}

	return false
}
