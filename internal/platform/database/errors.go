package database

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bookreview/internal/platform/apperr"
)

// ConstraintName returns the violated constraint when err is a postgres
// error carrying the given SQLSTATE.
func ConstraintName(err error, code string) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func IsUniqueViolation(err error) bool {
	_, ok := ConstraintName(err, pgerrcode.UniqueViolation)
	return ok
}

func IsForeignKeyViolation(err error) bool {
	_, ok := ConstraintName(err, pgerrcode.ForeignKeyViolation)
	return ok
}

// Classify maps a driver error onto an apperr kind. resource and id are used
// for NotFound messages. Errors it does not recognise are returned unchanged.
func Classify(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows), IsForeignKeyViolation(err):
		return apperr.NotFound(resource, id)
	case IsUniqueViolation(err):
		return apperr.Conflict(resource + " already exists")
	case IsConnectionError(err):
		return apperr.Unavailable(err)
	}
	return err
}
