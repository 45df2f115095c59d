package repository

import (
	"errors"

	"retailpos/internal/apierror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the repositories act on.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// isUniqueViolation reports a 23505 on the named constraint or index
// (any constraint when name is empty).
func isUniqueViolation(err error, name string) bool {
	pgErr := pgError(err)
	if pgErr == nil || pgErr.Code != pgUniqueViolation {
		return false
	}
	return name == "" || pgErr.ConstraintName == name
}

// translate turns lost races into ConcurrencyConflict and leaves every other
// error untouched.
func translate(err error) error {
	if pgErr := pgError(err); pgErr != nil {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return apierror.Conflict("concurrent update on %s, retry the operation", pgErr.TableName)
		}
	}
	return err
}

// notFound maps gorm.ErrRecordNotFound to a NotFound domain error.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(format, args...)
	}
	return translate(err)
}
