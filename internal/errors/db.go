package errors

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDBError maps database errors to AppError instances:
//   - context deadline / cancel → Timeout / Canceled
//   - pgx.ErrNoRows → NotFound
//   - check / not-null violations → Validation
//   - connection exceptions, shutdown, resource exhaustion → Unavailable
//   - any other PostgreSQL error → Internal
//
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "database request timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "database request was canceled", Cause: err}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "resource not found", Cause: err}
	}
	if errors.Is(err, driver.ErrBadConn) {
		return Unavailable("database connection lost", err)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return Unavailable("database unavailable", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return err
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch {
	case pgErr.Code == pgerrcode.CheckViolation:
		return &AppError{Code: ErrCodeValidation, Message: "value violates a table constraint", Field: pgErr.ColumnName, Cause: pgErr}
	case pgErr.Code == pgerrcode.NotNullViolation:
		return &AppError{Code: ErrCodeValidation, Message: "a required value is missing", Field: pgErr.ColumnName, Cause: pgErr}
	case pgerrcode.IsConnectionException(pgErr.Code),
		pgerrcode.IsOperatorIntervention(pgErr.Code),
		pgerrcode.IsInsufficientResources(pgErr.Code):
		return Unavailable("database unavailable", pgErr)
	default:
		return &AppError{Code: ErrCodeInternal, Message: "a database error occurred", Cause: pgErr}
	}
}
