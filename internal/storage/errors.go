package storage

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// Коды ошибок PostgreSQL
const (
	PgErrorCodeUniqueViolation     = "23505"
	PgErrorCodeForeignKeyViolation = "23503"
	PgErrorCodeUndefinedTable      = "42P01"
)

// ErrNotFound запись не найдена
var ErrNotFound = errors.New("record not found")

// DatabaseError ошибка базы данных с исходной причиной
type DatabaseError struct {
	Message string
	Cause   error
}

func (e *DatabaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("database error: %s (caused by: %v)", e.Message, e.Cause)
	}
	return fmt.Sprintf("database error: %s", e.Message)
}

func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// handleDatabaseError приводит ошибки драйвера к ошибкам хранилища
func handleDatabaseError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case PgErrorCodeUniqueViolation:
			return &DatabaseError{Message: fmt.Sprintf("%s: duplicate record (%s)", operation, pgErr.ConstraintName), Cause: err}
		case PgErrorCodeForeignKeyViolation:
			return &DatabaseError{Message: fmt.Sprintf("%s: referenced record does not exist", operation), Cause: err}
		case PgErrorCodeUndefinedTable:
			return &DatabaseError{Message: fmt.Sprintf("%s: table is missing, run migrations", operation), Cause: err}
		}
	}

	return errors.Wrap(err, operation)
}
