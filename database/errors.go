package database

import (
	"errors"
	"strings"

	"rationdist/pkg/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the application reacts to.
const (
	PgErrUniqueViolation     = "23505"
	PgErrForeignKeyViolation = "23503"
	PgErrNotNullViolation    = "23502"
	PgErrCheckViolation      = "23514"
	PgErrStringTooLong       = "22001"
	PgErrNumericOutOfRange   = "22003"
	PgErrInvalidDatetime     = "22007"
)

// Classify turns a store error into an *apperr.Error. Errors that already
// carry a kind pass through unchanged.
func Classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(msg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case PgErrUniqueViolation:
			return apperr.Validation(msg+": duplicate value", err)
		case PgErrForeignKeyViolation:
			return apperr.Validation(msg+": referenced record does not exist", err)
		case PgErrNotNullViolation, PgErrCheckViolation:
			return apperr.Validation(msg+": missing or invalid field", err)
		case PgErrStringTooLong, PgErrNumericOutOfRange, PgErrInvalidDatetime:
			return apperr.Validation(msg+": value out of range", err)
		}
		return apperr.Persistence(msg, err)
	}

	// sqlite reports constraint failures as plain text
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "unique constraint"):
		return apperr.Validation(msg+": duplicate value", err)
	case strings.Contains(s, "foreign key constraint"):
		return apperr.Validation(msg+": referenced record does not exist", err)
	}
	return apperr.Persistence(msg, err)
}
