package errors

import (
	stdErrors "errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, regardless of which driver surfaced it.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if stdErrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgxErr *pgconn.PgError
	if stdErrors.As(err, &pgxErr) {
		return pgxErr.Code == uniqueViolationCode
	}
	var pqErr *pq.Error
	if stdErrors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolationCode
	}
	return false
}
