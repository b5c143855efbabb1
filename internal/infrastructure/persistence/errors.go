package persistence

import (
	"errors"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// postgres SQLSTATEs the caller may retry
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// translateError maps GORM errors to domain errors. Other errors pass through.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewDomainError(shared.CodeConflict, "Record conflicts with an existing one")
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return shared.NewDomainError(shared.CodeConflict, "Record violates a constraint")
	case isRetryable(err):
		return shared.NewDomainError(shared.CodeConflict, "Concurrent update, please retry")
	default:
		return err
	}
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}
