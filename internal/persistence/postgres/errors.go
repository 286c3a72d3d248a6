package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/charging-hub/internal/persistence"
)

// PostgreSQL error codes mapped onto the persistence sentinels.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// mapError translates driver errors into persistence sentinels so callers
// never depend on pgx types.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return persistence.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return persistence.ErrDuplicate
		case codeForeignKeyViolation:
			return persistence.ErrForeignKeyViolation
		case codeCheckViolation:
			return persistence.ErrConstraintViolation
		}
	}
	return err
}
