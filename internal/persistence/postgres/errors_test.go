package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/example/charging-hub/internal/persistence"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), persistence.ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: codeUniqueViolation}), persistence.ErrDuplicate)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: codeForeignKeyViolation}), persistence.ErrForeignKeyViolation)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: codeCheckViolation}), persistence.ErrConstraintViolation)

	plain := errors.New("boom")
	assert.Equal(t, plain, mapError(plain))
}
