package repository

import (
	"errors"
	"testing"

	"nexusboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil, "task"))

	err := mapErr(pgx.ErrNoRows, "task")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "task not found", err.Error())

	err = mapErr(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "users_email_key"}, "user")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "email already registered", err.Error())

	err = mapErr(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "boards_board_code_key"}, "board")
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = mapErr(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "something_else"}, "board")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "board already exists", err.Error())

	err = mapErr(&pgconn.PgError{Code: pgErrForeignKeyViolation, ConstraintName: "tasks_board_id_fkey"}, "task")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "board not found", err.Error())

	err = mapErr(&pgconn.PgError{Code: pgErrForeignKeyViolation, ConstraintName: "tasks_assigned_to_fkey"}, "task")
	assert.Equal(t, "user not found", err.Error())

	raw := errors.New("connection refused")
	err = mapErr(raw, "task")
	assert.ErrorIs(t, err, raw)
	assert.False(t, domain.IsRejection(err))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\tmp`, escapeLike(`c:\tmp`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
