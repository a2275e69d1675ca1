package repository

import (
	"errors"
	"fmt"
	"strings"

	"nexusboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes.
const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

var conflictMessages = map[string]string{
	"users_username_key":               "username already taken",
	"users_email_key":                  "email already registered",
	"boards_board_code_key":            "board code already in use, please try again",
	"user_boards_user_id_board_id_key": "user is already a member of this board",
}

// mapErr converts driver errors into domain error kinds. what names the
// entity the statement was about and is used in not-found messages.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NotFound(what)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			msg, ok := conflictMessages[pgErr.ConstraintName]
			if !ok {
				msg = what + " already exists"
			}
			return domain.Conflict(msg)
		case pgErrForeignKeyViolation:
			if strings.Contains(pgErr.ConstraintName, "board_id") {
				return domain.NotFound("board")
			}
			return domain.NotFound("user")
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
