package repository

import (
	"context"
	"strings"

	"nexusboard/internal/domain"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, created_at`

func (r *UserRepository) CreateUser(ctx context.Context, u *domain.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		u.Username,
		u.Email,
		u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	return mapErr(err, "user")
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	return scanUser(row)
}

// FindUser looks a user up by exact username or by (lowercased) email.
func (r *UserRepository) FindUser(ctx context.Context, usernameOrEmail string) (*domain.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE username = $1 OR email = lower($1)
		 ORDER BY id
		 LIMIT 1`,
		usernameOrEmail,
	)
	return scanUser(row)
}

func scanUser(row interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, mapErr(err, "user")
	}
	return &u, nil
}
