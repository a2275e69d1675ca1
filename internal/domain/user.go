package domain

import "time"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Member is a user as seen from a board's member list.
type Member struct {
	UserID   int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
}
