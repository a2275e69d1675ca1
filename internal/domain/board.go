package domain

import "time"

type Board struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Code        string    `db:"board_code" json:"board_code"`
	OwnerID     int64     `db:"owner_id" json:"owner_id"`
	OwnerName   string    `db:"owner_name" json:"owner_name,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
