package domain

import "time"

// HistoryEntry is one line of a board's audit log.
type HistoryEntry struct {
	ID        int64     `db:"id" json:"id"`
	BoardID   int64     `db:"board_id" json:"board_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Username  string    `db:"username" json:"username,omitempty"`
	Action    string    `db:"action" json:"action"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
