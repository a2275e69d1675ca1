package domain

import "time"

const (
	MinProgress = 0
	MaxProgress = 100
)

type Task struct {
	ID           int64      `db:"id" json:"id"`
	BoardID      int64      `db:"board_id" json:"board_id"`
	Name         string     `db:"name" json:"name"`
	Description  string     `db:"description" json:"description"`
	AssignedTo   *int64     `db:"assigned_to" json:"assigned_to"`
	AssignedName string     `db:"assigned_name" json:"assigned_name,omitempty"`
	Comments     string     `db:"comments" json:"comments"`
	DueDate      *time.Time `db:"due_date" json:"due_date"`
	Progress     int        `db:"progress" json:"progress"`
	Position     int        `db:"position" json:"position"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// TaskFilter narrows a board's task list. Search is a case-insensitive
// substring of the task name; AssigneeID matches exactly.
type TaskFilter struct {
	Search     string
	AssigneeID *int64
}
