package repository

import (
	"context"
	"strconv"

	"nexusboard/internal/domain"

	"github.com/jackc/pgx/v5"
)

type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskSelect = `
	SELECT t.id, t.board_id, t.name, t.description, t.assigned_to, COALESCE(u.username, ''),
	       t.comments, t.due_date, t.progress, t.position, t.created_at
	FROM tasks t
	LEFT JOIN users u ON u.id = t.assigned_to`

// CreateTask appends the task at the end of the board's manual order.
func (r *TaskRepository) CreateTask(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (name, description, board_id, assigned_to, comments, due_date, progress, position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7,
		         (SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE board_id = $3))
		 RETURNING id, position, created_at`,
		t.Name, t.Description, t.BoardID, t.AssignedTo, t.Comments, t.DueDate, t.Progress,
	).Scan(&t.ID, &t.Position, &t.CreatedAt)
	return mapErr(err, "task")
}

func (r *TaskRepository) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	return scanTask(r.db.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
}

func (r *TaskRepository) UpdateTask(ctx context.Context, t *domain.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks
		 SET name = $1, description = $2, assigned_to = $3, comments = $4, due_date = $5, progress = $6
		 WHERE id = $7`,
		t.Name, t.Description, t.AssignedTo, t.Comments, t.DueDate, t.Progress, t.ID,
	)
	if err != nil {
		return mapErr(err, "task")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("task")
	}
	return nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "task")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("task")
	}
	return nil
}

// ListTasks returns a board's tasks in manual order.
func (r *TaskRepository) ListTasks(ctx context.Context, boardID int64, f domain.TaskFilter) ([]*domain.Task, error) {
	query := taskSelect + ` WHERE t.board_id = $1`
	args := []any{boardID}

	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		query += ` AND t.name ILIKE $` + strconv.Itoa(len(args))
	}
	if f.AssigneeID != nil {
		args = append(args, *f.AssigneeID)
		query += ` AND t.assigned_to = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY t.position ASC, t.id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err, "task")
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SetTaskPosition writes a task's manual rank. The board id is part of the
// WHERE clause, so ids from another board are left untouched.
func (r *TaskRepository) SetTaskPosition(ctx context.Context, boardID, taskID int64, position int) error {
	_, err := r.db.Exec(ctx, `UPDATE tasks SET position = $1 WHERE id = $2 AND board_id = $3`, position, taskID, boardID)
	return mapErr(err, "task")
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID,
		&t.BoardID,
		&t.Name,
		&t.Description,
		&t.AssignedTo,
		&t.AssignedName,
		&t.Comments,
		&t.DueDate,
		&t.Progress,
		&t.Position,
		&t.CreatedAt,
	); err != nil {
		return nil, mapErr(err, "task")
	}
	return &t, nil
}
