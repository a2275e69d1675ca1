package repository

import (
	"context"

	"nexusboard/internal/domain"

	"github.com/jackc/pgx/v5"
)

type BoardRepository struct {
	db DBTX
}

func NewBoardRepository(db DBTX) *BoardRepository {
	return &BoardRepository{db: db}
}

const boardSelect = `
	SELECT b.id, b.name, b.description, b.board_code, b.owner_id, u.username, b.created_at
	FROM boards b
	JOIN users u ON u.id = b.owner_id`

func (r *BoardRepository) CreateBoard(ctx context.Context, b *domain.Board) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO boards (name, description, board_code, owner_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		b.Name, b.Description, b.Code, b.OwnerID,
	).Scan(&b.ID, &b.CreatedAt)
	return mapErr(err, "board")
}

func (r *BoardRepository) GetBoard(ctx context.Context, id int64) (*domain.Board, error) {
	return scanBoard(r.db.QueryRow(ctx, boardSelect+` WHERE b.id = $1`, id))
}

func (r *BoardRepository) GetBoardByCode(ctx context.Context, code string) (*domain.Board, error) {
	return scanBoard(r.db.QueryRow(ctx, boardSelect+` WHERE b.board_code = $1`, code))
}

func (r *BoardRepository) UpdateBoard(ctx context.Context, id int64, name, description string) error {
	tag, err := r.db.Exec(ctx, `UPDATE boards SET name = $1, description = $2 WHERE id = $3`, name, description, id)
	if err != nil {
		return mapErr(err, "board")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("board")
	}
	return nil
}

// DeleteBoard removes the board together with its history, tasks and
// memberships. The schema cascades as well; the explicit deletes keep the
// no-orphans guarantee independent of it. Callers run this inside a
// transaction.
func (r *BoardRepository) DeleteBoard(ctx context.Context, id int64) error {
	for _, stmt := range []string{
		`DELETE FROM history WHERE board_id = $1`,
		`DELETE FROM tasks WHERE board_id = $1`,
		`DELETE FROM user_boards WHERE board_id = $1`,
	} {
		if _, err := r.db.Exec(ctx, stmt, id); err != nil {
			return mapErr(err, "board")
		}
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "board")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("board")
	}
	return nil
}

// ListOwnedBoards returns boards owned by the user, newest first.
func (r *BoardRepository) ListOwnedBoards(ctx context.Context, userID int64) ([]*domain.Board, error) {
	rows, err := r.db.Query(ctx, boardSelect+`
		WHERE b.owner_id = $1
		ORDER BY b.created_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, mapErr(err, "board")
	}
	defer rows.Close()

	return scanBoards(rows)
}

// ListJoinedBoards returns boards the user is a member of but does not own.
func (r *BoardRepository) ListJoinedBoards(ctx context.Context, userID int64) ([]*domain.Board, error) {
	rows, err := r.db.Query(ctx, boardSelect+`
		JOIN user_boards ub ON ub.board_id = b.id
		WHERE ub.user_id = $1 AND b.owner_id <> $1
		ORDER BY b.created_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, mapErr(err, "board")
	}
	defer rows.Close()

	return scanBoards(rows)
}

func scanBoard(row pgx.Row) (*domain.Board, error) {
	var b domain.Board
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Code, &b.OwnerID, &b.OwnerName, &b.CreatedAt); err != nil {
		return nil, mapErr(err, "board")
	}
	return &b, nil
}

func scanBoards(rows pgx.Rows) ([]*domain.Board, error) {
	var boards []*domain.Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}
