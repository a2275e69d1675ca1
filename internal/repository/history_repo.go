package repository

import (
	"context"

	"nexusboard/internal/domain"

	"github.com/jackc/pgx/v5"
)

// HistoryRepository handles the per-board audit log.
type HistoryRepository struct {
	db DBTX
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db DBTX) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// AppendHistory inserts a new history entry
func (r *HistoryRepository) AppendHistory(ctx context.Context, e *domain.HistoryEntry) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO history (board_id, user_id, action)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, e.BoardID, e.UserID, e.Action).Scan(&e.ID, &e.CreatedAt)
	return mapErr(err, "history entry")
}

// ListHistory returns a board's history, most recent first
func (r *HistoryRepository) ListHistory(ctx context.Context, boardID int64) ([]*domain.HistoryEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT h.id, h.board_id, COALESCE(h.user_id, 0), COALESCE(u.username, ''), h.action, h.created_at
		FROM history h
		LEFT JOIN users u ON u.id = h.user_id
		WHERE h.board_id = $1
		ORDER BY h.created_at DESC, h.id DESC
	`, boardID)
	if err != nil {
		return nil, mapErr(err, "history entry")
	}
	defer rows.Close()

	return scanHistory(rows)
}

// DeleteHistory removes one entry and returns it so callers know its board
func (r *HistoryRepository) DeleteHistory(ctx context.Context, id int64) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	err := r.db.QueryRow(ctx, `
		DELETE FROM history
		WHERE id = $1
		RETURNING id, board_id, COALESCE(user_id, 0), action, created_at
	`, id).Scan(&e.ID, &e.BoardID, &e.UserID, &e.Action, &e.CreatedAt)
	if err != nil {
		return nil, mapErr(err, "history entry")
	}
	return &e, nil
}

func scanHistory(rows pgx.Rows) ([]*domain.HistoryEntry, error) {
	var entries []*domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.BoardID, &e.UserID, &e.Username, &e.Action, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
