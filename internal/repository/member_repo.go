package repository

import (
	"context"

	"nexusboard/internal/domain"
)

// MemberRepository manages the user_boards relation.
type MemberRepository struct {
	db DBTX
}

func NewMemberRepository(db DBTX) *MemberRepository {
	return &MemberRepository{db: db}
}

// AddMember inserts a membership row. It reports false when the row
// already existed.
func (r *MemberRepository) AddMember(ctx context.Context, boardID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO user_boards (user_id, board_id)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, board_id) DO NOTHING`,
		userID, boardID,
	)
	if err != nil {
		return false, mapErr(err, "membership")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *MemberRepository) RemoveMember(ctx context.Context, boardID, userID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_boards WHERE user_id = $1 AND board_id = $2`, userID, boardID)
	if err != nil {
		return false, mapErr(err, "membership")
	}
	return tag.RowsAffected() > 0, nil
}

// IsMember is true when the user owns the board or has a membership row.
func (r *MemberRepository) IsMember(ctx context.Context, boardID, userID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM boards WHERE id = $1 AND owner_id = $2)
		     OR EXISTS (SELECT 1 FROM user_boards WHERE board_id = $1 AND user_id = $2)`,
		boardID, userID,
	).Scan(&ok)
	if err != nil {
		return false, mapErr(err, "membership")
	}
	return ok, nil
}

// ListMembers returns the owner and every joined user, ordered by username.
func (r *MemberRepository) ListMembers(ctx context.Context, boardID int64) ([]*domain.Member, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.username
		FROM users u
		WHERE u.id IN (SELECT user_id FROM user_boards WHERE board_id = $1)
		   OR u.id = (SELECT owner_id FROM boards WHERE id = $1)
		ORDER BY u.username`, boardID)
	if err != nil {
		return nil, mapErr(err, "membership")
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.UserID, &m.Username); err != nil {
			return nil, err
		}
		members = append(members, &m)
	}
	return members, rows.Err()
}
