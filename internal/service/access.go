package service

import (
	"context"

	"nexusboard/internal/domain"
	"nexusboard/internal/repository"
)

// Access evaluates the membership and ownership predicates. A user is a
// member of a board if they own it or hold a membership row.
type Access struct {
	store Store
}

func NewAccess(store Store) *Access {
	return &Access{store: store}
}

func (a *Access) IsMember(ctx context.Context, boardID, userID int64) (bool, error) {
	var ok bool
	err := a.store.View(ctx, func(q repository.Querier) error {
		var err error
		ok, err = q.IsMember(ctx, boardID, userID)
		return err
	})
	return ok, err
}

func (a *Access) IsOwner(ctx context.Context, boardID, userID int64) (bool, error) {
	var ok bool
	err := a.store.View(ctx, func(q repository.Querier) error {
		b, err := q.GetBoard(ctx, boardID)
		if err != nil {
			return err
		}
		ok = b.OwnerID == userID
		return nil
	})
	return ok, err
}

// CheckMember satisfies the websocket subscription check.
func (a *Access) CheckMember(ctx context.Context, userID, boardID int64) error {
	return a.store.View(ctx, func(q repository.Querier) error {
		_, err := requireMember(ctx, q, boardID, userID)
		return err
	})
}

func requireMember(ctx context.Context, q repository.Querier, boardID, userID int64) (*domain.Board, error) {
	b, err := q.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	ok, err := q.IsMember(ctx, boardID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Forbidden("You are not a member of this board")
	}
	return b, nil
}

func requireOwner(ctx context.Context, q repository.Querier, boardID, userID int64, msg string) (*domain.Board, error) {
	b, err := q.GetBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != userID {
		return nil, domain.Forbidden(msg)
	}
	return b, nil
}
