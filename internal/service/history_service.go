package service

import (
	"context"

	"nexusboard/internal/domain"
	"nexusboard/internal/repository"
)

type HistoryService struct {
	store  Store
	events Notifier
}

func NewHistoryService(store Store, events Notifier) *HistoryService {
	return &HistoryService{store: store, events: events}
}

// List returns the board's history, most recent first. Members only.
func (s *HistoryService) List(ctx context.Context, userID, boardID int64) ([]*domain.HistoryEntry, error) {
	var entries []*domain.HistoryEntry
	err := s.store.View(ctx, func(q repository.Querier) error {
		if _, err := requireMember(ctx, q, boardID, userID); err != nil {
			return err
		}
		var err error
		entries, err = q.ListHistory(ctx, boardID)
		return err
	})
	return entries, err
}

// Delete removes one entry. Any authenticated caller may delete any entry;
// no membership check is made here.
// TODO: restrict to board owners once existing clients stop relying on it.
func (s *HistoryService) Delete(ctx context.Context, userID, entryID int64) (*domain.HistoryEntry, error) {
	var e *domain.HistoryEntry
	err := mutate(ctx, s.store, s.events, func(q repository.Querier) ([]domain.Event, error) {
		var err error
		if e, err = q.DeleteHistory(ctx, entryID); err != nil {
			return nil, err
		}
		return []domain.Event{domain.HistoryChanged(e.BoardID)}, nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}
