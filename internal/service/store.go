package service

import (
	"context"

	"nexusboard/internal/domain"
	"nexusboard/internal/logger"
	"nexusboard/internal/repository"
)

// Store is the persistence handle the services run against. Both the
// Postgres store and memstore satisfy it.
type Store interface {
	View(ctx context.Context, fn func(q repository.Querier) error) error
	InTx(ctx context.Context, fn func(q repository.Querier) error) error
}

// Notifier delivers change events to subscribers. Delivery is best effort.
type Notifier interface {
	Publish(ctx context.Context, ev domain.Event)
}

type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, domain.Event) {}

// mutate runs fn in one transaction and publishes the events it returns
// only after the transaction has committed.
func mutate(ctx context.Context, store Store, events Notifier, fn func(q repository.Querier) ([]domain.Event, error)) error {
	var pending []domain.Event
	err := store.InTx(ctx, func(q repository.Querier) error {
		evs, err := fn(q)
		if err != nil {
			return err
		}
		pending = evs
		return nil
	})
	if err != nil {
		return err
	}
	for _, ev := range pending {
		logger.Debug("publish event", "type", ev.Type, "board_id", ev.BoardID)
		events.Publish(ctx, ev)
	}
	return nil
}

func appendHistory(ctx context.Context, q repository.Querier, boardID, userID int64, action string) error {
	return q.AppendHistory(ctx, &domain.HistoryEntry{BoardID: boardID, UserID: userID, Action: action})
}
