package service

import (
	"context"
	"sync"
	"testing"

	"nexusboard/internal/domain"
	"nexusboard/internal/repository/memstore"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recorder) Publish(_ context.Context, ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) take() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

type fixture struct {
	store   *memstore.Store
	events  *recorder
	auth    *AuthService
	access  *Access
	boards  *BoardService
	tasks   *TaskService
	history *HistoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	codes, err := NewBoardCodeGenerator()
	require.NoError(t, err)

	store := memstore.New()
	events := &recorder{}
	return &fixture{
		store:   store,
		events:  events,
		auth:    NewAuthService(store, NewPasswordHasher(4)),
		access:  NewAccess(store),
		boards:  NewBoardService(store, events, codes),
		tasks:   NewTaskService(store, events),
		history: NewHistoryService(store, events),
	}
}

func (f *fixture) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), name, name+"@example.com", "secret")
	require.NoError(t, err)
	return u
}

func (f *fixture) board(t *testing.T, owner *domain.User, name string) *domain.Board {
	t.Helper()
	b, err := f.boards.CreateBoard(context.Background(), owner.ID, name, "")
	require.NoError(t, err)
	f.events.take()
	return b
}

func (f *fixture) task(t *testing.T, userID, boardID int64, name string) *domain.Task {
	t.Helper()
	task, err := f.tasks.AddTask(context.Background(), userID, boardID, TaskInput{Name: name})
	require.NoError(t, err)
	f.events.take()
	return task
}
