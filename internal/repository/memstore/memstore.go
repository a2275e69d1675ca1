// Package memstore is an in-memory implementation of the repository
// Querier. Transactions work on a copy of the state that replaces the live
// state only on commit, so a failed mutation leaves nothing behind.
package memstore

import (
	"context"
	"sync"
	"time"

	"nexusboard/internal/domain"
	"nexusboard/internal/repository"
)

type memberKey struct {
	boardID int64
	userID  int64
}

type state struct {
	seq     map[string]int64
	users   map[int64]domain.User
	boards  map[int64]domain.Board
	members map[memberKey]time.Time
	tasks   map[int64]domain.Task
	history map[int64]domain.HistoryEntry
}

func newState() *state {
	return &state{
		seq:     make(map[string]int64),
		users:   make(map[int64]domain.User),
		boards:  make(map[int64]domain.Board),
		members: make(map[memberKey]time.Time),
		tasks:   make(map[int64]domain.Task),
		history: make(map[int64]domain.HistoryEntry),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.seq {
		c.seq[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.boards {
		c.boards[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.tasks {
		c.tasks[k] = copyTask(v)
	}
	for k, v := range s.history {
		c.history[k] = v
	}
	return c
}

func (s *state) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// Store is safe for concurrent use; all operations are serialized.
type Store struct {
	mu    sync.Mutex
	state *state
	fail  map[string]error
}

func New() *Store {
	return &Store{state: newState(), fail: make(map[string]error)}
}

// FailNext makes the next call of the named Querier method return err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

func (s *Store) View(ctx context.Context, fn func(q repository.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&queries{st: s.state, store: s})
}

func (s *Store) InTx(ctx context.Context, fn func(q repository.Querier) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&queries{st: work, store: s}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

// BoardRows counts the rows that reference a board.
type BoardRows struct {
	Members int
	Tasks   int
	History int
}

func (s *Store) BoardRows(boardID int64) BoardRows {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n BoardRows
	for k := range s.state.members {
		if k.boardID == boardID {
			n.Members++
		}
	}
	for _, t := range s.state.tasks {
		if t.BoardID == boardID {
			n.Tasks++
		}
	}
	for _, h := range s.state.history {
		if h.BoardID == boardID {
			n.History++
		}
	}
	return n
}

func copyTask(t domain.Task) domain.Task {
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		t.AssignedTo = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		t.DueDate = &v
	}
	return t
}
