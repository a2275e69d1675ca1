package repository

import (
	"context"
	"fmt"

	"nexusboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// can run inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier is the full set of persistence operations used by the services.
type Querier interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUser(ctx context.Context, usernameOrEmail string) (*domain.User, error)

	CreateBoard(ctx context.Context, b *domain.Board) error
	GetBoard(ctx context.Context, id int64) (*domain.Board, error)
	GetBoardByCode(ctx context.Context, code string) (*domain.Board, error)
	UpdateBoard(ctx context.Context, id int64, name, description string) error
	DeleteBoard(ctx context.Context, id int64) error
	ListOwnedBoards(ctx context.Context, userID int64) ([]*domain.Board, error)
	ListJoinedBoards(ctx context.Context, userID int64) ([]*domain.Board, error)

	AddMember(ctx context.Context, boardID, userID int64) (bool, error)
	RemoveMember(ctx context.Context, boardID, userID int64) (bool, error)
	IsMember(ctx context.Context, boardID, userID int64) (bool, error)
	ListMembers(ctx context.Context, boardID int64) ([]*domain.Member, error)

	CreateTask(ctx context.Context, t *domain.Task) error
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	UpdateTask(ctx context.Context, t *domain.Task) error
	DeleteTask(ctx context.Context, id int64) error
	ListTasks(ctx context.Context, boardID int64, f domain.TaskFilter) ([]*domain.Task, error)
	SetTaskPosition(ctx context.Context, boardID, taskID int64, position int) error

	AppendHistory(ctx context.Context, e *domain.HistoryEntry) error
	ListHistory(ctx context.Context, boardID int64) ([]*domain.HistoryEntry, error)
	DeleteHistory(ctx context.Context, id int64) (*domain.HistoryEntry, error)
}

// Queries bundles the per-entity repositories over one DBTX.
type Queries struct {
	*UserRepository
	*BoardRepository
	*MemberRepository
	*TaskRepository
	*HistoryRepository
}

func NewQueries(db DBTX) *Queries {
	return &Queries{
		UserRepository:    NewUserRepository(db),
		BoardRepository:   NewBoardRepository(db),
		MemberRepository:  NewMemberRepository(db),
		TaskRepository:    NewTaskRepository(db),
		HistoryRepository: NewHistoryRepository(db),
	}
}

var _ Querier = (*Queries)(nil)

// Store is the Postgres-backed persistence handle.
type Store struct {
	pool    *pgxpool.Pool
	queries *Queries
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, queries: NewQueries(pool)}
}

// View runs fn against the pool without a transaction.
func (s *Store) View(ctx context.Context, fn func(q Querier) error) error {
	return fn(s.queries)
}

// InTx runs fn inside a single transaction. The transaction commits only if
// fn returns nil; any error rolls back every write fn made.
func (s *Store) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewQueries(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
