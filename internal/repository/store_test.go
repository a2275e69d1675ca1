package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"nexusboard/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to DATABASE_URL, applies migrations and truncates
// all tables. Tests are skipped when no database is configured.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("database ping failed: %v", err)
	}
	t.Cleanup(pool.Close)

	migDir := filepath.Join("..", "migrations")
	files, err := os.ReadDir(migDir)
	require.NoError(t, err)
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(migDir, name))
		require.NoError(t, err)
		_, err = pool.Exec(ctx, string(b))
		require.NoError(t, err, "apply migration %s", name)
	}

	_, err = pool.Exec(ctx, `TRUNCATE history, tasks, user_boards, boards, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func createUser(t *testing.T, q Querier, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, q.CreateUser(context.Background(), u))
	return u
}

func TestStore_UserConflicts(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()

	createUser(t, s.queries, "alice")

	err := s.queries.CreateUser(ctx, &domain.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "username already taken", err.Error())

	err = s.queries.CreateUser(ctx, &domain.User{Username: "alice2", Email: "alice@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "email already registered", err.Error())

	u, err := s.queries.FindUser(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = s.queries.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_InTxRollsBack(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()
	owner := createUser(t, s.queries, "owner")

	boom := errors.New("boom")
	var boardID int64
	err := s.InTx(ctx, func(q Querier) error {
		b := &domain.Board{Name: "Sprint", Code: "NXBAAAA", OwnerID: owner.ID}
		if err := q.CreateBoard(ctx, b); err != nil {
			return err
		}
		boardID = b.ID
		if _, err := q.AddMember(ctx, b.ID, owner.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.queries.GetBoard(ctx, boardID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	ok, err := s.queries.IsMember(ctx, boardID, owner.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_MembershipAndBoards(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()
	q := s.queries

	owner := createUser(t, q, "owner")
	member := createUser(t, q, "member")
	outsider := createUser(t, q, "outsider")

	b := &domain.Board{Name: "Sprint", Description: "d", Code: "NXB0001", OwnerID: owner.ID}
	require.NoError(t, q.CreateBoard(ctx, b))

	// Owner counts as a member even without a membership row.
	ok, err := q.IsMember(ctx, b.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	added, err := q.AddMember(ctx, b.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = q.AddMember(ctx, b.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, added)

	ok, err = q.IsMember(ctx, b.ID, outsider.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	members, err := q.ListMembers(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "member", members[0].Username)
	assert.Equal(t, "owner", members[1].Username)

	joined, err := q.ListJoinedBoards(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	assert.Equal(t, "owner", joined[0].OwnerName)

	owned, err := q.ListOwnedBoards(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)

	err = q.CreateBoard(ctx, &domain.Board{Name: "Dup", Code: "NXB0001", OwnerID: owner.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)

	byCode, err := q.GetBoardByCode(ctx, "NXB0001")
	require.NoError(t, err)
	assert.Equal(t, b.ID, byCode.ID)
}

func TestStore_TasksOrderAndFilter(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()
	q := s.queries

	owner := createUser(t, q, "owner")
	b := &domain.Board{Name: "Sprint", Code: "NXB0002", OwnerID: owner.ID}
	require.NoError(t, q.CreateBoard(ctx, b))

	due := time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC)
	var ids []int64
	for i, name := range []string{"Write spec", "Review 100% of PRs", "Deploy"} {
		task := &domain.Task{BoardID: b.ID, Name: name, Progress: i * 10}
		if i == 0 {
			task.AssignedTo = &owner.ID
			task.DueDate = &due
		}
		require.NoError(t, q.CreateTask(ctx, task))
		assert.Equal(t, i, task.Position)
		ids = append(ids, task.ID)
	}

	tasks, err := q.ListTasks(ctx, b.ID, domain.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "owner", tasks[0].AssignedName)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, due.Equal(*tasks[0].DueDate))

	tasks, err = q.ListTasks(ctx, b.ID, domain.TaskFilter{Search: "100%"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, ids[1], tasks[0].ID)

	tasks, err = q.ListTasks(ctx, b.ID, domain.TaskFilter{AssigneeID: &owner.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	for pos, id := range []int64{ids[2], ids[0], ids[1]} {
		require.NoError(t, q.SetTaskPosition(ctx, b.ID, id, pos))
	}
	tasks, err = q.ListTasks(ctx, b.ID, domain.TaskFilter{})
	require.NoError(t, err)
	var order []int64
	for _, task := range tasks {
		order = append(order, task.ID)
	}
	assert.Equal(t, []int64{ids[2], ids[0], ids[1]}, order)
}

func TestStore_DeleteBoardLeavesNoOrphans(t *testing.T) {
	pool := setupTestDB(t)
	s := NewStore(pool)
	ctx := context.Background()

	owner := createUser(t, s.queries, "owner")
	b := &domain.Board{Name: "Sprint", Code: "NXB0003", OwnerID: owner.ID}
	require.NoError(t, s.queries.CreateBoard(ctx, b))
	_, err := s.queries.AddMember(ctx, b.ID, owner.ID)
	require.NoError(t, err)
	require.NoError(t, s.queries.CreateTask(ctx, &domain.Task{BoardID: b.ID, Name: "t"}))
	require.NoError(t, s.queries.AppendHistory(ctx, &domain.HistoryEntry{BoardID: b.ID, UserID: owner.ID, Action: "Created task 't'"}))

	require.NoError(t, s.InTx(ctx, func(q Querier) error { return q.DeleteBoard(ctx, b.ID) }))

	for _, table := range []string{"tasks", "history", "user_boards"} {
		var n int
		require.NoError(t, pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE board_id = $1`, table), b.ID).Scan(&n))
		assert.Zero(t, n, table)
	}

	err = s.queries.DeleteBoard(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_History(t *testing.T) {
	s := NewStore(setupTestDB(t))
	ctx := context.Background()
	q := s.queries

	owner := createUser(t, q, "owner")
	b := &domain.Board{Name: "Sprint", Code: "NXB0004", OwnerID: owner.ID}
	require.NoError(t, q.CreateBoard(ctx, b))

	first := &domain.HistoryEntry{BoardID: b.ID, UserID: owner.ID, Action: "first"}
	second := &domain.HistoryEntry{BoardID: b.ID, UserID: owner.ID, Action: "second"}
	require.NoError(t, q.AppendHistory(ctx, first))
	require.NoError(t, q.AppendHistory(ctx, second))

	entries, err := q.ListHistory(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Action)
	assert.Equal(t, "owner", entries[0].Username)

	deleted, err := q.DeleteHistory(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, deleted.BoardID)

	_, err = q.DeleteHistory(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
