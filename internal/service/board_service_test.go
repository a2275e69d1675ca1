package service

import (
	"context"
	"errors"
	"testing"

	"nexusboard/internal/domain"
	"nexusboard/internal/repository"
	"nexusboard/internal/repository/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccess_IsMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	joined := f.user(t, "joined")
	outsider := f.user(t, "outsider")
	b := f.board(t, owner, "Sprint")

	_, err := f.boards.JoinBoard(ctx, joined.ID, b.Code)
	require.NoError(t, err)

	// An owner whose own membership row is gone is still a member.
	err = f.store.InTx(ctx, func(q repository.Querier) error {
		_, err := q.RemoveMember(ctx, b.ID, owner.ID)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.store.BoardRows(b.ID).Members)

	tests := []struct {
		name    string
		userID  int64
		member  bool
		isOwner bool
	}{
		{"owner without row", owner.ID, true, true},
		{"joined user", joined.ID, true, false},
		{"outsider", outsider.ID, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := f.access.IsMember(ctx, b.ID, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.member, ok)

			ok, err = f.access.IsOwner(ctx, b.ID, tt.userID)
			require.NoError(t, err)
			assert.Equal(t, tt.isOwner, ok)

			err = f.access.CheckMember(ctx, tt.userID, b.ID)
			if tt.member {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrForbidden)
			}
		})
	}

	ok, err := f.access.IsMember(ctx, 999, owner.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, f.access.CheckMember(ctx, owner.ID, 999), domain.ErrNotFound)
}

func TestBoardService_CreateBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")

	b, err := f.boards.CreateBoard(ctx, owner.ID, "  Sprint ", "desc")
	require.NoError(t, err)
	assert.Equal(t, "Sprint", b.Name)
	assert.True(t, IsValidBoardCode(b.Code), b.Code)
	assert.Equal(t, memstore.BoardRows{Members: 1, History: 1}, f.store.BoardRows(b.ID))
	assert.Equal(t, []domain.Event{domain.BoardsChanged(b.ID)}, f.events.take())

	_, err = f.boards.CreateBoard(ctx, owner.ID, "   ", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.events.take())
}

func TestBoardService_CreateBoardIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	boom := errors.New("boom")

	for _, op := range []string{"CreateBoard", "AddMember", "AppendHistory"} {
		t.Run(op, func(t *testing.T) {
			f.store.FailNext(op, boom)
			_, err := f.boards.CreateBoard(ctx, owner.ID, "Sprint", "")
			require.ErrorIs(t, err, boom)

			d, err := f.boards.Dashboard(ctx, owner.ID)
			require.NoError(t, err)
			assert.Empty(t, d.Owned)
			assert.Equal(t, memstore.BoardRows{}, f.store.BoardRows(1))
			assert.Empty(t, f.events.take())
		})
	}
}

func TestBoardService_CodeCollisionIsConflict(t *testing.T) {
	store := memstore.New()
	fixed := func() string { return "NXBAAAA" }
	boards := NewBoardService(store, NopNotifier{}, fixed)
	auth := NewAuthService(store, NewPasswordHasher(4))
	ctx := context.Background()

	u, err := auth.Register(ctx, "owner", "owner@example.com", "pw")
	require.NoError(t, err)

	_, err = boards.CreateBoard(ctx, u.ID, "First", "")
	require.NoError(t, err)
	_, err = boards.CreateBoard(ctx, u.ID, "Second", "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	d, err := boards.Dashboard(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, d.Owned, 1)
}

func TestBoardService_JoinBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	bob := f.user(t, "bob")
	b := f.board(t, owner, "Sprint")

	t.Run("unknown code", func(t *testing.T) {
		_, err := f.boards.JoinBoard(ctx, bob.ID, "NXBZZZZ")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 1, f.store.BoardRows(b.ID).Members)
		assert.Empty(t, f.events.take())
	})

	t.Run("first join", func(t *testing.T) {
		res, err := f.boards.JoinBoard(ctx, bob.ID, " "+b.Code+" ")
		require.NoError(t, err)
		assert.False(t, res.AlreadyMember)
		assert.Equal(t, b.ID, res.Board.ID)
		assert.Equal(t, 2, f.store.BoardRows(b.ID).Members)
		assert.ElementsMatch(t, []domain.Event{
			domain.MembersChanged(b.ID), domain.HistoryChanged(b.ID), domain.BoardsChanged(b.ID),
		}, f.events.take())
	})

	t.Run("second join is idempotent", func(t *testing.T) {
		res, err := f.boards.JoinBoard(ctx, bob.ID, b.Code)
		require.NoError(t, err)
		assert.True(t, res.AlreadyMember)
		assert.Equal(t, 2, f.store.BoardRows(b.ID).Members)
		assert.Empty(t, f.events.take())
	})

	t.Run("owner join is already member", func(t *testing.T) {
		res, err := f.boards.JoinBoard(ctx, owner.ID, b.Code)
		require.NoError(t, err)
		assert.True(t, res.AlreadyMember)
	})

	d, err := f.boards.Dashboard(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, d.Owned)
	require.Len(t, d.Joined, 1)
	assert.Equal(t, "owner", d.Joined[0].OwnerName)
}

func TestBoardService_NonOwnerIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	b := f.board(t, owner, "Sprint")
	for _, u := range []*domain.User{bob, carol} {
		_, err := f.boards.JoinBoard(ctx, u.ID, b.Code)
		require.NoError(t, err)
	}
	f.events.take()
	before := f.store.BoardRows(b.ID)

	_, err := f.boards.GetBoardForEdit(ctx, bob.ID, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.boards.UpdateBoard(ctx, bob.ID, b.ID, "Hijacked", "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.boards.DeleteBoard(ctx, bob.ID, b.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.boards.InviteMember(ctx, bob.ID, b.ID, "outsider")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.boards.RemoveMember(ctx, bob.ID, b.ID, carol.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	view, err := f.boards.BoardView(ctx, owner.ID, b.ID, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Sprint", view.Board.Name)
	assert.Len(t, view.Members, 3)
	assert.Equal(t, before, f.store.BoardRows(b.ID))
	assert.Empty(t, f.events.take())
}

func TestBoardService_OwnerOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	bob := f.user(t, "bob")
	b := f.board(t, owner, "Sprint")

	res, err := f.boards.InviteMember(ctx, owner.ID, b.ID, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, res.AlreadyMember)

	res, err = f.boards.InviteMember(ctx, owner.ID, b.ID, "bob")
	require.NoError(t, err)
	assert.True(t, res.AlreadyMember)

	_, err = f.boards.InviteMember(ctx, owner.ID, b.ID, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.boards.RemoveMember(ctx, owner.ID, b.ID, owner.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.boards.RemoveMember(ctx, owner.ID, b.ID, bob.ID))
	ok, err := f.access.IsMember(ctx, b.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	err = f.boards.RemoveMember(ctx, owner.ID, b.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.boards.UpdateBoard(ctx, owner.ID, b.ID, "Sprint 2", "next"))
	got, err := f.boards.GetBoardForEdit(ctx, owner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sprint 2", got.Name)
	assert.Equal(t, "next", got.Description)

	err = f.boards.UpdateBoard(ctx, owner.ID, b.ID, " ", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBoardService_DeleteBoardLeavesNoOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	bob := f.user(t, "bob")
	b := f.board(t, owner, "Sprint")
	other := f.board(t, owner, "Other")

	_, err := f.boards.JoinBoard(ctx, bob.ID, b.Code)
	require.NoError(t, err)
	f.task(t, owner.ID, b.ID, "one")
	f.task(t, bob.ID, b.ID, "two")
	f.task(t, owner.ID, other.ID, "keep")
	require.NotZero(t, f.store.BoardRows(b.ID).History)

	require.NoError(t, f.boards.DeleteBoard(ctx, owner.ID, b.ID))
	assert.Equal(t, memstore.BoardRows{}, f.store.BoardRows(b.ID))
	assert.Equal(t, 1, f.store.BoardRows(other.ID).Tasks)
	assert.Contains(t, f.events.take(), domain.BoardsChanged(b.ID))

	_, err = f.boards.BoardView(ctx, owner.ID, b.ID, domain.TaskFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = f.boards.DeleteBoard(ctx, owner.ID, b.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
