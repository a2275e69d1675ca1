package service

import (
	"context"
	"fmt"
	"strings"

	"nexusboard/internal/domain"
	"nexusboard/internal/repository"
)

type BoardService struct {
	store   Store
	events  Notifier
	newCode func() string
}

func NewBoardService(store Store, events Notifier, newCode func() string) *BoardService {
	return &BoardService{store: store, events: events, newCode: newCode}
}

type Dashboard struct {
	Owned  []*domain.Board `json:"owned"`
	Joined []*domain.Board `json:"joined"`
}

type BoardView struct {
	Board   *domain.Board     `json:"board"`
	Members []*domain.Member  `json:"members"`
	Tasks   []*domain.Task    `json:"tasks"`
	IsOwner bool              `json:"is_owner"`
	Filter  domain.TaskFilter `json:"-"`
}

type JoinResult struct {
	Board         *domain.Board `json:"board"`
	AlreadyMember bool          `json:"already_member"`
}

func (s *BoardService) Dashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	d := &Dashboard{}
	err := s.store.View(ctx, func(q repository.Querier) error {
		var err error
		if d.Owned, err = q.ListOwnedBoards(ctx, userID); err != nil {
			return err
		}
		d.Joined, err = q.ListJoinedBoards(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CreateBoard inserts the board and the owner's membership row together.
func (s *BoardService) CreateBoard(ctx context.Context, userID int64, name, description string) (*domain.Board, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("Board name required")
	}

	b := &domain.Board{Name: name, Description: strings.TrimSpace(description), Code: s.newCode(), OwnerID: userID}
	err := mutate(ctx, s.store, s.events, func(q repository.Querier) ([]domain.Event, error) {
		if err := q.CreateBoard(ctx, b); err != nil {
			return nil, err
		}
		if _, err := q.AddMember(ctx, b.ID, userID); err != nil {
			return nil, err
		}
		if err := appendHistory(ctx, q, b.ID, userID, fmt.Sprintf("Created board '%s'", b.Name)); err != nil {
			return nil, err
		}
		return []domain.Event{domain.BoardsChanged(b.ID)}, nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// JoinBoard is idempotent: joining twice reports AlreadyMember and writes
// nothing.
func (s *BoardService) JoinBoard(ctx context.Context, userID int64, code string) (*JoinResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.Validationf("Board code required")
	}

	res := &JoinResult{}
	err := mutate(ctx, s.store, s.events, func(q repository.Querier) ([]domain.Event, error) {
		b, err := q.GetBoardByCode(ctx, code)
		if err != nil {
			return nil, invalidCode(err)
		}
		res.Board = b
		member, err := q.IsMember(ctx, b.ID, userID)
		if err != nil {
			return nil, err
		}
		if member {
			res.AlreadyMember = true
			return nil, nil
		}
		if _, err := q.AddMember(ctx, b.ID, userID); err != nil {
			return nil, err
		}
		if err := appendHistory(ctx, q, b.ID, userID, "Joined the board"); err != nil {
			return nil, err
		}
		return []domain.Event{
			domain.MembersChanged(b.ID),
			domain.HistoryChanged(b.ID),
			domain.BoardsChanged(b.ID),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func invalidCode(err error) error {
	if domain.IsRejection(err) {
		return &domain.Error{Kind: domain.ErrNotFound, Message: "Invalid board code"}
	}
	return err
}

func (s *BoardService) BoardView(ctx context.Context, userID, boardID int64, filter domain.TaskFilter) (*BoardView, error) {
	v := &BoardView{Filter: filter}
	err := s.store.View(ctx, func(q repository.Querier) error {
		b, err := requireMember(ctx, q, boardID, userID)
		if err != nil {
			return err
		}
		v.Board = b
		v.IsOwner = b.OwnerID == userID
		if v.Members, err = q.ListMembers(ctx, boardID); err != nil {
			return err
		}
		v.Tasks, err = q.ListTasks(ctx, boardID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *BoardService) GetBoardForEdit(ctx context.Context, userID, boardID int64) (*domain.Board, error) {
	var b *domain.Board
	err := s.store.View(ctx, func(q repository.Querier) error {
		var err error
		b, err = requireOwner(ctx, q, boardID, userID, "Only owner can edit board")
		return err
	})
	return b, err
}

func (s *BoardService) UpdateBoard(ctx context.Context, userID, boardID int64, name, description string) error {
	name = strings.TrimSpace(name)
	return mutate(ctx, s.store, s.events, func(q repository.Querier) ([]domain.Event, error) {
		if _, err := requireOwner(ctx, q, boardID, userID, "Only owner can edit board"); err != nil {
			return nil, err
		}
		if name == "" {
			return nil, domain.Validationf("Board name required")
		}
		if err := q.UpdateBoard(ctx, boardID, name, strings.TrimSpace(description)); err != nil {
			return nil, err
		}
		if err := appendHistory(ctx, q, boardID, userID, fmt.Sprintf("Updated board '%s'", name)); err != nil {
			return nil, err
		}
		return []domain.Event{domain.HistoryChanged(boardID), domain.BoardsChanged(boardID)}, nil
	})
}

// DeleteBoard removes the board with its tasks, history and memberships.
func (s *BoardService) DeleteBoard(ctx context.Context, userID, boardID int64) error {
	return mutate(ctx, s.store, s.events, func(q repository.Querier) ([]domain.Event, error) {
		if _, err := requireOwner(ctx, q, boardID, userID, "Only owner can delete"); err != nil {
			return nil, err
		}
		if err := q.DeleteBoard(ctx, boardID); err != nil {
			return nil, err
		}
		return []domain.Event{domain.TaskChanged(boardID), domain.BoardsChanged(boardID)}, nil
	})
}

// InviteMember adds the user named by username or email. Inviting an
// existing member reports AlreadyMember.
func (s *BoardService) InviteMember(ctx context.Context, userID, boardID int64, login string) (*JoinResult, error) {
	login = strings.TrimSpace(login)
	res := &JoinResult{}
	err := mutate(ctx, s.store, s.events, func(q repository.Querier) ([]domain.Event, error) {
		b, err := requireOwner(ctx, q, boardID, userID, "Only owner can invite members")
		if err != nil {
			return nil, err
		}
		res.Board = b
		if login == "" {
			return nil, domain.Validationf("Username or email required")
		}
		invitee, err := q.FindUser(ctx, login)
		if err != nil {
			return nil, err
		}
		member, err := q.IsMember(ctx, boardID, invitee.ID)
		if err != nil {
			return nil, err
		}
		if member {
			res.AlreadyMember = true
			return nil, nil
		}
		if _, err := q.AddMember(ctx, boardID, invitee.ID); err != nil {
			return nil, err
		}
		if err := appendHistory(ctx, q, boardID, userID, fmt.Sprintf("Invited %s", invitee.Username)); err != nil {
			return nil, err
		}
		return []domain.Event{
			domain.MembersChanged(boardID),
			domain.HistoryChanged(boardID),
			domain.BoardsChanged(boardID),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RemoveMember deletes a membership row. The owner cannot remove themselves.
func (s *BoardService) RemoveMember(ctx context.Context, userID, boardID, memberID int64) error {
	return mutate(ctx, s.store, s.events, func(q repository.Querier) ([]domain.Event, error) {
		if _, err := requireOwner(ctx, q, boardID, userID, "Only owner can remove members"); err != nil {
			return nil, err
		}
		if memberID == userID {
			return nil, domain.Forbidden("Owner cannot remove themselves")
		}
		member, err := q.GetUserByID(ctx, memberID)
		if err != nil {
			return nil, err
		}
		removed, err := q.RemoveMember(ctx, boardID, memberID)
		if err != nil {
			return nil, err
		}
		if !removed {
			return nil, domain.NotFound("member")
		}
		if err := appendHistory(ctx, q, boardID, userID, fmt.Sprintf("Removed %s", member.Username)); err != nil {
			return nil, err
		}
		return []domain.Event{
			domain.MembersChanged(boardID),
			domain.HistoryChanged(boardID),
			domain.BoardsChanged(boardID),
		}, nil
	})
}
