package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nexusboard/internal/domain"
	"nexusboard/internal/repository"
)

type TaskService struct {
	store  Store
	events Notifier
}

func NewTaskService(store Store, events Notifier) *TaskService {
	return &TaskService{store: store, events: events}
}

// TaskInput is an already parsed task form.
type TaskInput struct {
	Name        string
	Description string
	Comments    string
	AssignedTo  *int64
	DueDate     *time.Time
	Progress    int
}

func (in *TaskInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.Validationf("Task name required")
	}
	if in.Progress < domain.MinProgress || in.Progress > domain.MaxProgress {
		return domain.Validationf("Progress must be between %d and %d", domain.MinProgress, domain.MaxProgress)
	}
	return nil
}

func checkAssignee(ctx context.Context, q repository.Querier, boardID int64, assignee *int64) error {
	if assignee == nil {
		return nil
	}
	ok, err := q.IsMember(ctx, boardID, *assignee)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Validationf("Assignee must be a member of the board")
	}
	return nil
}

func taskEvents(boardID int64) []domain.Event {
	return []domain.Event{domain.TaskChanged(boardID), domain.HistoryChanged(boardID)}
}

func (s *TaskService) AddTask(ctx context.Context, userID, boardID int64, in TaskInput) (*domain.Task, error) {
	t := &domain.Task{BoardID: boardID}
	err := mutate(ctx, s.store, s.events, func(q repository.Querier) ([]domain.Event, error) {
		if _, err := requireMember(ctx, q, boardID, userID); err != nil {
			return nil, err
		}
		if err := in.normalize(); err != nil {
			return nil, err
		}
		if err := checkAssignee(ctx, q, boardID, in.AssignedTo); err != nil {
			return nil, err
		}
		t.Name = in.Name
		t.Description = in.Description
		t.Comments = in.Comments
		t.AssignedTo = in.AssignedTo
		t.DueDate = in.DueDate
		t.Progress = in.Progress
		if err := q.CreateTask(ctx, t); err != nil {
			return nil, err
		}
		if err := appendHistory(ctx, q, boardID, userID, fmt.Sprintf("Created task '%s'", t.Name)); err != nil {
			return nil, err
		}
		return taskEvents(boardID), nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// TaskEdit is what the edit form needs: the task and who it can be assigned to.
type TaskEdit struct {
	Task    *domain.Task     `json:"task"`
	Members []*domain.Member `json:"members"`
}

func (s *TaskService) GetTaskForEdit(ctx context.Context, userID, taskID int64) (*TaskEdit, error) {
	e := &TaskEdit{}
	err := s.store.View(ctx, func(q repository.Querier) error {
		t, err := q.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if _, err := requireMember(ctx, q, t.BoardID, userID); err != nil {
			return err
		}
		e.Task = t
		e.Members, err = q.ListMembers(ctx, t.BoardID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID int64, in TaskInput) (*domain.Task, error) {
	var t *domain.Task
	err := mutate(ctx, s.store, s.events, func(q repository.Querier) ([]domain.Event, error) {
		var err error
		if t, err = q.GetTask(ctx, taskID); err != nil {
			return nil, err
		}
		if _, err := requireMember(ctx, q, t.BoardID, userID); err != nil {
			return nil, err
		}
		if err := in.normalize(); err != nil {
			return nil, err
		}
		if err := checkAssignee(ctx, q, t.BoardID, in.AssignedTo); err != nil {
			return nil, err
		}
		t.Name = in.Name
		t.Description = in.Description
		t.Comments = in.Comments
		t.AssignedTo = in.AssignedTo
		t.DueDate = in.DueDate
		t.Progress = in.Progress
		if err := q.UpdateTask(ctx, t); err != nil {
			return nil, err
		}
		if err := appendHistory(ctx, q, t.BoardID, userID, fmt.Sprintf("Updated task '%s'", t.Name)); err != nil {
			return nil, err
		}
		return taskEvents(t.BoardID), nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTask returns the id of the board the task belonged to.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID int64) (int64, error) {
	var boardID int64
	err := mutate(ctx, s.store, s.events, func(q repository.Querier) ([]domain.Event, error) {
		t, err := q.GetTask(ctx, taskID)
		if err != nil {
			return nil, err
		}
		boardID = t.BoardID
		if _, err := requireMember(ctx, q, t.BoardID, userID); err != nil {
			return nil, err
		}
		if err := q.DeleteTask(ctx, taskID); err != nil {
			return nil, err
		}
		if err := appendHistory(ctx, q, t.BoardID, userID, fmt.Sprintf("Deleted task '%s'", t.Name)); err != nil {
			return nil, err
		}
		return taskEvents(t.BoardID), nil
	})
	if err != nil {
		return 0, err
	}
	return boardID, nil
}

// Reorder sets each task's position to its index in taskIDs. Ids are not
// checked against the board up front; the update itself is scoped to
// boardID, so a foreign id changes nothing.
func (s *TaskService) Reorder(ctx context.Context, userID, boardID int64, taskIDs []int64) error {
	if len(taskIDs) == 0 {
		return domain.Validationf("Task order must not be empty")
	}
	return mutate(ctx, s.store, s.events, func(q repository.Querier) ([]domain.Event, error) {
		if _, err := requireMember(ctx, q, boardID, userID); err != nil {
			return nil, err
		}
		for i, id := range taskIDs {
			if err := q.SetTaskPosition(ctx, boardID, id, i); err != nil {
				return nil, err
			}
		}
		if err := appendHistory(ctx, q, boardID, userID, "Reordered tasks"); err != nil {
			return nil, err
		}
		return taskEvents(boardID), nil
	})
}
