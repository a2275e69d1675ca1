package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"nexusboard/internal/domain"
	"nexusboard/internal/repository"
)

// queries operates on one state snapshot. The owning Store's mutex is held
// for the whole lifetime of a queries value.
type queries struct {
	st    *state
	store *Store
}

var _ repository.Querier = (*queries)(nil)

func (q *queries) failed(op string) error {
	if err, ok := q.store.fail[op]; ok {
		delete(q.store.fail, op)
		return err
	}
	return nil
}

func (q *queries) CreateUser(ctx context.Context, u *domain.User) error {
	if err := q.failed("CreateUser"); err != nil {
		return err
	}
	for _, existing := range q.st.users {
		if existing.Username == u.Username {
			return domain.Conflict("username already taken")
		}
		if existing.Email == u.Email {
			return domain.Conflict("email already registered")
		}
	}
	u.ID = q.st.next("users")
	u.CreatedAt = time.Now()
	q.st.users[u.ID] = *u
	return nil
}

func (q *queries) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := q.failed("GetUserByID"); err != nil {
		return nil, err
	}
	u, ok := q.st.users[id]
	if !ok {
		return nil, domain.NotFound("user")
	}
	return &u, nil
}

func (q *queries) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := q.failed("GetUserByEmail"); err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	for _, u := range q.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.NotFound("user")
}

func (q *queries) FindUser(ctx context.Context, usernameOrEmail string) (*domain.User, error) {
	if err := q.failed("FindUser"); err != nil {
		return nil, err
	}
	var found *domain.User
	lower := strings.ToLower(usernameOrEmail)
	for _, u := range q.st.users {
		if u.Username == usernameOrEmail || u.Email == lower {
			if found == nil || u.ID < found.ID {
				u := u
				found = &u
			}
		}
	}
	if found == nil {
		return nil, domain.NotFound("user")
	}
	return found, nil
}

func (q *queries) CreateBoard(ctx context.Context, b *domain.Board) error {
	if err := q.failed("CreateBoard"); err != nil {
		return err
	}
	owner, ok := q.st.users[b.OwnerID]
	if !ok {
		return domain.NotFound("user")
	}
	for _, existing := range q.st.boards {
		if existing.Code == b.Code {
			return domain.Conflict("board code already in use, please try again")
		}
	}
	b.ID = q.st.next("boards")
	b.CreatedAt = time.Now()
	b.OwnerName = owner.Username
	q.st.boards[b.ID] = *b
	return nil
}

func (q *queries) board(id int64) (*domain.Board, error) {
	b, ok := q.st.boards[id]
	if !ok {
		return nil, domain.NotFound("board")
	}
	b.OwnerName = q.st.users[b.OwnerID].Username
	return &b, nil
}

func (q *queries) GetBoard(ctx context.Context, id int64) (*domain.Board, error) {
	if err := q.failed("GetBoard"); err != nil {
		return nil, err
	}
	return q.board(id)
}

func (q *queries) GetBoardByCode(ctx context.Context, code string) (*domain.Board, error) {
	if err := q.failed("GetBoardByCode"); err != nil {
		return nil, err
	}
	for id, b := range q.st.boards {
		if b.Code == code {
			return q.board(id)
		}
	}
	return nil, domain.NotFound("board")
}

func (q *queries) UpdateBoard(ctx context.Context, id int64, name, description string) error {
	if err := q.failed("UpdateBoard"); err != nil {
		return err
	}
	b, ok := q.st.boards[id]
	if !ok {
		return domain.NotFound("board")
	}
	b.Name = name
	b.Description = description
	q.st.boards[id] = b
	return nil
}

func (q *queries) DeleteBoard(ctx context.Context, id int64) error {
	if err := q.failed("DeleteBoard"); err != nil {
		return err
	}
	if _, ok := q.st.boards[id]; !ok {
		return domain.NotFound("board")
	}
	for hid, h := range q.st.history {
		if h.BoardID == id {
			delete(q.st.history, hid)
		}
	}
	for tid, t := range q.st.tasks {
		if t.BoardID == id {
			delete(q.st.tasks, tid)
		}
	}
	for k := range q.st.members {
		if k.boardID == id {
			delete(q.st.members, k)
		}
	}
	delete(q.st.boards, id)
	return nil
}

func (q *queries) ListOwnedBoards(ctx context.Context, userID int64) ([]*domain.Board, error) {
	if err := q.failed("ListOwnedBoards"); err != nil {
		return nil, err
	}
	var out []*domain.Board
	for id, b := range q.st.boards {
		if b.OwnerID == userID {
			board, _ := q.board(id)
			out = append(out, board)
		}
	}
	sortBoards(out)
	return out, nil
}

func (q *queries) ListJoinedBoards(ctx context.Context, userID int64) ([]*domain.Board, error) {
	if err := q.failed("ListJoinedBoards"); err != nil {
		return nil, err
	}
	var out []*domain.Board
	for k := range q.st.members {
		if k.userID != userID {
			continue
		}
		b, err := q.board(k.boardID)
		if err != nil || b.OwnerID == userID {
			continue
		}
		out = append(out, b)
	}
	sortBoards(out)
	return out, nil
}

func sortBoards(boards []*domain.Board) {
	sort.Slice(boards, func(i, j int) bool {
		if !boards[i].CreatedAt.Equal(boards[j].CreatedAt) {
			return boards[i].CreatedAt.After(boards[j].CreatedAt)
		}
		return boards[i].ID > boards[j].ID
	})
}

func (q *queries) AddMember(ctx context.Context, boardID, userID int64) (bool, error) {
	if err := q.failed("AddMember"); err != nil {
		return false, err
	}
	if _, ok := q.st.boards[boardID]; !ok {
		return false, domain.NotFound("board")
	}
	if _, ok := q.st.users[userID]; !ok {
		return false, domain.NotFound("user")
	}
	key := memberKey{boardID: boardID, userID: userID}
	if _, ok := q.st.members[key]; ok {
		return false, nil
	}
	q.st.members[key] = time.Now()
	return true, nil
}

func (q *queries) RemoveMember(ctx context.Context, boardID, userID int64) (bool, error) {
	if err := q.failed("RemoveMember"); err != nil {
		return false, err
	}
	key := memberKey{boardID: boardID, userID: userID}
	if _, ok := q.st.members[key]; !ok {
		return false, nil
	}
	delete(q.st.members, key)
	return true, nil
}

func (q *queries) IsMember(ctx context.Context, boardID, userID int64) (bool, error) {
	if err := q.failed("IsMember"); err != nil {
		return false, err
	}
	if b, ok := q.st.boards[boardID]; ok && b.OwnerID == userID {
		return true, nil
	}
	_, ok := q.st.members[memberKey{boardID: boardID, userID: userID}]
	return ok, nil
}

func (q *queries) ListMembers(ctx context.Context, boardID int64) ([]*domain.Member, error) {
	if err := q.failed("ListMembers"); err != nil {
		return nil, err
	}
	ids := make(map[int64]bool)
	if b, ok := q.st.boards[boardID]; ok {
		ids[b.OwnerID] = true
	}
	for k := range q.st.members {
		if k.boardID == boardID {
			ids[k.userID] = true
		}
	}
	var out []*domain.Member
	for id := range ids {
		if u, ok := q.st.users[id]; ok {
			out = append(out, &domain.Member{UserID: u.ID, Username: u.Username})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (q *queries) CreateTask(ctx context.Context, t *domain.Task) error {
	if err := q.failed("CreateTask"); err != nil {
		return err
	}
	if _, ok := q.st.boards[t.BoardID]; !ok {
		return domain.NotFound("board")
	}
	if t.AssignedTo != nil {
		if _, ok := q.st.users[*t.AssignedTo]; !ok {
			return domain.NotFound("user")
		}
	}
	pos := 0
	for _, existing := range q.st.tasks {
		if existing.BoardID == t.BoardID && existing.Position >= pos {
			pos = existing.Position + 1
		}
	}
	t.ID = q.st.next("tasks")
	t.Position = pos
	t.CreatedAt = time.Now()
	q.st.tasks[t.ID] = copyTask(*t)
	return nil
}

func (q *queries) task(t domain.Task) *domain.Task {
	out := copyTask(t)
	out.AssignedName = ""
	if out.AssignedTo != nil {
		out.AssignedName = q.st.users[*out.AssignedTo].Username
	}
	return &out
}

func (q *queries) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if err := q.failed("GetTask"); err != nil {
		return nil, err
	}
	t, ok := q.st.tasks[id]
	if !ok {
		return nil, domain.NotFound("task")
	}
	return q.task(t), nil
}

func (q *queries) UpdateTask(ctx context.Context, t *domain.Task) error {
	if err := q.failed("UpdateTask"); err != nil {
		return err
	}
	existing, ok := q.st.tasks[t.ID]
	if !ok {
		return domain.NotFound("task")
	}
	if t.AssignedTo != nil {
		if _, ok := q.st.users[*t.AssignedTo]; !ok {
			return domain.NotFound("user")
		}
	}
	existing.Name = t.Name
	existing.Description = t.Description
	existing.AssignedTo = t.AssignedTo
	existing.Comments = t.Comments
	existing.DueDate = t.DueDate
	existing.Progress = t.Progress
	q.st.tasks[t.ID] = copyTask(existing)
	return nil
}

func (q *queries) DeleteTask(ctx context.Context, id int64) error {
	if err := q.failed("DeleteTask"); err != nil {
		return err
	}
	if _, ok := q.st.tasks[id]; !ok {
		return domain.NotFound("task")
	}
	delete(q.st.tasks, id)
	return nil
}

func (q *queries) ListTasks(ctx context.Context, boardID int64, f domain.TaskFilter) ([]*domain.Task, error) {
	if err := q.failed("ListTasks"); err != nil {
		return nil, err
	}
	search := strings.ToLower(f.Search)
	var out []*domain.Task
	for _, t := range q.st.tasks {
		if t.BoardID != boardID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Name), search) {
			continue
		}
		if f.AssigneeID != nil && (t.AssignedTo == nil || *t.AssignedTo != *f.AssigneeID) {
			continue
		}
		out = append(out, q.task(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (q *queries) SetTaskPosition(ctx context.Context, boardID, taskID int64, position int) error {
	if err := q.failed("SetTaskPosition"); err != nil {
		return err
	}
	t, ok := q.st.tasks[taskID]
	if !ok || t.BoardID != boardID {
		return nil
	}
	t.Position = position
	q.st.tasks[taskID] = t
	return nil
}

func (q *queries) AppendHistory(ctx context.Context, e *domain.HistoryEntry) error {
	if err := q.failed("AppendHistory"); err != nil {
		return err
	}
	if _, ok := q.st.boards[e.BoardID]; !ok {
		return domain.NotFound("board")
	}
	e.ID = q.st.next("history")
	e.CreatedAt = time.Now()
	q.st.history[e.ID] = *e
	return nil
}

func (q *queries) ListHistory(ctx context.Context, boardID int64) ([]*domain.HistoryEntry, error) {
	if err := q.failed("ListHistory"); err != nil {
		return nil, err
	}
	var out []*domain.HistoryEntry
	for _, h := range q.st.history {
		if h.BoardID != boardID {
			continue
		}
		h.Username = q.st.users[h.UserID].Username
		out = append(out, &h)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (q *queries) DeleteHistory(ctx context.Context, id int64) (*domain.HistoryEntry, error) {
	if err := q.failed("DeleteHistory"); err != nil {
		return nil, err
	}
	h, ok := q.st.history[id]
	if !ok {
		return nil, domain.NotFound("history entry")
	}
	delete(q.st.history, id)
	return &h, nil
}
