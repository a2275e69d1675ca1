package domain

import "strconv"

type EventType string

const (
	EventTaskChanged    EventType = "task_changed"
	EventMembersChanged EventType = "members_changed"
	EventHistoryChanged EventType = "history_changed"
	EventBoardsChanged  EventType = "boards_changed"
)

// DashboardRoom is the unscoped channel for board-list changes.
const DashboardRoom = "dashboard"

// BoardRoom returns the channel name for a single board.
func BoardRoom(boardID int64) string {
	return "board:" + strconv.FormatInt(boardID, 10)
}

// Event is a thin invalidation signal: it names what changed, never the data.
type Event struct {
	Type    EventType `json:"type"`
	BoardID int64     `json:"board_id,omitempty"`
}

// Room is the channel the event is delivered on.
func (e Event) Room() string {
	if e.Type == EventBoardsChanged {
		return DashboardRoom
	}
	return BoardRoom(e.BoardID)
}

func TaskChanged(boardID int64) Event    { return Event{Type: EventTaskChanged, BoardID: boardID} }
func MembersChanged(boardID int64) Event { return Event{Type: EventMembersChanged, BoardID: boardID} }
func HistoryChanged(boardID int64) Event { return Event{Type: EventHistoryChanged, BoardID: boardID} }
func BoardsChanged(boardID int64) Event  { return Event{Type: EventBoardsChanged, BoardID: boardID} }
