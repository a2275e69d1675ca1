package ws

import (
	"context"
	"encoding/json"
	"testing"

	"nexusboard/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID int64, queue int) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan []byte, queue),
		rooms:  make(map[string]struct{}),
	}
}

func recv(t *testing.T, c *Client) domain.Event {
	t.Helper()
	select {
	case data := <-c.send:
		var ev domain.Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	default:
		t.Fatal("no message queued")
		return domain.Event{}
	}
}

func TestHub_PublishRoutesByRoom(t *testing.T) {
	h := NewHub()
	a := newTestClient(1, 8)
	b := newTestClient(2, 8)
	dash := newTestClient(3, 8)
	for _, c := range []*Client{a, b, dash} {
		h.Register(c)
	}
	h.Subscribe(a, domain.BoardRoom(10))
	h.Subscribe(b, domain.BoardRoom(20))
	h.Subscribe(dash, domain.DashboardRoom)

	h.Publish(context.Background(), domain.TaskChanged(10))
	h.Publish(context.Background(), domain.BoardsChanged(20))

	assert.Equal(t, domain.TaskChanged(10), recv(t, a))
	assert.Equal(t, domain.BoardsChanged(20), recv(t, dash))
	assert.Empty(t, a.send)
	assert.Empty(t, b.send)
}

func TestHub_FullQueueDropsWithoutBlocking(t *testing.T) {
	h := NewHub()
	slow := newTestClient(1, 1)
	fast := newTestClient(2, 8)
	h.Register(slow)
	h.Register(fast)
	room := domain.BoardRoom(1)
	h.Subscribe(slow, room)
	h.Subscribe(fast, room)

	for i := 0; i < 3; i++ {
		h.Publish(context.Background(), domain.HistoryChanged(1))
	}
	assert.Len(t, slow.send, 1)
	assert.Len(t, fast.send, 3)
}

func TestHub_UnsubscribeAndUnregister(t *testing.T) {
	h := NewHub()
	c := newTestClient(1, 8)
	h.Register(c)
	h.Subscribe(c, domain.BoardRoom(1))
	h.Subscribe(c, domain.DashboardRoom)
	assert.Equal(t, 1, h.RoomSize(domain.BoardRoom(1)))

	h.Unsubscribe(c, domain.BoardRoom(1))
	assert.Equal(t, 0, h.RoomSize(domain.BoardRoom(1)))
	h.Publish(context.Background(), domain.TaskChanged(1))
	assert.Empty(t, c.send)

	h.Unregister(c)
	assert.Equal(t, 0, h.RoomSize(domain.DashboardRoom))
	_, open := <-c.send
	assert.False(t, open)

	// Publishing or subscribing after unregister must not panic.
	h.Publish(context.Background(), domain.BoardsChanged(0))
	h.Subscribe(c, domain.DashboardRoom)
	h.Unregister(c)
	assert.Equal(t, 0, h.RoomSize(domain.DashboardRoom))
}
