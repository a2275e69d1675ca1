package ws

import (
	"context"
	"encoding/json"
	"sync"

	"nexusboard/internal/domain"
	"nexusboard/internal/logger"
)

// Hub tracks connected clients and the rooms they subscribed to. Rooms are
// "dashboard" and "board:<id>".
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
	WSConnections.Inc()
	logger.Debug("ws client registered", "client_id", c.ID, "user_id", c.UserID)
}

// Unregister removes the client from every room and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	delete(h.clients, c.ID)
	for room := range c.rooms {
		h.leave(c, room)
	}
	close(c.send)
	WSConnections.Dec()
	logger.Debug("ws client unregistered", "client_id", c.ID, "user_id", c.UserID)
}

func (h *Hub) Subscribe(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	members := h.rooms[room]
	if members == nil {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[c.ID] = c
	c.rooms[room] = struct{}{}
}

func (h *Hub) Unsubscribe(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leave(c, room)
}

func (h *Hub) leave(c *Client, room string) {
	delete(c.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Publish delivers ev to the subscribers of its room.
func (h *Hub) Publish(_ context.Context, ev domain.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws marshal event", "error", err)
		return
	}
	h.Broadcast(ev.Room(), string(ev.Type), data)
}

// Broadcast never blocks: a client whose queue is full misses the message.
func (h *Hub) Broadcast(room, kind string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.rooms[room] {
		select {
		case c.send <- data:
			WSDelivered.WithLabelValues(kind).Inc()
		default:
			WSDropped.WithLabelValues(kind).Inc()
			logger.Warn("ws send queue full, dropping", "client_id", c.ID, "user_id", c.UserID, "room", room)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}

// send queues a direct reply to one client.
func (h *Hub) send(c *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		WSDropped.WithLabelValues("reply").Inc()
	}
}
