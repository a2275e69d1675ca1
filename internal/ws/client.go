package ws

import (
	"context"
	"encoding/json"
	"time"

	"nexusboard/internal/domain"
	"nexusboard/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendQueueSize  = 64
)

// MembershipChecker decides whether a user may subscribe to a board room.
type MembershipChecker interface {
	CheckMember(ctx context.Context, userID, boardID int64) error
}

type Client struct {
	ID     string
	UserID int64

	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	access MembershipChecker

	// guarded by hub.mu
	rooms map[string]struct{}
}

func NewClient(userID int64, conn *websocket.Conn, hub *Hub, access MembershipChecker) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		hub:    hub,
		access: access,
		rooms:  make(map[string]struct{}),
	}
}

// Run registers the client and blocks until the connection is closed.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	go c.writePump()

	c.reply(AckPayload{Type: MsgReady})
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "client_id", c.ID, "error", err)
			}
			return
		}
		c.handleMessage(ctx, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "client_id", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		c.replyError("malformed message")
		return
	}

	switch in.Type {
	case MsgPing:
		c.reply(AckPayload{Type: MsgPong})
	case MsgSubscribe:
		room, err := c.resolveRoom(ctx, in, true)
		if err != nil {
			c.replyError(err.Error())
			return
		}
		c.hub.Subscribe(c, room)
		c.reply(AckPayload{Type: MsgSubscribed, Room: room})
	case MsgUnsubscribe:
		room, err := c.resolveRoom(ctx, in, false)
		if err != nil {
			c.replyError(err.Error())
			return
		}
		c.hub.Unsubscribe(c, room)
		c.reply(AckPayload{Type: MsgUnsubscribed, Room: room})
	default:
		c.replyError("unknown message type")
	}
}

// resolveRoom maps a message to its room name. Subscribing to a board
// requires membership; the dashboard only requires a connection.
func (c *Client) resolveRoom(ctx context.Context, in Inbound, checkAccess bool) (string, error) {
	if in.Channel == domain.DashboardRoom {
		return domain.DashboardRoom, nil
	}
	if in.Channel != "" || in.BoardID <= 0 {
		return "", domain.Validationf("board_id or channel required")
	}
	if checkAccess {
		if err := c.access.CheckMember(ctx, c.UserID, in.BoardID); err != nil {
			if !domain.IsRejection(err) {
				logger.Error("ws membership check", "user_id", c.UserID, "board_id", in.BoardID, "error", err)
				return "", domain.Validationf("subscription failed")
			}
			return "", err
		}
	}
	return domain.BoardRoom(in.BoardID), nil
}

func (c *Client) reply(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.hub.send(c, data)
}

func (c *Client) replyError(msg string) {
	c.reply(ErrorPayload{Type: MsgError, Message: msg})
}
