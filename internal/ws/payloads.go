package ws

// client → server
type Inbound struct {
	Type    string `json:"type"`
	BoardID int64  `json:"board_id,omitempty"`
	Channel string `json:"channel,omitempty"` // "dashboard"
}

// server → client
type AckPayload struct {
	Type string `json:"type"`
	Room string `json:"room,omitempty"`
}

type ErrorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
