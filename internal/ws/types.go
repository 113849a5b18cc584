package ws

import (
	"encoding/json"
)

// MessageType discriminates the WebSocket messages exchanged with clients.
type MessageType string

const (
	MessageTypeMove       MessageType = "move"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeDrawOffer  MessageType = "drawOffer"
	MessageTypeDrawAccept MessageType = "drawAccept"
	MessageTypeResign     MessageType = "resign"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message is the envelope for every WebSocket frame.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MovePayload is the client request to play a move in coordinate notation.
type MovePayload struct {
	Move string `json:"move"`
}

// MatchFoundPayload tells a queued player which game they were placed in.
type MatchFoundPayload struct {
	GameID string `json:"gameId"`
	Color  string `json:"color"`
}

// ErrorPayload carries a human-readable failure message.
type ErrorPayload struct {
	Message string `json:"message"`
}
