package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/doorgames/chess-backend/internal/service"
	"github.com/doorgames/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
	log         *slog.Logger
}

func NewWebSocketController(gameService *service.GameService, log *slog.Logger) *WebSocketController {
	return &WebSocketController{gameService: gameService, log: log}
}

// HandleGame runs the read loop for one game connection. State updates flow
// the other way through the game's connection registry.
func (wsc *WebSocketController) HandleGame(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)
	ctx := context.Background()

	if err := wsc.gameService.RegisterConnection(ctx, gameID, playerID, c); err != nil {
		wsc.log.Warn("register connection failed",
			"game_id", gameID, "player_id", playerID, "error", err)
		wsc.sendError(c, err.Error())
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			wsc.log.Debug("connection closed",
				"game_id", gameID, "player_id", playerID, "error", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(c, "malformed message")
			continue
		}
		if err := wsc.handleMessage(ctx, gameID, playerID, msg); err != nil {
			wsc.sendError(c, err.Error())
		}
	}
}

func (wsc *WebSocketController) handleMessage(ctx context.Context, gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		_, err := wsc.gameService.HandleMove(ctx, gameID, playerID, move.Move)
		return err

	case ws.MessageTypeResign:
		return wsc.gameService.Resign(ctx, gameID, playerID)

	case ws.MessageTypeDrawOffer:
		_, err := wsc.gameService.OfferDraw(ctx, gameID, playerID)
		return err

	case ws.MessageTypeDrawAccept:
		return wsc.gameService.AcceptDraw(ctx, gameID, playerID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking parks a queued player's connection until a match is
// found, then delivers the notification and closes.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := c.Locals("playerID").(string)

	ch := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID)

	// Reads only serve to notice the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case payload, ok := <-ch:
		if !ok {
			return
		}
		if err := c.WriteJSON(ws.Message{
			Type:    ws.MessageTypeMatchFound,
			Payload: json.RawMessage(payload),
		}); err != nil {
			wsc.log.Warn("match notification failed", "player_id", playerID, "error", err)
		}
	case <-closed:
		// Client left while queued; take them out of the pool.
		wsc.gameService.LeaveMatchmaking(playerID)
	}
}

func (wsc *WebSocketController) sendError(c *websocket.Conn, errorMsg string) {
	payload, err := json.Marshal(ws.ErrorPayload{Message: errorMsg})
	if err != nil {
		return
	}
	if err := c.WriteJSON(ws.Message{
		Type:    ws.MessageTypeError,
		Payload: payload,
	}); err != nil {
		wsc.log.Debug("send error failed", "error", err)
	}
}
