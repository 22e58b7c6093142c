// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pokerhall/pokerhall/internal/auth"
	"github.com/pokerhall/pokerhall/internal/database"
	"github.com/pokerhall/pokerhall/internal/game"
	"github.com/pokerhall/pokerhall/internal/room"
)

// wsRequest is the inbound message contract: every message carries the
// target room and the sender's access token.
type wsRequest struct {
	Type         string `json:"type"` // "join-game" | "action"
	RoomID       int    `json:"roomId"`
	AccessToken  string `json:"access_token"`
	PlayerAction string `json:"player_action,omitempty"`
	Size         int    `json:"size,omitempty"`
}

var playerActions = map[string]game.Action{
	"check": game.ActionCheck,
	"call":  game.ActionCall,
	"raise": game.ActionRaise,
	"allin": game.ActionAllIn,
	"fold":  game.ActionFold,
}

// GameWSHandler upgrades the connection and speaks the table protocol:
// a join-game message seats the player (chips loaded from
// persistence), action messages are queued to the room's actor, and
// everything the table emits is pumped back over the socket.
func GameWSHandler(logger *logrus.Logger, reg *room.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"game"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		logger.Infof("WebSocket connection established from %s", r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// The seat's outbound channel. The room actor fills it, the
		// writer goroutine drains it; the engine never blocks on it.
		out := make(chan []byte, 64)
		go writeOutbound(ctx, c, out, logger)

		var joined *room.Room
		var playerID uuid.UUID

		readGameMessages(ctx, c, reg, out, &joined, &playerID, logger)

		if joined != nil {
			joined.Leave(playerID)
			logger.Infof("Player %s left room %d on disconnect", playerID, joined.ID)
		}
	}
}

// writeOutbound pumps the seat's channel into the socket. One writer
// per connection keeps writes serialized.
func writeOutbound(ctx context.Context, c *websocket.Conn, out <-chan []byte, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-out:
			writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write outbound message: %v", err)
				return
			}
		}
	}
}

// readGameMessages reads and routes inbound messages until the
// connection drops. Authentication happens per message: the token
// resolves to the player identity on every request.
func readGameMessages(ctx context.Context, c *websocket.Conn, reg *room.Registry,
	out chan []byte, joined **room.Room, playerID *uuid.UUID, logger *logrus.Logger) {

	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Info("WebSocket closed normally.")
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Info("WebSocket context canceled.")
			} else {
				logger.Warnf("Error reading from WebSocket: %v (Status: %d)", err, status)
			}
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var msg wsRequest
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON received: %v. Data: %s", err, string(data))
			sendWsError(ctx, c, "Invalid JSON format.")
			continue
		}

		uid, err := authenticateToken(msg.AccessToken)
		if err != nil {
			logger.Warnf("Token rejected: %v", err)
			sendWsError(ctx, c, "Authentication failed.")
			continue
		}

		switch msg.Type {
		case "join-game":
			if *joined != nil {
				sendWsError(ctx, c, "Already seated at a table.")
				continue
			}
			rm, ok := reg.Room(msg.RoomID)
			if !ok {
				sendWsError(ctx, c, "Room not found.")
				continue
			}
			user, err := database.GetUserByID(ctx, uid)
			if err != nil {
				logger.Warnf("Failed to load user %s: %v", uid, err)
				sendWsError(ctx, c, "Unknown player.")
				continue
			}
			if err := rm.Join(room.SeatRequest{
				ID:    user.ID,
				Name:  user.Username,
				Chips: user.Chips,
				Out:   out,
			}); err != nil {
				sendWsError(ctx, c, "Could not join room: "+err.Error())
				continue
			}
			*joined = rm
			*playerID = user.ID
			logger.Infof("Player %s joined room %d", user.Username, rm.ID)

		case "action":
			rm := *joined
			if rm == nil || rm.ID != msg.RoomID || uid != *playerID {
				sendWsError(ctx, c, "Not seated at that table.")
				continue
			}
			if msg.PlayerAction == "game_start" {
				rm.SubmitStart(uid)
				continue
			}
			act, ok := playerActions[msg.PlayerAction]
			if !ok {
				sendWsError(ctx, c, "Unknown player action: "+msg.PlayerAction)
				continue
			}
			rm.SubmitAction(uid, act, msg.Size)

		default:
			logger.Warnf("Unknown message type '%s'", msg.Type)
			sendWsError(ctx, c, "Unknown message type: "+msg.Type)
		}
	}
}

func authenticateToken(token string) (uuid.UUID, error) {
	sub, err := auth.AuthenticateJWT(token)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(sub)
}

// sendWsMessage marshals a message and sends it to the WebSocket client.
func sendWsMessage(ctx context.Context, c *websocket.Conn, message interface{}) {
	msgBytes, err := json.Marshal(message)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.Write(writeCtx, websocket.MessageText, msgBytes)
}

// sendWsError sends a structured error message to the client.
func sendWsError(ctx context.Context, c *websocket.Conn, errorMsg string) {
	sendWsMessage(ctx, c, map[string]interface{}{
		"type":    "error",
		"message": errorMsg,
	})
}
