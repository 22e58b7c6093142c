// internal/handlers/room.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pokerhall/pokerhall/internal/auth"
	"github.com/pokerhall/pokerhall/internal/game"
	"github.com/pokerhall/pokerhall/internal/room"
)

// CreateRoomHandler opens a new table. Requires a logged-in user.
func CreateRoomHandler(reg *room.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractCookieToken(r.Header.Get("Cookie"), "auth_token")
		if _, err := auth.AuthenticateJWT(token); err != nil {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}

		var req struct {
			Name string `json:"name"`
			BB   int    `json:"bb"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		rm, err := reg.CreateRoom(req.Name, req.BB)
		if err != nil {
			switch {
			case errors.Is(err, room.ErrInvalidRoom):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, room.ErrTooManyRooms):
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
			default:
				http.Error(w, "failed to create room", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(room.Info{
			ID:        rm.ID,
			Name:      rm.Name,
			MaxPlayer: game.MaxPlayers,
			CurPlayer: rm.PlayerCount(),
			BigBlind:  rm.Blind,
		})
	}
}

// ListRoomsHandler returns the current room directory.
func ListRoomsHandler(reg *room.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"type":  "room_list",
			"rooms": reg.List(),
		})
	}
}
