package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"tunequiz/internal/cache"
	"tunequiz/internal/game"
	"tunequiz/internal/service"
)

// RoomHandler handles room endpoints.
type RoomHandler struct {
	registry *game.Registry
	tokens   *service.TokenService
	scores   cache.ScoreMirror
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(registry *game.Registry, tokens *service.TokenService, scores cache.ScoreMirror) *RoomHandler {
	return &RoomHandler{
		registry: registry,
		tokens:   tokens,
		scores:   scores,
	}
}

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	HostName string `json:"host_name"`
	Password string `json:"password,omitempty"`
}

// Create handles POST /api/rooms. The response carries the room code and a
// seat token the creator presents over the websocket to claim the host seat.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hostName := game.SanitizeName(req.HostName)
	if hostName == "" {
		writeError(w, http.StatusBadRequest, "host name required")
		return
	}

	room, hostID, err := h.registry.Create(hostName, req.Password)
	if err != nil {
		if errors.Is(err, game.ErrTooManyRooms) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.tokens.IssueSeatToken(room.Code(), hostID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"room_id":    room.Code(),
		"host_id":    hostID,
		"host_token": token,
	})
}

// PublicRoom is one entry in the public room listing.
type PublicRoom struct {
	RoomID      string `json:"room_id"`
	HostName    string `json:"host_name"`
	PlayerCount int    `json:"player_count"`
	InGame      bool   `json:"in_game"`
}

// List handles GET /api/rooms: open rooms, newest first.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	infos := h.registry.ListPublic()
	rooms := make([]PublicRoom, 0, len(infos))
	for _, info := range infos {
		rooms = append(rooms, PublicRoom{
			RoomID:      info.Code,
			HostName:    info.HostName,
			PlayerCount: info.PlayerCount,
			InGame:      info.Phase != game.PhaseLobby && info.Phase != game.PhaseFinished,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// Get handles GET /api/rooms/{code}: a joinability probe for the lobby UI.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])

	room := h.registry.Get(code)
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	info := room.Info()
	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":      info.Code,
		"host_name":    info.HostName,
		"player_count": info.PlayerCount,
		"has_password": info.HasPassword,
		"in_game":      info.Phase != game.PhaseLobby && info.Phase != game.PhaseFinished,
	})
}

// Leaderboard handles GET /api/rooms/{code}/leaderboard. Live rooms answer
// from their own state; finished rooms that were already reaped answer from
// the mirrored scores.
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])

	if room := h.registry.Get(code); room != nil {
		snap, err := room.Snapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"scores": snap.Scores})
		return
	}

	standings, err := h.scores.Top(r.Context(), code, 100)
	if err != nil || len(standings) == 0 {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"standings": standings})
}
