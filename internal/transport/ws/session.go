package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"tunequiz/internal/game"
	"tunequiz/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	joinTimeout    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler owns the websocket session lifecycle: join validation, action
// decoding, per-connection rate limiting and disconnect notification. Game
// rules live in the room; this layer only guards the door.
type Handler struct {
	registry    *game.Registry
	tokens      *service.TokenService
	suggestions game.SuggestionIndex
	actionRate  rate.Limit
	actionBurst int
	log         zerolog.Logger
}

// NewHandler creates a new websocket handler.
func NewHandler(registry *game.Registry, tokens *service.TokenService, suggestions game.SuggestionIndex, actionsPerSec float64, actionBurst int, logger zerolog.Logger) *Handler {
	return &Handler{
		registry:    registry,
		tokens:      tokens,
		suggestions: suggestions,
		actionRate:  rate.Limit(actionsPerSec),
		actionBurst: actionBurst,
		log:         logger.With().Str("component", "ws").Logger(),
	}
}

// RoomWS handles GET /api/ws/rooms/{code}. Join parameters ride the query
// string: name, password, and optionally token (a seat token from create or
// a previous joined message, which reclaims a seat and skips the password).
func (h *Handler) RoomWS(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(mux.Vars(r)["code"])
	name := game.SanitizeName(r.URL.Query().Get("name"))
	password := r.URL.Query().Get("password")
	tokenString := r.URL.Query().Get("token")

	sock, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := newWSConn(sock)
	go conn.writePump()

	if !game.ValidRoomCode(code) {
		h.reject(conn, game.ErrRoomNotFound.Error())
		return
	}

	room := h.registry.Get(code)
	if room == nil {
		h.reject(conn, game.ErrRoomNotFound.Error())
		return
	}

	// A valid seat token for this room is both credential and identity.
	seatID := 0
	if tokenString != "" {
		if claims, err := h.tokens.ValidateSeatToken(tokenString); err == nil && claims.RoomCode == code {
			seatID = claims.PlayerID
		}
	}

	if seatID == 0 {
		if name == "" {
			h.reject(conn, game.ErrNameRequired.Error())
			return
		}
		if !room.CheckPassword(password) {
			h.reject(conn, game.ErrInvalidPassword.Error())
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), joinTimeout)
	res, err := room.Join(ctx, game.JoinRequest{Name: name, PlayerID: seatID, Conn: conn})
	cancel()
	if err != nil {
		h.reject(conn, err.Error())
		return
	}

	resumeToken, err := h.tokens.IssueSeatToken(code, res.PlayerID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to issue seat token")
	}
	conn.Send(game.JoinedMessage(res.PlayerID, resumeToken))

	h.log.Info().Str("room", code).Int("player", res.PlayerID).Bool("reconnect", res.Reconnect).Msg("session established")
	h.readPump(room, conn, res.PlayerID)
}

func (h *Handler) reject(conn *wsConn, message string) {
	conn.Send(game.ErrorMessage(message))
	conn.Close(message)
}

func (h *Handler) readPump(room *game.Room, conn *wsConn, playerID int) {
	defer func() {
		room.Disconnect(playerID, conn.ID())
		conn.Close("")
		conn.sock.Close()
	}()

	conn.sock.SetReadLimit(maxMessageSize)
	conn.sock.SetReadDeadline(time.Now().Add(pongWait))
	conn.sock.SetPongHandler(func(string) error {
		conn.sock.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	limiter := rate.NewLimiter(h.actionRate, h.actionBurst)

	for {
		_, data, err := conn.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug().Err(err).Str("room", room.Code()).Msg("websocket read error")
			}
			return
		}

		if !limiter.Allow() {
			conn.Send(game.ErrorMessage("Too many actions, slow down"))
			continue
		}

		action, err := game.DecodeAction(data)
		if err != nil {
			if !errors.Is(err, game.ErrUnknownAction) {
				h.log.Debug().Err(err).Str("room", room.Code()).Msg("dropping bad message")
			}
			conn.Send(game.ErrorMessage("Invalid action"))
			continue
		}

		// Suggestions are a read-only index lookup, answered here so a slow
		// catalog query never holds up the room's command queue.
		if s, isSuggest := action.(game.SuggestAction); isSuggest {
			go h.serveSuggestions(conn, s.Query)
			continue
		}

		room.Submit(playerID, action)
	}
}

func (h *Handler) serveSuggestions(conn *wsConn, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	titles, err := h.suggestions.Suggest(ctx, query)
	if err != nil {
		h.log.Warn().Err(err).Msg("suggestion lookup failed")
		titles = nil
	}
	conn.Send(game.SuggestionsMessage(titles))
}
