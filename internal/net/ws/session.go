package ws

import (
	"context"
	"encoding/json"
	"math"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	server "github.com/Ghost-Author/fish-game"
)

const (
	maxFrameSize = 4096
	maxNameRunes = 24
)

// clientMessage is the inbound envelope. Unknown fields are ignored; the
// type switch below rejects unknown variants.
type clientMessage struct {
	Type     string  `json:"type"`
	Name     string  `json:"name"`
	RoomCode string  `json:"roomCode"`
	Target   *target `json:"target"`
	T        int64   `json:"t"`
}

type target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type pongMessage struct {
	Type string `json:"type"`
	T    int64  `json:"t"`
}

// Handler upgrades connections and runs the per-session read loop.
type Handler struct {
	hub      *server.Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler constructs a websocket session handler for the given hub.
func NewHandler(hub *server.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
	}
}

// Handle upgrades the request and serves the session until the connection
// closes. Every per-message failure is isolated: a malformed frame is
// logged and dropped, never fatal to the connection or the room.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxFrameSize)

	sub := server.NewSubscriber(conn)
	sessionID, welcome := h.hub.Connect(sub)
	log := h.logger.With(zap.String("session", sessionID))

	write := func(payload any) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error("failed to marshal reply", zap.Error(err))
			return true
		}
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			h.hub.Disconnect(sessionID)
			return false
		}
		return true
	}

	if !write(welcome) {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.hub.Disconnect(sessionID)
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Debug("discarding malformed message", zap.Error(err))
			continue
		}

		switch msg.Type {
		case "hello":
			reply, ok := h.hub.Handshake(sessionID, sanitizeName(msg.Name))
			if !ok {
				continue
			}
			if !write(reply) {
				return
			}
		case "createRoom":
			created, joined, ok := h.hub.CreateRoom(sessionID)
			if !ok {
				continue
			}
			if !write(created) || !write(joined) {
				return
			}
		case "joinRoom":
			code := normalizeCode(msg.RoomCode)
			if code == "" {
				log.Debug("discarding joinRoom without code")
				continue
			}
			joined, full, ok := h.hub.JoinRoom(sessionID, code)
			if !ok {
				continue
			}
			if full != nil {
				if !write(full) {
					return
				}
				continue
			}
			if !write(joined) {
				return
			}
		case "leaveRoom":
			left, ok := h.hub.LeaveRoom(sessionID)
			if !ok {
				continue
			}
			if !write(left) {
				return
			}
		case "input":
			if msg.Target == nil || !finite(msg.Target.X) || !finite(msg.Target.Y) {
				log.Debug("discarding malformed input")
				continue
			}
			h.hub.SetTarget(sessionID, msg.Target.X, msg.Target.Y)
		case "ready":
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
			board, err := h.hub.Leaderboard(ctx)
			cancel()
			if err != nil {
				log.Warn("leaderboard lookup failed", zap.Error(err))
				continue
			}
			if !write(board) {
				return
			}
		case "ping":
			if !write(pongMessage{Type: "pong", T: msg.T}) {
				return
			}
		default:
			log.Debug("unknown message type", zap.String("type", msg.Type))
		}
	}
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) > maxNameRunes {
		name = string(runes[:maxNameRunes])
	}
	return name
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
