package server

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Ghost-Author/fish-game/internal/persist"
	"github.com/Ghost-Author/fish-game/internal/sim"
)

const defaultDisplayName = "guest"

// session tracks one live connection and its optional player link.
type session struct {
	id       string
	sub      MessageWriter
	name     string
	playerID string
	roomCode string
}

// HubConfig collects the hub's dependencies. Zero values fall back to
// sensible defaults so tests can construct hubs tersely.
type HubConfig struct {
	Levels   []sim.Level
	Store    persist.Store
	Logger   *zap.Logger
	TickRate int
	Seed     int64
}

// Hub owns every room and session. One mutex serializes all room mutation:
// the tick loop and the per-connection message handlers both go through it,
// which is what keeps the shared world state race free.
type Hub struct {
	mu       sync.Mutex
	rooms    map[string]*sim.Room
	sessions map[string]*session
	rng      *rand.Rand

	levels   []sim.Level
	store    persist.Store
	logger   *zap.Logger
	tickRate int
}

// NewHub constructs a hub from the given configuration.
func NewHub(cfg HubConfig) *Hub {
	levels := cfg.Levels
	if len(levels) == 0 {
		levels = sim.DefaultLevels()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = sim.TickRate
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Hub{
		rooms:    make(map[string]*sim.Room),
		sessions: make(map[string]*session),
		rng:      rand.New(rand.NewSource(seed)),
		levels:   levels,
		store:    cfg.Store,
		logger:   logger,
		tickRate: tickRate,
	}
}

// Connect registers a fresh session for the connection and returns its id
// along with the welcome payload the caller should deliver.
func (h *Hub) Connect(sub MessageWriter) (string, welcomeMessage) {
	sess := &session{id: uuid.NewString(), sub: sub}

	h.mu.Lock()
	h.sessions[sess.id] = sess
	h.mu.Unlock()

	h.logger.Debug("session connected", zap.String("session", sess.id))
	return sess.id, welcomeMessage{Type: "welcome", ID: sess.id}
}

// Handshake stores the display name and re-confirms the session identity.
func (h *Hub) Handshake(sessionID, name string) (welcomeMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[sessionID]
	if !ok {
		return welcomeMessage{}, false
	}
	sess.name = name
	return welcomeMessage{Type: "welcome", ID: sess.id}, true
}

// CreateRoom allocates a fresh room and admits a new player for the
// session. A session already in a room leaves it first.
func (h *Hub) CreateRoom(sessionID string) (roomCreatedMessage, roomJoinedMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[sessionID]
	if !ok {
		return roomCreatedMessage{}, roomJoinedMessage{}, false
	}
	h.leaveLocked(sess)

	room := h.createRoomLocked()
	h.admitLocked(room, sess)

	created := roomCreatedMessage{Type: "roomCreated", RoomCode: room.Code}
	joined := roomJoinedMessage{Type: "roomJoined", RoomCode: room.Code, Players: room.Snapshots()}
	return created, joined, true
}

// JoinRoom resolves the room for code, provisioning a brand-new room when
// the code is unknown, and admits a new player for the session. The second
// return carries the full-room refusal and is nil on success.
func (h *Hub) JoinRoom(sessionID, code string) (roomJoinedMessage, *roomFullMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[sessionID]
	if !ok {
		return roomJoinedMessage{}, nil, false
	}
	h.leaveLocked(sess)

	room, exists := h.rooms[code]
	if !exists {
		// A stale or typo'd code provisions a fresh room with its own
		// code rather than erroring; see DESIGN.md.
		room = h.createRoomLocked()
	}

	if !h.admitLocked(room, sess) {
		full := &roomFullMessage{Type: "roomFull", RoomCode: room.Code}
		return roomJoinedMessage{}, full, true
	}

	joined := roomJoinedMessage{Type: "roomJoined", RoomCode: room.Code, Players: room.Snapshots()}
	return joined, nil, true
}

// LeaveRoom removes the session's player, if any, and acknowledges.
func (h *Hub) LeaveRoom(sessionID string) (roomLeftMessage, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[sessionID]
	if !ok {
		return roomLeftMessage{}, false
	}
	h.leaveLocked(sess)
	return roomLeftMessage{Type: "roomLeft"}, true
}

// SetTarget overwrites the player's desired position. Input is deliberately
// unthrottled; the simulation only ever reads the latest value.
func (h *Hub) SetTarget(sessionID string, x, y float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	sess, ok := h.sessions[sessionID]
	if !ok || sess.roomCode == "" {
		return false
	}
	room, ok := h.rooms[sess.roomCode]
	if !ok {
		return false
	}
	player, ok := room.Players[sess.playerID]
	if !ok {
		return false
	}
	player.Target = sim.Vec2{X: x, Y: y}
	return true
}

// Leaderboard returns the current top entries for the ready handshake.
func (h *Hub) Leaderboard(ctx context.Context) (leaderboardMessage, error) {
	msg := leaderboardMessage{Type: "leaderboard", Entries: []persist.Entry{}}
	if h.store == nil {
		return msg, nil
	}
	entries, err := h.store.TopEntries(ctx, persist.MaxEntries)
	if err != nil {
		return msg, err
	}
	if entries != nil {
		msg.Entries = entries
	}
	return msg, nil
}

// Disconnect removes the session's player from its room, deletes the
// session, and closes the connection.
func (h *Hub) Disconnect(sessionID string) {
	h.mu.Lock()
	sess, ok := h.sessions[sessionID]
	if ok {
		h.leaveLocked(sess)
		delete(h.sessions, sessionID)
	}
	h.mu.Unlock()

	if ok && sess.sub != nil {
		sess.sub.Close()
	}
	if ok {
		h.logger.Debug("session disconnected", zap.String("session", sessionID))
	}
}

// RunSimulation drives the fixed-rate tick loop until the stop channel
// closes. The ticker is best effort: a slow tick delays but never skips the
// ones after it.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(h.tickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(h.tickRate)
			}
			last = now
			h.Step(now, dt)
		}
	}
}

// outbound pairs a serialized frame with the session that should get it.
type outbound struct {
	sessionID string
	sub       MessageWriter
	payload   any
}

// Step advances every room once and broadcasts the per-player snapshots.
// Exposed so tests can drive ticks deterministically without wall time.
func (h *Hub) Step(now time.Time, dt float64) {
	h.mu.Lock()

	var sends []outbound
	for code, room := range h.rooms {
		res := room.Advance(dt, now)

		for _, death := range res.Deaths {
			if sess, ok := h.sessions[death.SessionID]; ok && sess.sub != nil {
				sends = append(sends, outbound{
					sessionID: sess.id,
					sub:       sess.sub,
					payload:   gameOverMessage{Type: "gameOver", Reason: gameOverEaten},
				})
			}
			h.recordScore(death.Name, death.Score)
		}

		for _, reaped := range res.Reaped {
			if sess, ok := h.sessions[reaped.SessionID]; ok && sess.playerID == reaped.PlayerID {
				sess.playerID = ""
				sess.roomCode = ""
			}
		}

		if room.Empty() {
			delete(h.rooms, code)
			continue
		}

		players := room.Snapshots()
		for _, player := range players {
			state, ok := room.Players[player.ID]
			if !ok {
				continue
			}
			sess, ok := h.sessions[state.SessionID]
			if !ok || sess.sub == nil {
				continue
			}
			sends = append(sends, outbound{
				sessionID: sess.id,
				sub:       sess.sub,
				payload: stateMessage{
					Type:    "state",
					Tick:    room.Tick,
					You:     player,
					Players: players,
					Fishes:  room.Fishes,
					Items:   room.Items,
					Score:   player.Score,
					Level:   room.Level,
				},
			})
		}
	}
	h.mu.Unlock()

	for _, send := range sends {
		data, err := json.Marshal(send.payload)
		if err != nil {
			h.logger.Error("failed to marshal frame", zap.Error(err))
			continue
		}
		if err := send.sub.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Info("dropping session after failed send",
				zap.String("session", send.sessionID), zap.Error(err))
			h.Disconnect(send.sessionID)
		}
	}
}

// Shutdown notifies every in-room player that the server is going away and
// closes all connections.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	var sends []outbound
	subs := make([]MessageWriter, 0, len(h.sessions))
	for _, sess := range h.sessions {
		if sess.sub == nil {
			continue
		}
		subs = append(subs, sess.sub)
		if sess.roomCode == "" {
			continue
		}
		sends = append(sends, outbound{
			sessionID: sess.id,
			sub:       sess.sub,
			payload:   gameOverMessage{Type: "gameOver", Reason: gameOverDisconnect},
		})
	}
	h.sessions = make(map[string]*session)
	h.rooms = make(map[string]*sim.Room)
	h.mu.Unlock()

	for _, send := range sends {
		data, err := json.Marshal(send.payload)
		if err != nil {
			continue
		}
		send.sub.WriteMessage(websocket.TextMessage, data)
	}
	for _, sub := range subs {
		sub.Close()
	}
}

// RoomCount reports how many rooms are live.
func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// createRoomLocked allocates a room under a collision-free code.
func (h *Hub) createRoomLocked() *sim.Room {
	code := newRoomCode(h.rng)
	for _, exists := h.rooms[code]; exists; _, exists = h.rooms[code] {
		code = newRoomCode(h.rng)
	}
	room := sim.NewRoom(code, h.levels, h.rng)
	h.rooms[code] = room
	h.logger.Info("room created", zap.String("room", code))
	return room
}

// admitLocked creates a player for the session and adds it to the room.
func (h *Hub) admitLocked(room *sim.Room, sess *session) bool {
	name := sess.name
	if name == "" {
		name = defaultDisplayName
	}
	player := room.NewPlayer(name, sess.id)
	if !room.AddPlayer(player) {
		h.logger.Info("join refused, room full",
			zap.String("room", room.Code), zap.String("session", sess.id))
		return false
	}
	sess.playerID = player.ID
	sess.roomCode = room.Code
	h.logger.Info("player joined",
		zap.String("room", room.Code),
		zap.String("player", player.ID),
		zap.String("name", name))
	return true
}

// leaveLocked detaches the session's player, tearing the room down the
// instant it empties.
func (h *Hub) leaveLocked(sess *session) {
	if sess.roomCode == "" {
		return
	}
	room, ok := h.rooms[sess.roomCode]
	if ok {
		room.RemovePlayer(sess.playerID)
		if room.Empty() {
			delete(h.rooms, room.Code)
			h.logger.Info("room deleted", zap.String("room", room.Code))
		}
	}
	sess.playerID = ""
	sess.roomCode = ""
}

// recordScore persists a final score without blocking the tick loop.
func (h *Hub) recordScore(name string, score int) {
	if h.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.store.Record(ctx, name, score); err != nil {
			h.logger.Warn("failed to record score",
				zap.String("name", name), zap.Int("score", score), zap.Error(err))
		}
	}()
}
