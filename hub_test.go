package server

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Ghost-Author/fish-game/internal/persist"
	"github.com/Ghost-Author/fish-game/internal/sim"
)

// fakeWriter collects frames in memory so hub tests run without sockets.
type fakeWriter struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (w *fakeWriter) WriteMessage(messageType int, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	w.frames = append(w.frames, buf)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// decodeFrames unmarshals every collected frame into a generic map keyed by
// the protocol "type" field.
func (w *fakeWriter) decodeFrames(t *testing.T) []map[string]any {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]map[string]any, 0, len(w.frames))
	for _, raw := range w.frames {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("decode frame %s: %v", raw, err)
		}
		out = append(out, m)
	}
	return out
}

func (w *fakeWriter) framesOfType(t *testing.T, kind string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, m := range w.decodeFrames(t) {
		if m["type"] == kind {
			out = append(out, m)
		}
	}
	return out
}

// recordingStore funnels Record calls into a channel so tests can observe
// the asynchronous persistence the hub performs after a death.
type recordingStore struct {
	records chan persist.Entry
}

func newRecordingStore() *recordingStore {
	return &recordingStore{records: make(chan persist.Entry, 8)}
}

func (s *recordingStore) Record(ctx context.Context, name string, score int) error {
	s.records <- persist.Entry{Name: name, Score: score}
	return nil
}

func (s *recordingStore) TopEntries(ctx context.Context, n int) ([]persist.Entry, error) {
	return []persist.Entry{{Name: "champ", Score: 999}}, nil
}

func (s *recordingStore) Close() error { return nil }

func newTestHub(store persist.Store) *Hub {
	return NewHub(HubConfig{Store: store, Seed: 42})
}

func TestConnectIssuesSessionID(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	sub := &fakeWriter{}
	id, welcome := hub.Connect(sub)

	if id == "" {
		t.Fatalf("expected a session id")
	}
	if welcome.Type != "welcome" || welcome.ID != id {
		t.Fatalf("unexpected welcome payload: %+v", welcome)
	}
}

func TestHandshakeStoresName(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	id, _ := hub.Connect(&fakeWriter{})

	welcome, ok := hub.Handshake(id, "nemo")
	if !ok || welcome.ID != id {
		t.Fatalf("handshake failed: ok=%v payload=%+v", ok, welcome)
	}

	_, joined, ok := hub.CreateRoom(id)
	if !ok {
		t.Fatalf("create room failed")
	}
	if len(joined.Players) != 1 || joined.Players[0].Name != "nemo" {
		t.Fatalf("expected the admitted player to carry the handshake name, got %+v", joined.Players)
	}
}

func TestCreateRoomAdmitsGuestByDefault(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	id, _ := hub.Connect(&fakeWriter{})

	created, joined, ok := hub.CreateRoom(id)
	if !ok {
		t.Fatalf("create room failed")
	}
	if len(created.RoomCode) != roomCodeLength {
		t.Fatalf("unexpected room code %q", created.RoomCode)
	}
	if joined.RoomCode != created.RoomCode {
		t.Fatalf("joined code %q does not match created code %q", joined.RoomCode, created.RoomCode)
	}
	if len(joined.Players) != 1 || joined.Players[0].Name != "guest" {
		t.Fatalf("expected one guest player, got %+v", joined.Players)
	}
	if hub.RoomCount() != 1 {
		t.Fatalf("expected one live room, got %d", hub.RoomCount())
	}
}

func TestJoinRoomByCode(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	hostID, _ := hub.Connect(&fakeWriter{})
	created, _, _ := hub.CreateRoom(hostID)

	guestID, _ := hub.Connect(&fakeWriter{})
	joined, full, ok := hub.JoinRoom(guestID, created.RoomCode)
	if !ok || full != nil {
		t.Fatalf("join failed: ok=%v full=%+v", ok, full)
	}
	if joined.RoomCode != created.RoomCode {
		t.Fatalf("joined the wrong room: %q", joined.RoomCode)
	}
	if len(joined.Players) != 2 {
		t.Fatalf("expected 2 players in the roster, got %d", len(joined.Players))
	}
	if hub.RoomCount() != 1 {
		t.Fatalf("expected a single shared room, got %d", hub.RoomCount())
	}
}

func TestJoinUnknownCodeProvisionsFreshRoom(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	id, _ := hub.Connect(&fakeWriter{})

	joined, full, ok := hub.JoinRoom(id, "ZZZZZ")
	if !ok || full != nil {
		t.Fatalf("join failed: ok=%v full=%+v", ok, full)
	}
	if joined.RoomCode == "ZZZZZ" {
		t.Fatalf("a provisioned room must not reuse the unknown code")
	}
	if len(joined.RoomCode) != roomCodeLength {
		t.Fatalf("unexpected provisioned code %q", joined.RoomCode)
	}
}

func TestJoinRefusedWhenRoomFull(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	hostID, _ := hub.Connect(&fakeWriter{})
	created, _, _ := hub.CreateRoom(hostID)

	for i := 1; i < sim.MaxPlayers; i++ {
		id, _ := hub.Connect(&fakeWriter{})
		if _, full, ok := hub.JoinRoom(id, created.RoomCode); !ok || full != nil {
			t.Fatalf("join %d should succeed below capacity", i)
		}
	}

	lateID, _ := hub.Connect(&fakeWriter{})
	_, full, ok := hub.JoinRoom(lateID, created.RoomCode)
	if !ok {
		t.Fatalf("join of a full room should still resolve the session")
	}
	if full == nil || full.RoomCode != created.RoomCode {
		t.Fatalf("expected a roomFull refusal, got %+v", full)
	}
}

func TestLeaveRoomDeletesEmptyRoom(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	id, _ := hub.Connect(&fakeWriter{})
	hub.CreateRoom(id)

	left, ok := hub.LeaveRoom(id)
	if !ok || left.Type != "roomLeft" {
		t.Fatalf("leave failed: ok=%v payload=%+v", ok, left)
	}
	if hub.RoomCount() != 0 {
		t.Fatalf("expected the empty room to be torn down")
	}
}

func TestCreateRoomLeavesPreviousRoomFirst(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	id, _ := hub.Connect(&fakeWriter{})
	first, _, _ := hub.CreateRoom(id)
	second, _, _ := hub.CreateRoom(id)

	if first.RoomCode == second.RoomCode {
		t.Fatalf("expected a fresh code on the second create")
	}
	if hub.RoomCount() != 1 {
		t.Fatalf("the abandoned room should be gone, have %d rooms", hub.RoomCount())
	}
}

func TestDisconnectReleasesPlayerAndClosesConnection(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	sub := &fakeWriter{}
	id, _ := hub.Connect(sub)
	hub.CreateRoom(id)

	hub.Disconnect(id)

	if !sub.Closed() {
		t.Fatalf("expected the connection to be closed")
	}
	if hub.RoomCount() != 0 {
		t.Fatalf("expected the room to empty out on disconnect")
	}
	if hub.SetTarget(id, 1, 2) {
		t.Fatalf("a disconnected session must not accept input")
	}
}

func TestStepBroadcastsPersonalizedState(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	hostSub := &fakeWriter{}
	hostID, _ := hub.Connect(hostSub)
	hub.Handshake(hostID, "host")
	created, _, _ := hub.CreateRoom(hostID)

	guestSub := &fakeWriter{}
	guestID, _ := hub.Connect(guestSub)
	hub.Handshake(guestID, "guest2")
	hub.JoinRoom(guestID, created.RoomCode)

	hub.Step(time.Now(), 1.0/30)

	hostStates := hostSub.framesOfType(t, "state")
	guestStates := guestSub.framesOfType(t, "state")
	if len(hostStates) != 1 || len(guestStates) != 1 {
		t.Fatalf("expected one state frame each, got %d and %d", len(hostStates), len(guestStates))
	}

	hostYou := hostStates[0]["you"].(map[string]any)
	guestYou := guestStates[0]["you"].(map[string]any)
	if hostYou["name"] != "host" || guestYou["name"] != "guest2" {
		t.Fatalf("state frames not personalized: host=%v guest=%v", hostYou["name"], guestYou["name"])
	}

	hostRoster := hostStates[0]["players"].([]any)
	guestRoster := guestStates[0]["players"].([]any)
	if len(hostRoster) != 2 || len(guestRoster) != 2 {
		t.Fatalf("both frames must carry the full roster")
	}

	// Before anything spawns the entity lists must encode as empty arrays,
	// never null; clients iterate them unconditionally.
	for _, key := range []string{"fishes", "items"} {
		list, ok := hostStates[0][key].([]any)
		if !ok {
			t.Fatalf("%s is not an array on the first tick: %v", key, hostStates[0][key])
		}
		if len(list) != 0 {
			t.Fatalf("expected %s to start empty, got %v", key, list)
		}
	}
}

func TestSetTargetSteersOwnPlayer(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	id, _ := hub.Connect(&fakeWriter{})
	hub.CreateRoom(id)

	if !hub.SetTarget(id, 640, 360) {
		t.Fatalf("expected input to be accepted while in a room")
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()
	for _, room := range hub.rooms {
		for _, p := range room.Players {
			if p.Target.X != 640 || p.Target.Y != 360 {
				t.Fatalf("target not applied: %+v", p.Target)
			}
		}
	}
}

func TestDeathSendsGameOverAndRecordsScore(t *testing.T) {
	t.Parallel()

	store := newRecordingStore()
	hub := newTestHub(store)
	sub := &fakeWriter{}
	id, _ := hub.Connect(sub)
	hub.Handshake(id, "victim")
	hub.CreateRoom(id)

	// Park the player and drop a lethal fish on top of it.
	hub.mu.Lock()
	for _, room := range hub.rooms {
		for _, p := range room.Players {
			p.Target = p.Pos
			p.Score = 77
			room.Fishes = append(room.Fishes, &sim.Fish{
				ID:     "shark",
				Pos:    p.Pos,
				Radius: p.Radius * 3,
				Tier:   sim.TierLarge,
			})
		}
	}
	hub.mu.Unlock()

	hub.Step(time.Now(), 1.0/30)

	overs := sub.framesOfType(t, "gameOver")
	if len(overs) != 1 || overs[0]["reason"] != "eaten" {
		t.Fatalf("expected one gameOver with reason eaten, got %+v", overs)
	}

	select {
	case entry := <-store.records:
		if entry.Name != "victim" || entry.Score != 77 {
			t.Fatalf("unexpected recorded entry: %+v", entry)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("score was never recorded")
	}
}

func TestReapedPlayerReleasesSessionLink(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	id, _ := hub.Connect(&fakeWriter{})
	hub.CreateRoom(id)

	now := time.Now()
	hub.mu.Lock()
	for _, room := range hub.rooms {
		for _, p := range room.Players {
			p.Target = p.Pos
			room.Fishes = append(room.Fishes, &sim.Fish{
				ID:     "shark",
				Pos:    p.Pos,
				Radius: p.Radius * 3,
				Tier:   sim.TierLarge,
			})
		}
	}
	hub.mu.Unlock()

	hub.Step(now, 1.0/30)
	hub.Step(now.Add(6*time.Second), 1.0/30)

	if hub.RoomCount() != 0 {
		t.Fatalf("expected the room to be torn down after the reap")
	}
	if hub.SetTarget(id, 1, 2) {
		t.Fatalf("a reaped session must not steer anything")
	}
	if _, _, ok := hub.CreateRoom(id); !ok {
		t.Fatalf("a reaped session should still be able to start a new run")
	}
}

func TestLeaderboardFallsBackWithoutStore(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	msg, err := hub.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if msg.Type != "leaderboard" || msg.Entries == nil || len(msg.Entries) != 0 {
		t.Fatalf("expected an empty leaderboard payload, got %+v", msg)
	}
}

func TestLeaderboardReadsStore(t *testing.T) {
	t.Parallel()

	hub := newTestHub(newRecordingStore())
	msg, err := hub.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(msg.Entries) != 1 || msg.Entries[0].Name != "champ" {
		t.Fatalf("unexpected entries: %+v", msg.Entries)
	}
}

func TestShutdownNotifiesInRoomPlayers(t *testing.T) {
	t.Parallel()

	hub := newTestHub(nil)
	inRoomSub := &fakeWriter{}
	inRoomID, _ := hub.Connect(inRoomSub)
	hub.CreateRoom(inRoomID)

	lobbySub := &fakeWriter{}
	hub.Connect(lobbySub)

	hub.Shutdown()

	overs := inRoomSub.framesOfType(t, "gameOver")
	if len(overs) != 1 || overs[0]["reason"] != "disconnect" {
		t.Fatalf("expected a disconnect gameOver for the in-room player, got %+v", overs)
	}
	if got := lobbySub.framesOfType(t, "gameOver"); len(got) != 0 {
		t.Fatalf("lobby sessions must not get a gameOver, got %+v", got)
	}
	if !inRoomSub.Closed() || !lobbySub.Closed() {
		t.Fatalf("all connections should be closed on shutdown")
	}
	if hub.RoomCount() != 0 {
		t.Fatalf("expected no rooms after shutdown")
	}
}
