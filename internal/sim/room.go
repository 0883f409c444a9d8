package sim

import (
	"math/rand"

	"github.com/google/uuid"
)

// Room is one isolated arena. It owns its players, fish, and items for its
// whole lifetime and is only ever mutated by a single goroutine at a time;
// the hub serializes access behind its lock.
type Room struct {
	Code string

	// Players is keyed by player id. order preserves admission order so
	// collision resolution is deterministic regardless of map iteration.
	Players map[string]*PlayerState
	order   []string

	Fishes []*Fish
	Items  []*Item

	Tick          uint64
	Level         int
	SpawnInterval float64
	spawnTimer    float64

	levels []Level
	rng    *rand.Rand
}

// NewRoom creates an empty room using the given progression table and
// random source. A nil table falls back to the built-in defaults.
func NewRoom(code string, levels []Level, rng *rand.Rand) *Room {
	if len(levels) == 0 {
		levels = DefaultLevels()
	}
	return &Room{
		Code:    code,
		Players: make(map[string]*PlayerState),
		// Non-nil so snapshots encode as [] instead of null before the
		// first spawn.
		Fishes:        []*Fish{},
		Items:         []*Item{},
		Level:         1,
		SpawnInterval: levels[0].SpawnInterval,
		levels:        levels,
		rng:           rng,
	}
}

// NewPlayer creates a fresh player for the given display name, placed at a
// random spot away from the world edges.
func (r *Room) NewPlayer(name, sessionID string) *PlayerState {
	return &PlayerState{
		Player: Player{
			ID:     uuid.NewString(),
			Name:   name,
			Pos:    Vec2{X: r.randRange(200, WorldWidth-200), Y: r.randRange(160, WorldHeight-160)},
			Radius: StartRadius,
			Hue:    r.rng.Intn(360),
			Alive:  true,
		},
		SessionID: sessionID,
		Target:    Vec2{X: WorldWidth * 0.5, Y: WorldHeight * 0.6},
	}
}

// AddPlayer admits the player unless the room is at capacity.
func (r *Room) AddPlayer(p *PlayerState) bool {
	if len(r.Players) >= MaxPlayers {
		return false
	}
	r.Players[p.ID] = p
	r.order = append(r.order, p.ID)
	return true
}

// RemovePlayer deletes the player if present.
func (r *Room) RemovePlayer(id string) {
	if _, ok := r.Players[id]; !ok {
		return
	}
	delete(r.Players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Empty reports whether the room holds no players and should be torn down.
func (r *Room) Empty() bool {
	return len(r.Players) == 0
}

// playersInOrder returns the current players in admission order.
func (r *Room) playersInOrder() []*PlayerState {
	players := make([]*PlayerState, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.Players[id]; ok {
			players = append(players, p)
		}
	}
	return players
}

// Snapshots returns the public view of every player in admission order.
func (r *Room) Snapshots() []Player {
	players := make([]Player, 0, len(r.order))
	for _, p := range r.playersInOrder() {
		players = append(players, p.Snapshot())
	}
	return players
}

func (r *Room) randRange(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}
