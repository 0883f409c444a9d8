package sim

import (
	"math/rand"
	"time"
)

// Local drives the shared room step for a single offline player. It exists
// so the offline mode and the authoritative server run the exact same
// physics and consumption rules through one module.
type Local struct {
	room   *Room
	player *PlayerState
}

// NewLocal builds a one-player arena around the shared simulation.
func NewLocal(name string, levels []Level, rng *rand.Rand) *Local {
	room := NewRoom("LOCAL", levels, rng)
	player := room.NewPlayer(name, "")
	room.AddPlayer(player)
	return &Local{room: room, player: player}
}

// SetTarget updates where the player is steering toward.
func (l *Local) SetTarget(x, y float64) {
	l.player.Target = Vec2{X: x, Y: y}
}

// Step advances the arena by dt seconds.
func (l *Local) Step(dt float64, now time.Time) StepResult {
	return l.room.Advance(dt, now)
}

// Room exposes the underlying arena, read-only by convention.
func (l *Local) Room() *Room {
	return l.room
}

// Player returns the local player's state.
func (l *Local) Player() *PlayerState {
	return l.player
}

// GameOver reports whether the local player has been eliminated.
func (l *Local) GameOver() bool {
	return !l.player.Alive
}
