package sim

import (
	"math"
	"time"
)

// Player carries the public fields broadcast to every client in the room.
type Player struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
	Hue    int     `json:"hue"`
	Alive  bool    `json:"alive"`
	Score  int     `json:"score"`
}

// PlayerState wraps the public snapshot with server-side movement and
// status-effect state that never leaves the simulation.
type PlayerState struct {
	Player

	// SessionID links back to the connection that owns this player. The
	// simulation never interprets it; the hub uses it for routing.
	SessionID string

	Vel    Vec2
	Target Vec2

	// Remaining status-effect durations in seconds, each decaying
	// independently toward zero.
	Shield float64
	Boost  float64
	Magnet float64

	// DeadAt is set exactly once, when Alive flips to false.
	DeadAt time.Time
}

// Snapshot returns the broadcastable view of the player.
func (p *PlayerState) Snapshot() Player {
	return p.Player
}

func (p *PlayerState) maxSpeed() float64 {
	speed := 320 + p.Radius*1.5
	if p.Boost > 0 {
		speed += 120
	}
	return speed
}

// grow applies the consumption growth rule. Radius never decreases.
func (p *PlayerState) grow(eatenRadius, factor float64) {
	growth := eatenRadius * eatenRadius * factor
	p.Radius = math.Sqrt(p.Radius*p.Radius + growth)
}
