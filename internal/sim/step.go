package sim

import (
	"math"
	"time"
)

// DeathEvent records a player elimination for the driving layer to act on:
// score persistence and the game-over notification.
type DeathEvent struct {
	PlayerID  string
	SessionID string
	Name      string
	Score     int
}

// ReapedPlayer identifies a dead player that was just removed from the
// room, so the driver can release its session link.
type ReapedPlayer struct {
	PlayerID  string
	SessionID string
}

// StepResult reports what a step changed beyond the room's own state.
type StepResult struct {
	Deaths []DeathEvent
	Reaped []ReapedPlayer
}

// Advance runs one simulation step. The phase order matters: spawning
// precedes integration, all consumption is resolved before progression is
// recomputed, and reaping runs last so a death and its removal never share
// a tick.
func (r *Room) Advance(dt float64, now time.Time) StepResult {
	var res StepResult

	r.Tick++
	r.spawnTimer += dt
	if r.spawnTimer >= r.SpawnInterval {
		r.spawnTimer = 0
		r.spawnFish()
		if r.rng.Float64() < 0.18+0.02*float64(r.Level) {
			r.spawnItem()
		}
	}

	fishes := r.Fishes[:0]
	for _, f := range r.Fishes {
		f.Pos.X += f.Vel.X * dt
		f.Pos.Y += f.Vel.Y * dt
		if !f.outOfBounds() {
			fishes = append(fishes, f)
		}
	}
	r.Fishes = fishes

	items := r.Items[:0]
	for _, it := range r.Items {
		it.TTL -= dt
		if it.TTL > 0 {
			items = append(items, it)
		}
	}
	r.Items = items

	for _, p := range r.playersInOrder() {
		if !p.Alive {
			continue
		}
		r.movePlayer(p, dt)
	}

	r.resolveFishCollisions(now, &res)
	r.resolvePlayerCollisions(now, &res)
	r.resolveItemPickups()
	r.applyMagnetPull(dt)

	maxScore := 0
	for _, p := range r.Players {
		if p.Score > maxScore {
			maxScore = p.Score
		}
	}
	r.Level, r.SpawnInterval = levelFor(r.levels, maxScore)

	for _, p := range r.playersInOrder() {
		if p.Alive {
			continue
		}
		if now.Sub(p.DeadAt) > reapAfter {
			r.RemovePlayer(p.ID)
			res.Reaped = append(res.Reaped, ReapedPlayer{PlayerID: p.ID, SessionID: p.SessionID})
		}
	}

	return res
}

// movePlayer seeks toward the player's target, or bleeds off velocity when
// already on top of it, then integrates and clamps inside the world.
func (r *Room) movePlayer(p *PlayerState, dt float64) {
	dx := p.Target.X - p.Pos.X
	dy := p.Target.Y - p.Pos.Y
	d := math.Hypot(dx, dy)
	if d < 1 {
		decay := 1 - dt*10
		if decay < 0 {
			decay = 0
		}
		p.Vel.X *= decay
		p.Vel.Y *= decay
	} else {
		speed := clamp(d*2.4, 120, p.maxSpeed())
		p.Vel.X = dx / d * speed
		p.Vel.Y = dy / d * speed
	}
	p.Pos.X = clamp(p.Pos.X+p.Vel.X*dt, p.Radius, WorldWidth-p.Radius)
	p.Pos.Y = clamp(p.Pos.Y+p.Vel.Y*dt, p.Radius, WorldHeight-p.Radius)

	p.Shield = math.Max(0, p.Shield-dt)
	p.Boost = math.Max(0, p.Boost-dt)
	p.Magnet = math.Max(0, p.Magnet-dt)
}

func (r *Room) resolveFishCollisions(now time.Time, res *StepResult) {
	for _, p := range r.playersInOrder() {
		if !p.Alive {
			continue
		}
		for i := len(r.Fishes) - 1; i >= 0; i-- {
			f := r.Fishes[i]
			if dist(f.Pos, p.Pos) >= (f.Radius+p.Radius)*eatOverlapFactor {
				continue
			}
			switch {
			case f.Radius <= p.Radius*fishEdibleFactor:
				r.Fishes = append(r.Fishes[:i], r.Fishes[i+1:]...)
				p.Score += int(math.Round(f.Radius * 2))
				p.grow(f.Radius, fishGrowthFactor)
			case p.Shield > 0:
				// The shield absorbs the hit; the fish is gone but grants
				// no score or growth.
				p.Shield = 0
				r.Fishes = append(r.Fishes[:i], r.Fishes[i+1:]...)
			default:
				res.Deaths = append(res.Deaths, r.kill(p, now))
			}
			if !p.Alive {
				break
			}
		}
	}
}

func (r *Room) resolvePlayerCollisions(now time.Time, res *StepResult) {
	players := r.playersInOrder()
	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			a, b := players[i], players[j]
			if !a.Alive || !b.Alive {
				continue
			}
			if dist(a.Pos, b.Pos) >= (a.Radius+b.Radius)*eatOverlapFactor {
				continue
			}
			var winner, loser *PlayerState
			switch {
			case a.Radius > b.Radius*playerSizeGap:
				winner, loser = a, b
			case b.Radius > a.Radius*playerSizeGap:
				winner, loser = b, a
			default:
				// Near-equal sizes pass through each other.
				continue
			}
			winner.Score += int(math.Round(loser.Radius * 2))
			winner.grow(loser.Radius, playerGrowthFactor)
			res.Deaths = append(res.Deaths, r.kill(loser, now))
		}
	}
}

func (r *Room) resolveItemPickups() {
	for _, p := range r.playersInOrder() {
		if !p.Alive {
			continue
		}
		for i := len(r.Items) - 1; i >= 0; i-- {
			it := r.Items[i]
			if dist(it.Pos, p.Pos) >= p.Radius+itemPickupPadding {
				continue
			}
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			r.applyItem(p, it.Kind)
		}
	}
}

func (r *Room) applyItem(p *PlayerState, kind ItemKind) {
	switch kind {
	case ItemBoost:
		p.Boost = boostDuration
	case ItemShield:
		p.Shield = shieldDuration
	case ItemSlow:
		for _, f := range r.Fishes {
			f.Vel.X *= slowFishFactor
		}
	case ItemMagnet:
		p.Magnet = magnetDuration
	}
}

// applyMagnetPull nudges small fish toward every magnet-active player.
// A fish near several magnets is pulled by each independently.
func (r *Room) applyMagnetPull(dt float64) {
	for _, f := range r.Fishes {
		for _, p := range r.playersInOrder() {
			if !p.Alive || p.Magnet <= 0 || f.Radius >= p.Radius*magnetPreyFactor {
				continue
			}
			f.Pos.X += (p.Pos.X - f.Pos.X) * dt * magnetPullFactor
			f.Pos.Y += (p.Pos.Y - f.Pos.Y) * dt * magnetPullFactor
		}
	}
}

func (r *Room) kill(p *PlayerState, now time.Time) DeathEvent {
	p.Alive = false
	p.DeadAt = now
	return DeathEvent{PlayerID: p.ID, SessionID: p.SessionID, Name: p.Name, Score: p.Score}
}
