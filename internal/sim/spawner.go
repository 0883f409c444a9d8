package sim

import "github.com/google/uuid"

// spawnFish creates one fish just outside a random horizontal edge, sized
// relative to the average radius of the current players so the room keeps
// offering edible and threatening creatures as everyone grows.
func (r *Room) spawnFish() {
	baseline := StartRadius
	if len(r.Players) > 0 {
		total := 0.0
		for _, p := range r.playersInOrder() {
			total += p.Radius
		}
		baseline = total / float64(len(r.Players))
	}

	scale := r.randRange(fishScaleMin, fishScaleMax)
	radius := clamp(baseline*scale, fishMinRadius, fishMaxRadius)
	speed := clamp(220-radius*0.6, 80, 220) * (1 + float64(r.Level)*0.03)

	fromLeft := r.rng.Float64() < 0.5
	x := -radius * 1.2
	vx := speed
	if !fromLeft {
		x = WorldWidth + radius*1.2
		vx = -speed
	}

	r.Fishes = append(r.Fishes, &Fish{
		ID:     uuid.NewString(),
		Pos:    Vec2{X: x, Y: r.randRange(radius, WorldHeight-radius)},
		Vel:    Vec2{X: vx, Y: r.randRange(-20, 20)},
		Radius: radius,
		Tier:   tierForScale(scale),
	})
}

// spawnItem places a random power-up inset from the world edges.
func (r *Room) spawnItem() {
	kind := itemKinds[r.rng.Intn(len(itemKinds))]
	r.Items = append(r.Items, &Item{
		ID:   uuid.NewString(),
		Pos:  Vec2{X: r.randRange(itemEdgeInset, WorldWidth-itemEdgeInset), Y: r.randRange(itemEdgeInset, WorldHeight-itemEdgeInset)},
		Kind: kind,
		TTL:  itemTTL,
	})
}
