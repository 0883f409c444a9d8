package sim

// Tier is the coarse size class of a fish, derived from its spawn scale.
type Tier string

const (
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
)

// tierForScale maps the spawn-time scale factor onto a tier.
func tierForScale(scale float64) Tier {
	switch {
	case scale <= 1.0:
		return TierSmall
	case scale < 1.4:
		return TierMedium
	default:
		return TierLarge
	}
}

// Fish is a drifting creature. Its fields match the wire snapshot exactly.
type Fish struct {
	ID     string  `json:"id"`
	Pos    Vec2    `json:"pos"`
	Vel    Vec2    `json:"vel"`
	Radius float64 `json:"radius"`
	Tier   Tier    `json:"tier"`
}

// outOfBounds reports whether the fish has drifted more than twice its
// radius beyond any world edge.
func (f *Fish) outOfBounds() bool {
	margin := f.Radius * 2
	return f.Pos.X <= -margin || f.Pos.X >= WorldWidth+margin ||
		f.Pos.Y <= -margin || f.Pos.Y >= WorldHeight+margin
}
