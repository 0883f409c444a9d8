package sim

import "time"

// World constants shared by the server and every client build.
const (
	WorldWidth  = 1280.0
	WorldHeight = 720.0
	MaxPlayers  = 8
	TickRate    = 30 // simulation steps per second
)

// StartRadius is the radius every freshly admitted player begins with.
const StartRadius = 26.0

const (
	fishScaleMin  = 0.55
	fishScaleMax  = 2.2
	fishMinRadius = 10.0
	fishMaxRadius = 140.0

	itemTTL       = 8.0
	itemEdgeInset = 80.0

	boostDuration  = 4.0
	shieldDuration = 6.0
	magnetDuration = 5.0

	// eatOverlapFactor scales the combined radii before a contact counts.
	eatOverlapFactor = 0.85
	// fishEdibleFactor gates which fish a player may swallow.
	fishEdibleFactor = 0.95
	// playerSizeGap is the radius advantage required to win a player collision.
	playerSizeGap = 1.05

	fishGrowthFactor   = 0.45
	playerGrowthFactor = 0.5

	itemPickupPadding = 10.0
	magnetPreyFactor  = 0.7
	magnetPullFactor  = 0.6
	slowFishFactor    = 0.6
)

// reapAfter is how long a dead player lingers before removal from the room.
const reapAfter = 5000 * time.Millisecond
