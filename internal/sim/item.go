package sim

// ItemKind identifies a power-up.
type ItemKind string

const (
	ItemBoost  ItemKind = "boost"
	ItemShield ItemKind = "shield"
	ItemSlow   ItemKind = "slow"
	ItemMagnet ItemKind = "magnet"
)

var itemKinds = []ItemKind{ItemBoost, ItemShield, ItemSlow, ItemMagnet}

// Item is a timed power-up pickup. Its fields match the wire snapshot.
type Item struct {
	ID   string   `json:"id"`
	Pos  Vec2     `json:"pos"`
	Kind ItemKind `json:"kind"`
	TTL  float64  `json:"ttl"`
}
