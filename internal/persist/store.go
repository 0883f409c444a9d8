package persist

import (
	"context"
	"time"
)

// MaxEntries caps the leaderboard at its top scores.
const MaxEntries = 20

// Entry is one leaderboard row, shaped exactly like the wire payload.
type Entry struct {
	Name  string    `json:"name"`
	Score int       `json:"score"`
	Date  time.Time `json:"date"`
}

// Store is the durable leaderboard contract. Implementations must
// serialize concurrent Record calls so near-simultaneous deaths never lose
// an update under read-modify-write.
type Store interface {
	// Record appends an entry stamped with the current time, re-sorts by
	// score descending, and truncates to the top MaxEntries.
	Record(ctx context.Context, name string, score int) error
	// TopEntries returns the current top-n list, highest score first.
	TopEntries(ctx context.Context, n int) ([]Entry, error)
	Close() error
}
