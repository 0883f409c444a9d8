package sim

// Level pairs a score threshold with the spawn interval that applies once
// the room's best score reaches it. Tables are ordered by ascending score.
type Level struct {
	Score         int     `yaml:"score"`
	SpawnInterval float64 `yaml:"spawn_interval"`
}

// DefaultLevels is the built-in progression table, used when no data file
// overrides it.
func DefaultLevels() []Level {
	return []Level{
		{Score: 0, SpawnInterval: 0.9},
		{Score: 150, SpawnInterval: 0.8},
		{Score: 350, SpawnInterval: 0.7},
		{Score: 700, SpawnInterval: 0.6},
		{Score: 1200, SpawnInterval: 0.5},
		{Score: 1800, SpawnInterval: 0.45},
		{Score: 2500, SpawnInterval: 0.4},
	}
}

// levelFor walks the table and returns the level number (1-based index of
// the highest threshold not exceeding maxScore) and its spawn interval.
func levelFor(levels []Level, maxScore int) (int, float64) {
	level := 1
	interval := levels[0].SpawnInterval
	for i, entry := range levels {
		if maxScore >= entry.Score {
			level = i + 1
			interval = entry.SpawnInterval
		}
	}
	return level, interval
}
