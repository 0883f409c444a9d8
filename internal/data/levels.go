package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Ghost-Author/fish-game/internal/sim"
)

// LoadLevelTable loads the progression table from a YAML file. The table
// must be non-empty, start at score 0, and be strictly ascending so the
// level walk in the simulation stays well defined.
func LoadLevelTable(path string) ([]sim.Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level table: %w", err)
	}

	var levels []sim.Level
	if err := yaml.Unmarshal(raw, &levels); err != nil {
		return nil, fmt.Errorf("parse level table: %w", err)
	}

	if len(levels) == 0 {
		return nil, fmt.Errorf("level table %s is empty", path)
	}
	if levels[0].Score != 0 {
		return nil, fmt.Errorf("level table %s must start at score 0, got %d", path, levels[0].Score)
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].Score <= levels[i-1].Score {
			return nil, fmt.Errorf("level table %s not ascending at index %d", path, i)
		}
		if levels[i].SpawnInterval <= 0 {
			return nil, fmt.Errorf("level table %s has non-positive spawn interval at index %d", path, i)
		}
	}
	if levels[0].SpawnInterval <= 0 {
		return nil, fmt.Errorf("level table %s has non-positive spawn interval at index 0", path)
	}

	return levels, nil
}
