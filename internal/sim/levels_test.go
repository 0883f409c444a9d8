package sim

import "testing"

func TestLevelForWalksThresholds(t *testing.T) {
	t.Parallel()

	levels := DefaultLevels()
	cases := []struct {
		score    int
		level    int
		interval float64
	}{
		{0, 1, 0.9},
		{149, 1, 0.9},
		{150, 2, 0.8},
		{349, 2, 0.8},
		{350, 3, 0.7},
		{700, 4, 0.6},
		{1200, 5, 0.5},
		{1800, 6, 0.45},
		{2500, 7, 0.4},
		{99999, 7, 0.4},
	}
	for _, tc := range cases {
		level, interval := levelFor(levels, tc.score)
		if level != tc.level || interval != tc.interval {
			t.Fatalf("score %d: got level %d interval %.2f, want level %d interval %.2f",
				tc.score, level, interval, tc.level, tc.interval)
		}
	}
}
