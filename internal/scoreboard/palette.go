package scoreboard

import "slices"

// QuickScores are the point buttons offered next to every player and team.
var QuickScores = []int{1, 2, 3, 5, 10}

var PlayerColors = []string{
	"#3B82F6", // blue
	"#EF4444", // red
	"#10B981", // emerald
	"#F59E0B", // amber
	"#8B5CF6", // violet
	"#EC4899", // pink
	"#06B6D4", // cyan
	"#F97316", // orange
	"#84CC16", // lime
	"#6366F1", // indigo
}

var TeamColors = []string{
	"#EF4444", // red
	"#3B82F6", // blue
	"#10B981", // emerald
	"#F59E0B", // amber
	"#8B5CF6", // violet
	"#EC4899", // pink
}

// NextColor returns the first palette entry not in used, or the first entry
// once every colour is taken.
func NextColor(palette, used []string) string {
	for _, c := range palette {
		if !slices.Contains(used, c) {
			return c
		}
	}
	return palette[0]
}
