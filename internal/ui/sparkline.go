package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

// sparklineBlockRunes provides indexed access to block characters.
var sparklineBlockRunes = []rune(sparklineBlocks)

// RenderSparkline creates a sparkline visualization from a slice of float64 values.
// The width parameter determines how many of the most recent data points to display.
// Values are mapped to 8 vertical levels based on the min/max range of the
// visible window. Sensor readings carry no notion of good or bad, so the
// line is drawn in a single info color.
func RenderSparkline(data []float64, width int) string {
	line := SparklineRunes(data, width)
	if line == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(ColorInfo).Render(line)
}

// SparklineRunes returns the uncolored block characters for data.
func SparklineRunes(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	// Use only the most recent 'width' data points
	if len(data) > width {
		data = data[len(data)-width:]
	}

	minVal, maxVal := SeriesRange(data)

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	numLevels := len(sparklineBlockRunes)
	valueRange := maxVal - minVal

	for _, v := range data {
		var level int
		if valueRange == 0 {
			// All values are the same, use middle level
			level = numLevels / 2
		} else {
			normalized := (v - minVal) / valueRange
			level = int(normalized * float64(numLevels-1))
			if level < 0 {
				level = 0
			} else if level >= numLevels {
				level = numLevels - 1
			}
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	return sb.String()
}

// SeriesRange returns the smallest and largest value in data.
// Both are zero for an empty series.
func SeriesRange(data []float64) (minVal, maxVal float64) {
	for i, v := range data {
		if i == 0 || v < minVal {
			minVal = v
		}
		if i == 0 || v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}
