package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille graphs pack a 2x4 dot matrix into every character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 and sets one bit per dot.

const brailleBase = '⠀'

// brailleDots maps [row][col] of the dot matrix to its bit offset.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// seriesBounds returns the range a series is plotted against. A flat
// series gets a unit-wide range centred on its value.
func seriesBounds(data []float64) (minVal, maxVal float64) {
	if len(data) == 0 {
		return 0, 1
	}
	minVal, maxVal = data[0], data[0]
	for _, v := range data[1:] {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if minVal == maxVal {
		return minVal - 0.5, maxVal + 0.5
	}
	return minVal, maxVal
}

// normalizeValue converts a value to the 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps val to [0, maxVal].
func clampInt(val, maxVal int) int {
	return max(0, min(val, maxVal))
}

// RenderBrailleGraph plots a measurement series with braille characters.
// Every character holds two values side by side and four vertical levels
// per row. Series shorter than the graph are right-aligned so the newest
// value is always at the right edge.
func RenderBrailleGraph(data []float64, width, height int, color lipgloss.Color) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := seriesBounds(data)
	totalDots := height * 4
	targetPoints := width * 2

	resampled := data
	if len(data) > targetPoints {
		resampled = resampleData(data, targetPoints)
	}

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	offset := max(targetPoints-len(resampled), 0)

	for i, val := range resampled {
		// Every value gets at least one dot so the baseline stays visible
		dotHeight := clampInt(int(normalizeValue(val, minVal, maxVal)*float64(totalDots)), totalDots)
		dotHeight = max(dotHeight, 1)

		charCol := (i + offset) / 2
		if charCol >= width {
			continue
		}
		subCol := (i + offset) % 2

		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - (dot / 4)
			if row < 0 {
				continue
			}
			subRow := 3 - (dot % 4)
			grid[row][charCol] |= rune(1 << brailleDots[subRow][subCol])
		}
	}

	style := lipgloss.NewStyle().Foreground(color)
	lines := make([]string, 0, height)
	for _, row := range grid {
		lines = append(lines, style.Render(string(row)))
	}
	return strings.Join(lines, "\n")
}

// resampleData resamples data to targetSize values. Downsampling keeps the
// largest value of each bucket so spikes survive; upsampling interpolates.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}
	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := min(int(float64(i+1)*bucketSize), len(data))
			if start >= end {
				start = end - 1
			}
			start = max(start, 0)

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				maxVal = max(maxVal, data[j])
			}
			result[i] = maxVal
		}
		return result
	}

	if targetSize == 1 {
		result[0] = data[len(data)-1]
		return result
	}

	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)
		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}
	return result
}
