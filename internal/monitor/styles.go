package monitor

import (
	"github.com/charmbracelet/lipgloss"
)

// Dashboard color palette
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F") // Deep void
	ColorSurfaceBg = lipgloss.Color("#12121A") // Dark surface
	ColorBorder    = lipgloss.Color("#2A2A4A") // Glass border (purple tint)

	// Semantic colors for sensor status
	ColorHealthy  = lipgloss.Color("#39FF14") // Neon green
	ColorWarning  = lipgloss.Color("#FFAA00") // Electric amber
	ColorCritical = lipgloss.Color("#FF0055") // Hot red-pink
	ColorNeutral  = lipgloss.Color("#3A3A55") // Unloaded placeholder

	// Text colors
	ColorTextPrimary   = lipgloss.Color("#FFFFFF") // Pure white
	ColorTextSecondary = lipgloss.Color("#B4B4D0") // Lavender gray
	ColorTextMuted     = lipgloss.Color("#6B6B8D") // Purple-gray

	// Accent colors
	ColorAccent    = lipgloss.Color("#FF2E97") // Neon pink
	ColorAccentDim = lipgloss.Color("#BF40FF") // Neon purple

	ColorGraph = lipgloss.Color("#00FFFF") // Neon cyan
)

// Base styles for the dashboard
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1).
			MarginRight(1)

	CardSelectedStyle = CardStyle.
				BorderForeground(ColorAccent)

	SensorNameStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	SensorNameSelectedStyle = SensorNameStyle.
				Foreground(ColorAccent)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	StatusUnknownStyle = lipgloss.NewStyle().
				Foreground(ColorNeutral)

	StatusHealthyStyle = lipgloss.NewStyle().
				Foreground(ColorHealthy)

	StatusWarningStyle = lipgloss.NewStyle().
				Foreground(ColorWarning)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorCritical)

	RefreshingStyle = lipgloss.NewStyle().
			Foreground(ColorGraph)
)

// Status indicator glyphs
const (
	GlyphUnknown = "◌" // Dashed circle, nothing loaded yet
	GlyphHealthy = "◉" // Filled target
	GlyphWarning = "◔" // Partially filled
	GlyphError   = "◍" // Hatched circle
)

// SelectionMarker prefixes the selected list item.
const SelectionMarker = "▌"

// RefreshSpinnerFrames animate the header while a populate run is in flight.
var RefreshSpinnerFrames = []string{"◐", "◓", "◑", "◒"}

// StatusGlyph returns the glyph for a status.
func StatusGlyph(s SensorStatus) string {
	switch s {
	case StatusHealthy:
		return GlyphHealthy
	case StatusWarning:
		return GlyphWarning
	case StatusError:
		return GlyphError
	default:
		return GlyphUnknown
	}
}

// StatusStyle returns the foreground style for a status.
func StatusStyle(s SensorStatus) lipgloss.Style {
	switch s {
	case StatusHealthy:
		return StatusHealthyStyle
	case StatusWarning:
		return StatusWarningStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusUnknownStyle
	}
}

// SeverityStyle colors a log severity.
func SeverityStyle(severity string) lipgloss.Style {
	switch severity {
	case "error":
		return StatusErrorStyle
	case "warning":
		return StatusWarningStyle
	default:
		return LabelStyle
	}
}
