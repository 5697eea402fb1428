package monitor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Card line labels
const (
	labelLastData = "last data:"
	labelLastLogs = "last logs:"
)

// renderCard renders a single sensor list item. Each item looks up its own
// state by name; sensors with nothing loaded render the neutral indicator and
// "never" placeholders.
func (m Model) renderCard(name string, width int, selected bool) string {
	st := m.SensorState(name)
	status := DeriveStatus(st, m.now(), m.staleAfter)

	nameStyle := SensorNameStyle
	marker := " "
	if selected {
		nameStyle = SensorNameSelectedStyle
		marker = lipgloss.NewStyle().Foreground(ColorAccent).Render(SelectionMarker)
	}

	title := marker + StatusStyle(status).Render(StatusGlyph(status)) + " " +
		nameStyle.Render(truncateWithEllipsis(name, width-4))

	lastData, dataOK := LastMeasurementTime(st.Measurements)
	lastLogs, logsOK := LastLogTime(st.Logs)
	now := m.now()

	lines := []string{
		title,
		renderCardLine(labelLastData, RenderTime(lastData, dataOK, now)),
		renderCardLine(labelLastLogs, RenderTime(lastLogs, logsOK, now)),
	}

	style := CardStyle
	if selected {
		style = CardSelectedStyle
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func renderCardLine(label, value string) string {
	if value == NeverPlaceholder {
		return "  " + LabelStyle.Render(label) + " " + MutedStyle.Render(value)
	}
	return "  " + LabelStyle.Render(label) + " " + ValueStyle.Render(value)
}

// truncateWithEllipsis truncates a string to maxLen runes, adding an ellipsis if needed.
func truncateWithEllipsis(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 1 || len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
