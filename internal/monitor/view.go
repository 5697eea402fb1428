package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// renderDashboard renders the complete dashboard view.
func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderSensorCards())

	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the dashboard header with summary stats.
func (m Model) renderHeader() string {
	counts := m.StatusCounts()

	updateText := "never"
	if !m.lastUpdate.IsZero() {
		updateText = humanize.RelTime(m.lastUpdate, m.now(), "ago", "from now")
	}

	title := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true).
		Render("sensorboard")

	stats := lipgloss.NewStyle().
		Foreground(ColorTextSecondary).
		Render(fmt.Sprintf(" | %d sensors | %d healthy | %d warning | %d error | last update %s",
			len(m.sensors), counts[StatusHealthy], counts[StatusWarning], counts[StatusError], updateText))

	header := title + stats
	if m.refreshing {
		header += " " + RefreshingStyle.Render(m.RefreshSpinner())
	}
	if m.lastReport != nil && !m.lastReport.OK() {
		header += " " + StatusWarningStyle.Render(fmt.Sprintf("%d/%d requests failed", len(m.lastReport.Failed), m.lastReport.Requests))
	}

	return HeaderStyle.Render(header)
}

// renderSensorCards renders the grid of sensor cards.
func (m Model) renderSensorCards() string {
	if len(m.sensors) == 0 {
		return LabelStyle.Render("No sensors configured")
	}

	cardWidth := m.calculateCardWidth()

	cards := make([]string, 0, len(m.sensors))
	for i, name := range m.sensors {
		cards = append(cards, m.renderCard(name, cardWidth, i == m.selected))
	}

	return m.layoutCards(cards, cardWidth)
}

// calculateCardWidth determines the optimal card width based on terminal width.
func (m Model) calculateCardWidth() int {
	if m.width == 0 {
		return 36 // Default width
	}
	if m.width >= 80 {
		return 36
	}
	return max(m.width-4, 20) // Single column with margin
}

// layoutCards arranges cards in rows based on terminal width.
func (m Model) layoutCards(cards []string, cardWidth int) string {
	if len(cards) == 0 {
		return ""
	}

	cardsPerRow := 1
	if m.width > 0 {
		// Account for card margins and borders
		effectiveCardWidth := cardWidth + 3
		cardsPerRow = max(m.width/effectiveCardWidth, 1)
	}

	var rows []string
	for i := 0; i < len(cards); i += cardsPerRow {
		end := min(i+cardsPerRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderFooter renders the keyboard help footer.
func (m Model) renderFooter() string {
	hints := []string{
		"q quit",
		"r refresh",
		"s sort: " + m.sortOrder.String(),
		"↑↓ select",
		"enter detail",
		"? help",
	}

	return FooterStyle.Render(strings.Join(hints, " | "))
}
