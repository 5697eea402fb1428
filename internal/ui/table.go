package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.
		Foreground(ColorPrimary)
	// Non-interactive: the first row must not look selected
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string.
// This is for CLI output (not TUI), producing a simple formatted table.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	return NewTable(columns, tableRows).View()
}

// SensorTableRow represents a row in the sensors table.
type SensorTableRow struct {
	Status   string // "ok", "warn", "fail" or "" when nothing is loaded
	Name     string
	ID       string
	LastData string
	LastLogs string
}

// RenderSensorTable renders sensor rows with a colored status column.
func RenderSensorTable(rows []SensorTableRow) string {
	if len(rows) == 0 {
		return "No sensors configured"
	}

	successStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	warnStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	errorStyle := lipgloss.NewStyle().Foreground(ColorError)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)

	nameWidth, idWidth, dataWidth := len("SENSOR"), len("ID"), len("LAST DATA")
	for _, row := range rows {
		nameWidth = max(nameWidth, lipgloss.Width(row.Name))
		idWidth = max(idWidth, lipgloss.Width(row.ID))
		dataWidth = max(dataWidth, lipgloss.Width(row.LastData))
	}
	nameWidth += 2
	idWidth += 2
	dataWidth += 2

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted)

	var output strings.Builder
	output.WriteString(headerStyle.Render("  " +
		padRight("", 3) +
		padRight("SENSOR", nameWidth) +
		padRight("ID", idWidth) +
		padRight("LAST DATA", dataWidth) +
		"LAST LOGS"))
	output.WriteString("\n")

	for _, row := range rows {
		var statusIcon string
		switch row.Status {
		case "ok":
			statusIcon = successStyle.Render(SymbolComplete)
		case "warn":
			statusIcon = warnStyle.Render(SymbolComplete)
		case "fail":
			statusIcon = errorStyle.Render(SymbolFail)
		default:
			statusIcon = mutedStyle.Render(SymbolPending)
		}

		output.WriteString("  " +
			padRight(statusIcon, 3) +
			padRight(row.Name, nameWidth) +
			padRight(mutedStyle.Render(row.ID), idWidth) +
			padRight(row.LastData, dataWidth) +
			row.LastLogs)
		output.WriteString("\n")
	}

	return output.String()
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	// Account for ANSI codes when calculating visible length
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
