package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// FetchFailure is a single failed request for summary display.
// This mirrors populate.Failure to keep ui free of domain imports.
type FetchFailure struct {
	Kind    string
	Sensor  string // Empty for the server status request
	Message string
}

// FetchSummary holds the outcome of one populate run.
type FetchSummary struct {
	Requests  int
	Succeeded int
	Duration  time.Duration
	Failures  []FetchFailure
}

// SummaryRenderer formats fetch summaries for terminal display.
type SummaryRenderer struct {
	errorStyle   lipgloss.Style
	successStyle lipgloss.Style
	pathStyle    lipgloss.Style
	mutedStyle   lipgloss.Style
}

// NewSummaryRenderer creates a new summary renderer with default styles.
func NewSummaryRenderer() *SummaryRenderer {
	return &SummaryRenderer{
		errorStyle:   lipgloss.NewStyle().Foreground(ColorError),
		successStyle: lipgloss.NewStyle().Foreground(ColorSuccess),
		pathStyle:    lipgloss.NewStyle().Foreground(ColorInfo),
		mutedStyle:   lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// RenderSummary generates a formatted fetch summary.
func RenderSummary(summary FetchSummary) string {
	return NewSummaryRenderer().Render(summary)
}

// Render generates the formatted summary string: a one-line tally followed by
// one block per failed request.
func (r *SummaryRenderer) Render(summary FetchSummary) string {
	var sb strings.Builder

	timing := r.mutedStyle.Render(formatDuration(summary.Duration))
	if len(summary.Failures) == 0 {
		sb.WriteString(r.successStyle.Render(fmt.Sprintf("%s %d/%d %s succeeded",
			SymbolSuccess, summary.Succeeded, summary.Requests, plural(summary.Requests, "request", "requests"))))
		sb.WriteString(" ")
		sb.WriteString(timing)
		sb.WriteString("\n")
		return sb.String()
	}

	failCount := len(summary.Failures)
	sb.WriteString(r.errorStyle.Render(fmt.Sprintf("%s %d/%d %s failed",
		SymbolFail, failCount, summary.Requests, plural(summary.Requests, "request", "requests"))))
	sb.WriteString(" ")
	sb.WriteString(timing)
	sb.WriteString("\n")

	for _, failure := range summary.Failures {
		sb.WriteString("\n")

		target := "server"
		if failure.Sensor != "" {
			target = failure.Sensor
		}
		sb.WriteString("  ")
		sb.WriteString(r.pathStyle.Render(target))
		sb.WriteString(" ")
		sb.WriteString(failure.Kind)
		sb.WriteString("\n")

		if failure.Message != "" {
			for _, line := range strings.Split(failure.Message, "\n") {
				sb.WriteString("    ")
				sb.WriteString(r.mutedStyle.Render(line))
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
