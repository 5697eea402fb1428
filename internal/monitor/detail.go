package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tum-esm/sensorboard/internal/telemetry"
	"github.com/tum-esm/sensorboard/internal/ui"
)

// Detail view limits
const (
	detailMaxLogs        = 20
	detailSparklineWidth = 40
	detailGraphWidth     = 40
	detailGraphHeight    = 2
)

// Detail view styles
var (
	detailSectionTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	detailKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary).
			Width(24)
)

// renderDetailView renders the expanded single-sensor view: a fixed header,
// the scrollable viewport and a footer.
func (m Model) renderDetailView() string {
	name := m.SelectedSensor()
	if name == "" {
		return LabelStyle.Render("No sensor selected")
	}

	var b strings.Builder
	b.WriteString(m.renderDetailHeader(name))
	b.WriteString("\n\n")

	if m.viewportReady {
		b.WriteString(m.detailViewport.View())
	} else {
		b.WriteString(m.renderDetailContent(name))
	}

	b.WriteString("\n")
	b.WriteString(m.renderDetailFooter())
	return b.String()
}

// renderDetailHeader renders the sensor name and its derived status.
func (m Model) renderDetailHeader(name string) string {
	status := m.Status(name)
	title := StatusStyle(status).Render(StatusGlyph(status)) + " " +
		SensorNameSelectedStyle.Render(name) + " " +
		StatusStyle(status).Render(status.String())
	return HeaderStyle.Render(title)
}

// renderDetailContent renders everything known about one sensor.
func (m Model) renderDetailContent(name string) string {
	st := m.SensorState(name)
	now := m.now()

	var sections []string

	// Summary
	lastData, dataOK := LastMeasurementTime(st.Measurements)
	lastLogs, logsOK := LastLogTime(st.Logs)
	summary := []string{
		detailSectionTitleStyle.Render("Summary"),
		detailRow("last data", RenderTime(lastData, dataOK, now)),
		detailRow("last logs", RenderTime(lastLogs, logsOK, now)),
		detailRow("measurements", loadedCount(st.MeasurementsLoaded, len(st.Measurements))),
		detailRow("log entries", loadedCount(st.LogsLoaded, len(st.Logs))),
	}
	sections = append(sections, strings.Join(summary, "\n"))

	sections = append(sections, m.renderMeasurementsSection(name, st.Measurements, st.MeasurementsLoaded))
	if trends := m.renderTrendsSection(name); trends != "" {
		sections = append(sections, trends)
	}
	sections = append(sections, m.renderLogsSection(st.Logs, st.LogsLoaded))
	sections = append(sections, renderJSONSection("Log aggregates", st.Aggregates, st.AggregatesLoaded))

	if m.snapshot.StatusLoaded || m.serverURL != "" {
		sections = append(sections, m.renderServerSection())
	}

	return strings.Join(sections, "\n\n")
}

func loadedCount(loaded bool, n int) string {
	if !loaded {
		return "not loaded"
	}
	return fmt.Sprintf("%d", n)
}

func detailRow(key, value string) string {
	return "  " + detailKeyStyle.Render(key) + ValueStyle.Render(value)
}

// renderMeasurementsSection shows the latest value for every key and a
// sparkline of its recorded history.
func (m Model) renderMeasurementsSection(name string, ms []telemetry.Measurement, loaded bool) string {
	lines := []string{detailSectionTitleStyle.Render("Measurements")}

	latest, ok := LatestMeasurement(ms)
	switch {
	case !loaded:
		lines = append(lines, "  "+MutedStyle.Render("not loaded"))
		return strings.Join(lines, "\n")
	case !ok:
		lines = append(lines, "  "+MutedStyle.Render("no measurements"))
		return strings.Join(lines, "\n")
	}

	for _, key := range sortedKeys(latest.Value) {
		row := detailRow(key, formatValue(latest.Value[key]))
		if values := m.history.Series(name, key, detailSparklineWidth); len(values) > 1 {
			row += "  " + ui.RenderSparkline(values, detailSparklineWidth)
		}
		lines = append(lines, row)
	}

	return strings.Join(lines, "\n")
}

// renderTrendsSection draws a braille graph of every numeric key with at
// least two recorded values. It is empty when there is nothing to plot.
func (m Model) renderTrendsSection(name string) string {
	var lines []string
	for _, key := range m.history.Keys(name) {
		values := m.history.Series(name, key, detailGraphWidth*2)
		if len(values) < 2 {
			continue
		}
		lo, hi := values[0], values[0]
		for _, v := range values {
			lo, hi = min(lo, v), max(hi, v)
		}
		label := fmt.Sprintf("  %s  %s",
			LabelStyle.Render(key),
			MutedStyle.Render(fmt.Sprintf("%d values, %s to %s", len(values), formatValue(lo), formatValue(hi))))
		lines = append(lines, label, indent(RenderBrailleGraph(values, detailGraphWidth, detailGraphHeight, ColorGraph), "  "))
	}
	if len(lines) == 0 {
		return ""
	}
	return detailSectionTitleStyle.Render("Trends") + "\n" + strings.Join(lines, "\n")
}

func indent(s, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

// renderLogsSection lists the most recent log entries, newest first.
func (m Model) renderLogsSection(logs []telemetry.LogEntry, loaded bool) string {
	lines := []string{detailSectionTitleStyle.Render("Logs")}
	if !loaded {
		lines = append(lines, "  "+MutedStyle.Render("not loaded"))
		return strings.Join(lines, "\n")
	}
	if len(logs) == 0 {
		lines = append(lines, "  "+MutedStyle.Render("no log entries"))
		return strings.Join(lines, "\n")
	}

	sorted := make([]telemetry.LogEntry, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreationTimestamp > sorted[j].CreationTimestamp
	})
	if len(sorted) > detailMaxLogs {
		sorted = sorted[:detailMaxLogs]
	}

	now := m.now()
	for _, l := range sorted {
		line := fmt.Sprintf("  %s %s %s",
			MutedStyle.Render(fmt.Sprintf("%-16s", RenderTime(l.CreationTimestamp, true, now))),
			SeverityStyle(l.Severity).Render(fmt.Sprintf("%-7s", l.Severity)),
			ValueStyle.Render(l.Subject))
		lines = append(lines, line)
		if l.Details != "" {
			for _, d := range strings.Split(strings.TrimRight(l.Details, "\n"), "\n") {
				lines = append(lines, "      "+MutedStyle.Render(d))
			}
		}
	}

	return strings.Join(lines, "\n")
}

// renderServerSection shows the server URL and its last reported status.
func (m Model) renderServerSection() string {
	section := renderJSONSection("Server status", m.snapshot.ServerStatus, m.snapshot.StatusLoaded)
	if m.serverURL == "" {
		return section
	}
	title, body, _ := strings.Cut(section, "\n")
	return title + "\n" + detailRow("url", m.serverURL) + "\n" + body
}

// renderJSONSection pretty-prints an opaque JSON document.
func renderJSONSection(title string, raw json.RawMessage, loaded bool) string {
	lines := []string{detailSectionTitleStyle.Render(title)}
	if !loaded {
		lines = append(lines, "  "+MutedStyle.Render("not loaded"))
		return strings.Join(lines, "\n")
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "  ", "  "); err != nil {
		lines = append(lines, "  "+MutedStyle.Render(string(raw)))
		return strings.Join(lines, "\n")
	}
	lines = append(lines, "  "+ValueStyle.Render(buf.String()))
	return strings.Join(lines, "\n")
}

// renderDetailFooter renders the keyboard hints for the detail view.
func (m Model) renderDetailFooter() string {
	hints := []string{
		"esc back",
		"↑↓ scroll",
		"r refresh",
		"q quit",
	}
	return FooterStyle.Render(strings.Join(hints, " | "))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func formatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return "null"
	case float64:
		return fmt.Sprintf("%g", n)
	case string:
		return n
	default:
		b, err := json.Marshal(n)
		if err != nil {
			return fmt.Sprint(n)
		}
		return string(b)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
