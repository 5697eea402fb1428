package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	"github.com/stretchr/testify/assert"
)

func TestNewTable(t *testing.T) {
	columns := []TableColumn{
		{Title: "Name", Width: 10},
		{Title: "ID", Width: 36},
	}
	rows := []table.Row{
		{"raspi-1", "a1"},
		{"raspi-2", "b2"},
	}

	tbl := NewTable(columns, rows)
	assert.Len(t, tbl.Rows(), 2)
	assert.Len(t, tbl.Columns(), 2)
}

func TestRenderSimpleTable(t *testing.T) {
	out := RenderSimpleTable(
		[]TableColumn{{Title: "Name", Width: 10}, {Title: "Value", Width: 10}},
		[][]string{{"co2", "412"}},
	)
	assert.Contains(t, out, "Name")
	assert.Contains(t, out, "co2")
	assert.Contains(t, out, "412")

	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "A", Width: 3}}, nil))
}

func TestRenderSensorTable(t *testing.T) {
	out := RenderSensorTable([]SensorTableRow{
		{Status: "ok", Name: "raspi-1", ID: "id-1", LastData: "2 minutes ago", LastLogs: "never"},
		{Status: "fail", Name: "raspi-2", ID: "id-2", LastData: "never", LastLogs: "1 hour ago"},
		{Name: "raspi-3", ID: "id-3", LastData: "never", LastLogs: "never"},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Header, border, three rows
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], "SENSOR")
	assert.Contains(t, out, SymbolComplete)
	assert.Contains(t, out, SymbolFail)
	assert.Contains(t, out, SymbolPending)
	assert.Contains(t, out, "2 minutes ago")

	// Columns line up
	assert.Equal(t, strings.Index(lines[2], "id-1"), strings.Index(lines[3], "id-2"))
}

func TestRenderSensorTable_Empty(t *testing.T) {
	assert.Equal(t, "No sensors configured", RenderSensorTable(nil))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
	assert.Equal(t, "", padRight("", 0))
}
