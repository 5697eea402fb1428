package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/tum-esm/sensorboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHistory(t *testing.T, sensor, since, format string) (string, error) {
	t.Helper()
	var out, stderr bytes.Buffer
	err := historyCommand(historyOptions{
		Sensor: sensor,
		Since:  since,
		Format: format,
		Out:    &out,
		Stderr: &stderr,
		Now:    fixedNow,
	})
	return out.String(), err
}

func TestHistory_JSONAfterFetch(t *testing.T) {
	newTestEnv(t, "sqlite")

	_, err := runFetch(t, FormatJSON)
	require.NoError(t, err)

	out, err := runHistory(t, "alpha", "0", FormatJSON)
	require.NoError(t, err)

	var export struct {
		ExportedAt time.Time        `json:"exported_at"`
		Count      int              `json:"count"`
		Records    []storage.Record `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &export))
	assert.True(t, testNow.Equal(export.ExportedAt))
	assert.Equal(t, 3, export.Count, "two measurements and one log")
	for _, r := range export.Records {
		assert.Equal(t, "alpha", r.Sensor)
	}
}

func TestHistory_RefetchDoesNotDuplicate(t *testing.T) {
	newTestEnv(t, "sqlite")

	for i := 0; i < 2; i++ {
		_, err := runFetch(t, FormatJSON)
		require.NoError(t, err)
	}

	out, err := runHistory(t, "alpha", "0", FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 4, "header plus three records")
	assert.True(t, strings.HasPrefix(lines[0], "timestamp,sensor,kind"))
}

func TestHistory_SinceWindow(t *testing.T) {
	newTestEnv(t, "sqlite")

	_, err := runFetch(t, FormatJSON)
	require.NoError(t, err)

	// Measurements are 90s and 80s old, the log 95s.
	out, err := runHistory(t, "alpha", "90s", FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "measurement")
	assert.Contains(t, lines[2], "measurement")
}

func TestHistory_Disabled(t *testing.T) {
	newTestEnv(t, "none")

	_, err := runHistory(t, "alpha", "", FormatCSV)

	require.Error(t, err)
	assert.True(t, sberrors.IsCode(err, sberrors.ErrStorage))
	assert.Contains(t, err.Error(), "disabled")
}

func TestHistory_UnknownSensor(t *testing.T) {
	newTestEnv(t, "sqlite")

	_, err := runHistory(t, "nope", "", FormatCSV)

	require.Error(t, err)
	assert.True(t, sberrors.IsCode(err, sberrors.ErrConfig))
}

func TestHistory_InvalidSince(t *testing.T) {
	newTestEnv(t, "sqlite")

	_, err := runHistory(t, "alpha", "yesterday", FormatCSV)

	require.Error(t, err)
	assert.True(t, sberrors.IsCode(err, sberrors.ErrConfig))
}

func TestHistory_YAMLRejected(t *testing.T) {
	newTestEnv(t, "sqlite")

	_, err := runHistory(t, "alpha", "", FormatYAML)

	require.Error(t, err)
	assert.True(t, sberrors.IsCode(err, sberrors.ErrConfig))
}
