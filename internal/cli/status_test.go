package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStatus(t *testing.T, format string) (string, error) {
	t.Helper()
	var out, stderr bytes.Buffer
	err := statusCommand(context.Background(), statusOptions{Format: format, Out: &out, Stderr: &stderr})
	return out.String(), err
}

func TestStatus_Text(t *testing.T) {
	env := newTestEnv(t, "none")

	out, err := runStatus(t, FormatText)
	require.NoError(t, err)

	assert.Contains(t, out, env.server.URL)
	assert.Contains(t, out, `"commit_sha": "abc"`, "body is pretty-printed")
	assert.Equal(t, int64(1), env.api.requests.Load(), "status only issues the status request")
}

func TestStatus_JSON(t *testing.T) {
	newTestEnv(t, "none")

	out, err := runStatus(t, FormatJSON)
	require.NoError(t, err)

	var env struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "abc", env.Data["commit_sha"])
}

func TestStatus_YAML(t *testing.T) {
	newTestEnv(t, "none")

	out, err := runStatus(t, FormatYAML)
	require.NoError(t, err)

	assert.Contains(t, out, "commit_sha: abc")
	assert.Contains(t, out, "sensors: 2")
}

func TestStatus_ServerError(t *testing.T) {
	env := newTestEnv(t, "none")
	env.api.failOn("/status")

	_, err := runStatus(t, FormatText)

	require.Error(t, err)
	assert.True(t, sberrors.IsCode(err, sberrors.ErrFetch))
	assert.Equal(t, ErrCodeServerError, ErrorToJSON(err).Code)
}

func TestStatus_CSVRejected(t *testing.T) {
	newTestEnv(t, "none")

	_, err := runStatus(t, FormatCSV)

	require.Error(t, err)
	assert.True(t, sberrors.IsCode(err, sberrors.ErrConfig))
}
