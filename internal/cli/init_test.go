package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tum-esm/sensorboard/internal/config"
	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NonInteractiveWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := Init(InitOptions{Dir: dir, NonInteractive: true, Out: &out})
	require.NoError(t, err)

	path := filepath.Join(dir, config.ConfigFileName)
	assert.Contains(t, out.String(), "Created "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# sensorboard configuration")
	assert.Contains(t, string(data), "stale_after: 30m0s")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate(cfg))

	def := config.DefaultConfig()
	assert.Equal(t, def.ServerURL, cfg.ServerURL)
	assert.Equal(t, def.NetworkID, cfg.NetworkID)
	assert.Equal(t, def.Sensors, cfg.Sensors)
	assert.Equal(t, def.Monitor, cfg.Monitor)
	assert.Equal(t, def.Storage.Backend, cfg.Storage.Backend)
	assert.Equal(t, def.Storage.Retention, cfg.Storage.Retention)
}

func TestInit_ExistingConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	err := Init(InitOptions{Dir: dir, NonInteractive: true, Out: &bytes.Buffer{}})
	require.Error(t, err)
	assert.True(t, sberrors.IsCode(err, sberrors.ErrConfig))
	assert.Contains(t, err.Error(), "--force")

	err = Init(InitOptions{Dir: dir, NonInteractive: true, Overwrite: true, Out: &bytes.Buffer{}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server_url:")
}

func TestApplyInitAnswers(t *testing.T) {
	cfg := config.DefaultConfig()

	err := applyInitAnswers(cfg, initAnswers{
		ServerURL: " http://localhost:8000/ ",
		Interval:  "1m",
		Record:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.ServerURL)
	assert.Equal(t, time.Minute, cfg.Monitor.Interval)
	assert.Equal(t, config.BackendSQLite, cfg.Storage.Backend)
}

func TestApplyInitAnswers_KeepsDefaults(t *testing.T) {
	cfg := config.DefaultConfig()

	require.NoError(t, applyInitAnswers(cfg, initAnswers{Interval: "0s"}))

	assert.Equal(t, config.DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, time.Duration(0), cfg.Monitor.Interval)
	assert.Equal(t, config.BackendNone, cfg.Storage.Backend)
}

func TestApplyInitAnswers_IntervalTooShort(t *testing.T) {
	err := applyInitAnswers(config.DefaultConfig(), initAnswers{Interval: "2s"})

	require.Error(t, err)
	assert.True(t, sberrors.IsCode(err, sberrors.ErrConfig))
}

func TestRenderConfig_RoundTrips(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Monitor.Interval = 90 * time.Second
	cfg.Fetch.Timeout = 10 * time.Second

	data, err := renderConfig(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, loaded.Monitor.Interval)
	assert.Equal(t, 10*time.Second, loaded.Fetch.Timeout)
}

func TestDurationString(t *testing.T) {
	assert.Equal(t, "0s", durationString(0))
	assert.Equal(t, "1m30s", durationString(90*time.Second))
}
