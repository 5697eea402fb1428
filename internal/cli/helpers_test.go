package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testNetwork = "1f705cc5-4242-458b-9201-4217455ea23c"
	alphaID     = "c04e0bcc-2b32-4fb3-8971-9cbe27ab7117"
	betaID      = "64c5c8ec-4e6b-413b-b113-b130f80eae91"
)

// testNow is after every timestamp the fake API serves.
var testNow = time.Unix(1_700_000_100, 0).UTC()

func fixedNow() time.Time { return testNow }

// fakeAPI serves the telemetry endpoints. Requests whose path contains any
// of the failing substrings answer 500.
type fakeAPI struct {
	requests atomic.Int64
	mu       sync.Mutex
	failing  []string
}

func (f *fakeAPI) failOn(substr ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = append(f.failing, substr...)
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	f.mu.Lock()
	failing := false
	for _, s := range f.failing {
		if strings.Contains(r.URL.Path, s) {
			failing = true
		}
	}
	f.mu.Unlock()
	if failing {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	switch {
	case r.URL.Path == "/status":
		fmt.Fprint(w, `{"commit_sha":"abc","sensors":2}`)
	case strings.HasSuffix(r.URL.Path, "/measurements"):
		fmt.Fprint(w, `[{"creation_timestamp":1700000010,"value":{"co2":400}},{"creation_timestamp":1700000020,"value":{"co2":401}}]`)
	case strings.HasSuffix(r.URL.Path, "/logs/aggregates"):
		fmt.Fprint(w, `[{"subject":"pump","count":1}]`)
	case strings.HasSuffix(r.URL.Path, "/logs"):
		fmt.Fprint(w, `[{"severity":"info","subject":"boot","creation_timestamp":1700000005}]`)
	default:
		http.NotFound(w, r)
	}
}

// testEnv is a fake server plus a config file pointing at it.
type testEnv struct {
	api    *fakeAPI
	server *httptest.Server
	dir    string
	config string
}

// newTestEnv starts a fake API and writes a two-sensor config for it.
// backend selects the history backend ("none" or "sqlite").
func newTestEnv(t *testing.T, backend string) *testEnv {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	env := &testEnv{api: api, server: srv, dir: dir, config: filepath.Join(dir, ".sensorboard.yaml")}

	content := fmt.Sprintf(`version: 1
server_url: %s
network_id: %s
sensors:
  - name: alpha
    id: %s
  - name: beta
    id: %s
fetch:
  timeout: 5s
monitor:
  stale_after: 0s
storage:
  backend: %s
  path: %s
  retention: 0s
`, srv.URL, testNetwork, alphaID, betaID, backend, filepath.Join(dir, "history.db"))
	require.NoError(t, os.WriteFile(env.config, []byte(content), 0644))

	useGlobals(t, env.config)
	return env
}

// useGlobals points the global flags at path and restores them afterwards.
func useGlobals(t *testing.T, path string) {
	t.Helper()
	origCfg, origVerbose, origFormat, origFile := cfgFile, verbose, logFormat, logFile
	t.Cleanup(func() {
		cfgFile, verbose, logFormat, logFile = origCfg, origVerbose, origFormat, origFile
	})
	cfgFile, verbose, logFormat, logFile = path, false, "", ""
}
