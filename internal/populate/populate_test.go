package populate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tum-esm/sensorboard/internal/config"
	"github.com/tum-esm/sensorboard/internal/logger"
	"github.com/tum-esm/sensorboard/internal/state"
	"github.com/tum-esm/sensorboard/internal/telemetry"
)

const testNetwork = "1f705cc5-4242-458b-9201-4217455ea23c"

var testSensors = []config.Sensor{
	{Name: "alpha", ID: "c04e0bcc-2b32-4fb3-8971-9cbe27ab7117"},
	{Name: "beta", ID: "64c5c8ec-4e6b-413b-b113-b130f80eae91"},
	{Name: "gamma", ID: "3682334d-a359-438c-ad40-860270bbcbf0"},
}

// fakeAPI serves the telemetry endpoints and counts requests.
// Paths listed in fail answer 500.
type fakeAPI struct {
	requests atomic.Int64
	mu       sync.Mutex
	fail     map[string]bool
	round    atomic.Int64
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)

	f.mu.Lock()
	failing := f.fail[r.URL.Path]
	f.mu.Unlock()
	if failing {
		http.Error(w, "boom", http.StatusInternalServerError)
		return
	}

	round := f.round.Load()
	switch {
	case r.URL.Path == "/status":
		fmt.Fprintf(w, `{"commit_sha":"abc","round":%d}`, round)
	case strings.HasSuffix(r.URL.Path, "/measurements"):
		fmt.Fprintf(w, `[{"creation_timestamp":%d,"value":{"co2":400}},{"creation_timestamp":%d,"value":{"co2":401}}]`, 10+round, 20+round)
	case strings.HasSuffix(r.URL.Path, "/logs/aggregates"):
		fmt.Fprint(w, `[{"subject":"pump","count":1}]`)
	case strings.HasSuffix(r.URL.Path, "/logs"):
		fmt.Fprint(w, `[{"severity":"info","subject":"boot","creation_timestamp":5}]`)
	default:
		http.NotFound(w, r)
	}
}

func setup(t *testing.T, api *fakeAPI, opts ...Option) (*Populator, *state.Store) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := telemetry.NewClient(srv.URL, testNetwork)
	store := state.New()
	return New(client, store, testSensors, opts...), store
}

func sensorPath(id, resource string) string {
	return "/networks/" + testNetwork + "/sensors/" + id + "/" + resource
}

func TestRun_IssuesOnePlusThreeN(t *testing.T) {
	api := &fakeAPI{}
	p, store := setup(t, api)

	report := p.Run(context.Background())

	assert.Equal(t, int64(1+3*len(testSensors)), api.requests.Load())
	assert.Equal(t, 10, report.Requests)
	assert.Equal(t, 10, report.Succeeded)
	assert.True(t, report.OK())

	_, ok := store.ServerStatus()
	assert.True(t, ok)
	for _, s := range testSensors {
		st, ok := store.Sensor(s.Name)
		require.True(t, ok, s.Name)
		assert.True(t, st.MeasurementsLoaded)
		assert.True(t, st.LogsLoaded)
		assert.True(t, st.AggregatesLoaded)
		assert.Len(t, st.Measurements, 2)
	}
}

func TestRun_RequestCountIndependentOfFailures(t *testing.T) {
	api := &fakeAPI{fail: map[string]bool{
		"/status": true,
		sensorPath(testSensors[0].ID, "measurements"): true,
		sensorPath(testSensors[1].ID, "logs"):         true,
	}}
	p, _ := setup(t, api)

	report := p.Run(context.Background())

	assert.Equal(t, int64(10), api.requests.Load())
	assert.Equal(t, 7, report.Succeeded)
	assert.Len(t, report.Failed, 3)
	assert.False(t, report.OK())
}

func TestRun_FailureIsolation(t *testing.T) {
	buf := logger.NewBufferLogger()
	api := &fakeAPI{fail: map[string]bool{
		sensorPath(testSensors[0].ID, "measurements"):     true,
		sensorPath(testSensors[0].ID, "logs"):             true,
		sensorPath(testSensors[0].ID, "logs/aggregates"): true,
	}}
	p, store := setup(t, api, WithLogger(buf))

	report := p.Run(context.Background())

	require.Len(t, report.Failed, 3)
	for _, f := range report.Failed {
		assert.Equal(t, "alpha", f.Sensor)
		assert.Error(t, f.Err)
	}
	assert.Equal(t, 3, buf.Count("warn"))

	_, ok := store.Sensor("alpha")
	assert.False(t, ok, "alpha never received a successful response")

	_, ok = store.ServerStatus()
	assert.True(t, ok)
	for _, name := range []string{"beta", "gamma"} {
		st, ok := store.Sensor(name)
		require.True(t, ok)
		assert.True(t, st.MeasurementsLoaded)
		assert.True(t, st.LogsLoaded)
		assert.True(t, st.AggregatesLoaded)
	}
}

func TestRun_EmptyBodyIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/status" {
			w.Write([]byte("null"))
			return
		}
		w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)

	store := state.New()
	p := New(telemetry.NewClient(srv.URL, testNetwork), store, testSensors[:1])

	report := p.Run(context.Background())

	require.Len(t, report.Failed, 1)
	assert.Equal(t, state.KindStatus, report.Failed[0].Kind)
	assert.ErrorIs(t, report.Failed[0].Err, telemetry.ErrEmptyResponse)

	_, ok := store.ServerStatus()
	assert.False(t, ok)
	st, ok := store.Sensor("alpha")
	require.True(t, ok)
	assert.True(t, st.MeasurementsLoaded)
	assert.Empty(t, st.Measurements)
}

func TestRun_RerunOverwrites(t *testing.T) {
	api := &fakeAPI{}
	p, store := setup(t, api)

	p.Run(context.Background())
	api.round.Store(100)
	p.Run(context.Background())

	st, ok := store.Sensor("beta")
	require.True(t, ok)
	require.Len(t, st.Measurements, 2, "re-population replaces, never appends")
	assert.Equal(t, telemetry.Timestamp(110), st.Measurements[0].CreationTimestamp)
	assert.Equal(t, telemetry.Timestamp(120), st.Measurements[1].CreationTimestamp)
	assert.Len(t, st.Logs, 1)
	assert.Len(t, store.Sensors(), 3)

	status, _ := store.ServerStatus()
	assert.Contains(t, string(status), `"round":100`)
}

func TestRun_NoSensors(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	p := New(telemetry.NewClient(srv.URL, testNetwork), state.New(), nil)
	report := p.Run(context.Background())

	assert.Equal(t, 1, report.Requests)
	assert.Equal(t, int64(1), api.requests.Load())
}

func TestRun_Concurrent(t *testing.T) {
	var inFlight, peak atomic.Int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
		w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)

	p := New(telemetry.NewClient(srv.URL, testNetwork), state.New(), testSensors)

	done := make(chan Report)
	go func() { done <- p.Run(context.Background()) }()

	require.Eventually(t, func() bool { return inFlight.Load() == 10 }, 2*time.Second, 5*time.Millisecond,
		"all requests should be in flight at once")
	close(release)

	report := <-done
	assert.Equal(t, int64(10), peak.Load())
	assert.Equal(t, 10, report.Requests)
}

func TestLoop_ZeroIntervalRunsOnce(t *testing.T) {
	api := &fakeAPI{}
	p, _ := setup(t, api)

	var reports int
	p.Loop(context.Background(), 0, func(Report) { reports++ })

	assert.Equal(t, 1, reports)
	assert.Equal(t, int64(10), api.requests.Load())
}

func TestLoop_RepeatsUntilCancelled(t *testing.T) {
	api := &fakeAPI{}
	p, _ := setup(t, api)

	ctx, cancel := context.WithCancel(context.Background())
	var reports atomic.Int64

	done := make(chan struct{})
	go func() {
		p.Loop(ctx, 10*time.Millisecond, func(Report) { reports.Add(1) })
		close(done)
	}()

	require.Eventually(t, func() bool { return reports.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Loop did not stop after cancel")
	}
}

func TestRun_ProgressReportsEveryRequest(t *testing.T) {
	api := &fakeAPI{fail: map[string]bool{
		"/status": true,
		sensorPath(testSensors[0].ID, "logs"): true,
	}}

	var (
		mu       sync.Mutex
		finished int
		failed   []string
	)
	p, _ := setup(t, api, WithProgress(func(kind state.Kind, sensor string, err error) {
		mu.Lock()
		defer mu.Unlock()
		finished++
		if err != nil {
			failed = append(failed, string(kind)+":"+sensor)
		}
	}))

	report := p.Run(context.Background())

	// Failed requests count towards progress too
	assert.Equal(t, p.Requests(), finished)
	assert.Equal(t, report.Requests, finished)
	assert.ElementsMatch(t, []string{"status:", "logs:alpha"}, failed)
}
