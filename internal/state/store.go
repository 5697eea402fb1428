// Package state holds the dashboard's client-side view of the sensor network:
// the server status and, per sensor, the latest measurements, logs and log
// aggregates. Every key is written independently; partial state is normal.
package state

import (
	"slices"
	"sync"
	"time"

	"github.com/tum-esm/sensorboard/internal/telemetry"
)

// Kind identifies which slice of state an update touched.
type Kind string

const (
	KindStatus       Kind = "status"
	KindMeasurements Kind = "measurements"
	KindLogs         Kind = "logs"
	KindAggregates   Kind = "aggregates"
)

// Update is delivered to subscribers after every successful write.
// Sensor is empty for KindStatus.
type Update struct {
	Kind   Kind
	Sensor string
	At     time.Time
}

// SensorState is everything known about one sensor.
// Each collection carries its own loaded flag and the time it was written.
type SensorState struct {
	Name string

	Measurements       []telemetry.Measurement
	MeasurementsLoaded bool
	MeasurementsAt     time.Time

	Logs       []telemetry.LogEntry
	LogsLoaded bool
	LogsAt     time.Time

	Aggregates       telemetry.LogAggregates
	AggregatesLoaded bool
	AggregatesAt     time.Time
}

// Loaded reports whether any request for this sensor has succeeded.
func (s SensorState) Loaded() bool {
	return s.MeasurementsLoaded || s.LogsLoaded || s.AggregatesLoaded
}

func (s SensorState) clone() SensorState {
	s.Measurements = slices.Clone(s.Measurements)
	s.Logs = slices.Clone(s.Logs)
	s.Aggregates = slices.Clone(s.Aggregates)
	return s
}

// Snapshot is a consistent copy of the whole store.
type Snapshot struct {
	ServerStatus telemetry.ServerStatus
	StatusLoaded bool
	StatusAt     time.Time
	Sensors      map[string]SensorState
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp writes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithBuffer sets the channel buffer of each subscription.
func WithBuffer(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// Store is a concurrency-safe container for the dashboard state.
// The zero value is not usable; create one with New.
type Store struct {
	mu           sync.RWMutex
	status       telemetry.ServerStatus
	statusLoaded bool
	statusAt     time.Time
	sensors      map[string]*SensorState

	subMu  sync.RWMutex
	subs   map[chan Update]struct{}
	buffer int

	now func() time.Time
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		sensors: make(map[string]*SensorState),
		subs:    make(map[chan Update]struct{}),
		buffer:  64,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetServerStatus replaces the server status.
func (s *Store) SetServerStatus(status telemetry.ServerStatus) {
	at := s.now()
	s.mu.Lock()
	s.status = slices.Clone(status)
	s.statusLoaded = true
	s.statusAt = at
	s.mu.Unlock()

	s.publish(Update{Kind: KindStatus, At: at})
}

// ServerStatus returns the server status and whether it has been loaded.
func (s *Store) ServerStatus() (telemetry.ServerStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.status), s.statusLoaded
}

// SetMeasurements replaces the measurements of a sensor.
func (s *Store) SetMeasurements(sensor string, ms []telemetry.Measurement) {
	at := s.now()
	s.mu.Lock()
	st := s.sensorLocked(sensor)
	st.Measurements = slices.Clone(ms)
	st.MeasurementsLoaded = true
	st.MeasurementsAt = at
	s.mu.Unlock()

	s.publish(Update{Kind: KindMeasurements, Sensor: sensor, At: at})
}

// SetLogs replaces the log entries of a sensor.
func (s *Store) SetLogs(sensor string, logs []telemetry.LogEntry) {
	at := s.now()
	s.mu.Lock()
	st := s.sensorLocked(sensor)
	st.Logs = slices.Clone(logs)
	st.LogsLoaded = true
	st.LogsAt = at
	s.mu.Unlock()

	s.publish(Update{Kind: KindLogs, Sensor: sensor, At: at})
}

// SetAggregates replaces the log aggregates of a sensor.
func (s *Store) SetAggregates(sensor string, agg telemetry.LogAggregates) {
	at := s.now()
	s.mu.Lock()
	st := s.sensorLocked(sensor)
	st.Aggregates = slices.Clone(agg)
	st.AggregatesLoaded = true
	st.AggregatesAt = at
	s.mu.Unlock()

	s.publish(Update{Kind: KindAggregates, Sensor: sensor, At: at})
}

// sensorLocked returns the entry for name, creating it. Caller holds s.mu.
func (s *Store) sensorLocked(name string) *SensorState {
	st, ok := s.sensors[name]
	if !ok {
		st = &SensorState{Name: name}
		s.sensors[name] = st
	}
	return st
}

// Sensor returns a copy of the state of one sensor. ok is false when nothing
// has been written for it yet.
func (s *Store) Sensor(name string) (SensorState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sensors[name]
	if !ok {
		return SensorState{Name: name}, false
	}
	return st.clone(), true
}

// Sensors returns the names of all sensors with any state, sorted.
func (s *Store) Sensors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.sensors))
	for name := range s.sensors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Snapshot returns a deep copy of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		ServerStatus: slices.Clone(s.status),
		StatusLoaded: s.statusLoaded,
		StatusAt:     s.statusAt,
		Sensors:      make(map[string]SensorState, len(s.sensors)),
	}
	for name, st := range s.sensors {
		snap.Sensors[name] = st.clone()
	}
	return snap
}

// Subscribe returns a channel that receives an Update after every write and a
// function that removes and closes that channel. Delivery never blocks
// writers: when the channel buffer is full the update is dropped, so
// subscribers should treat an Update as "something changed" and re-read.
func (s *Store) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, s.buffer)

	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	s.subMu.Unlock()

	return ch, sync.OnceFunc(func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, ch)
		close(ch)
	})
}

func (s *Store) publish(u Update) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
