package storage

import (
	"context"
	"time"

	"github.com/tum-esm/sensorboard/internal/logger"
	"github.com/tum-esm/sensorboard/internal/state"
)

// Recorder persists measurement and log updates from a state store.
type Recorder struct {
	store     *state.Store
	storage   Storage
	log       logger.Logger
	retention time.Duration
	now       func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderLogger sets the logger for save failures.
func WithRecorderLogger(l logger.Logger) RecorderOption {
	return func(r *Recorder) {
		if l != nil {
			r.log = l
		}
	}
}

// WithRetention deletes records older than d after every cleanup tick.
// Zero keeps everything.
func WithRetention(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		r.retention = d
	}
}

// WithRecorderClock overrides the clock used for retention.
func WithRecorderClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		r.now = now
	}
}

// NewRecorder creates a Recorder writing store updates into storage.
func NewRecorder(store *state.Store, storage Storage, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:   store,
		storage: storage,
		log:     logger.Noop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// cleanupInterval is how often Run applies retention.
const cleanupInterval = time.Hour

// Run records every store update until ctx is cancelled.
// Notifications the subscription drops are covered by the next update for
// the same sensor, since Record re-reads the sensor's current state.
func (r *Recorder) Run(ctx context.Context) {
	updates, unsubscribe := r.store.Subscribe()
	defer unsubscribe()

	r.Cleanup()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := r.Record(u); err != nil {
				r.log.Warn("could not record %s for sensor %s: %v", u.Kind, u.Sensor, err)
			}
		case <-ticker.C:
			r.Cleanup()
		}
	}
}

// Record saves the store's current collection for the update's sensor.
// Status and aggregate updates are ignored.
func (r *Recorder) Record(u state.Update) error {
	if u.Kind != state.KindMeasurements && u.Kind != state.KindLogs {
		return nil
	}

	st, ok := r.store.Sensor(u.Sensor)
	if !ok {
		return nil
	}

	var (
		added int
		err   error
	)
	if u.Kind == state.KindMeasurements {
		added, err = r.storage.SaveMeasurements(u.Sensor, st.Measurements)
	} else {
		added, err = r.storage.SaveLogs(u.Sensor, st.Logs)
	}
	if err != nil {
		return err
	}

	if added > 0 {
		r.log.Debug("recorded %d new %s for sensor %s", added, u.Kind, u.Sensor)
	}
	return nil
}

// Sync records every sensor currently in the store.
func (r *Recorder) Sync() error {
	var firstErr error
	for _, name := range r.store.Sensors() {
		for _, kind := range []state.Kind{state.KindMeasurements, state.KindLogs} {
			if err := r.Record(state.Update{Kind: kind, Sensor: name}); err != nil {
				r.log.Warn("could not record %s for sensor %s: %v", kind, name, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}

// Cleanup applies the retention window, if any.
func (r *Recorder) Cleanup() {
	if r.retention <= 0 {
		return
	}
	if err := r.storage.Cleanup(r.now().Add(-r.retention)); err != nil {
		r.log.Warn("could not apply history retention: %v", err)
	}
}
