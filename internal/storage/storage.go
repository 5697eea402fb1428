// Package storage records sensor measurements and logs across runs so the
// history command can export them. Recording is optional; the default
// backend is none.
package storage

import (
	"errors"
	"math"
	"time"

	"github.com/tum-esm/sensorboard/internal/config"
	"github.com/tum-esm/sensorboard/internal/telemetry"
)

// Kind distinguishes measurement records from log records.
type Kind string

const (
	KindMeasurement Kind = "measurement"
	KindLog         Kind = "log"
)

// Record is one stored measurement or log entry.
// Records are unique per (sensor, kind, creation timestamp).
type Record struct {
	Sensor    string              `json:"sensor"`
	Kind      Kind                `json:"kind"`
	Timestamp telemetry.Timestamp `json:"creation_timestamp"`
	Revision  *int                `json:"revision,omitempty"`
	Value     map[string]any      `json:"value,omitempty"`
	Severity  string              `json:"severity,omitempty"`
	Subject   string              `json:"subject,omitempty"`
	Details   string              `json:"details,omitempty"`
}

// Time returns the creation time of the record.
func (r Record) Time() time.Time {
	return r.Timestamp.Time()
}

// Storage persists sensor history.
type Storage interface {
	// SaveMeasurements stores measurements not seen before and returns how
	// many were new.
	SaveMeasurements(sensor string, ms []telemetry.Measurement) (int, error)

	// SaveLogs stores log entries not seen before and returns how many were new.
	SaveLogs(sensor string, logs []telemetry.LogEntry) (int, error)

	// LastSeen returns the newest creation time recorded for a sensor.
	LastSeen(sensor string) (time.Time, bool, error)

	// History returns records for a sensor with from <= time <= to, oldest first.
	History(sensor string, from, to time.Time) ([]Record, error)

	// Cleanup deletes records created before olderThan.
	Cleanup(olderThan time.Time) error

	// Close releases the backend.
	Close() error
}

// ErrDisabled is returned by Open when storage.backend is none.
var ErrDisabled = errors.New("history recording is disabled")

// Open creates the backend selected by cfg.
func Open(cfg config.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStorage(), nil
	case config.BackendSQLite:
		return NewSQLiteStorage(cfg.Path)
	case config.BackendNone, "":
		return nil, ErrDisabled
	default:
		return nil, errors.New("unknown storage backend: " + cfg.Backend)
	}
}

func measurementRecords(sensor string, ms []telemetry.Measurement) []Record {
	out := make([]Record, 0, len(ms))
	for _, m := range ms {
		out = append(out, Record{
			Sensor:    sensor,
			Kind:      KindMeasurement,
			Timestamp: m.CreationTimestamp,
			Revision:  m.Revision,
			Value:     m.Value,
		})
	}
	return out
}

func logRecords(sensor string, logs []telemetry.LogEntry) []Record {
	out := make([]Record, 0, len(logs))
	for _, l := range logs {
		out = append(out, Record{
			Sensor:    sensor,
			Kind:      KindLog,
			Timestamp: l.CreationTimestamp,
			Revision:  l.Revision,
			Severity:  l.Severity,
			Subject:   l.Subject,
			Details:   l.Details,
		})
	}
	return out
}

// bounds converts a time range to timestamps. A zero time leaves that side open.
func bounds(from, to time.Time) (lo, hi telemetry.Timestamp) {
	lo, hi = telemetry.Timestamp(math.Inf(-1)), telemetry.Timestamp(math.Inf(1))
	if !from.IsZero() {
		lo = telemetry.TimestampOf(from)
	}
	if !to.IsZero() {
		hi = telemetry.TimestampOf(to)
	}
	return lo, hi
}
