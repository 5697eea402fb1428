package telemetry

import (
	"encoding/json"
	"math"
	"time"
)

// Timestamp is a Unix time in seconds, as sent in creation_timestamp fields.
type Timestamp float64

// Time converts the timestamp to a time.Time in UTC.
func (ts Timestamp) Time() time.Time {
	sec, frac := math.Modf(float64(ts))
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// TimestampOf converts a time.Time to a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(float64(t.UnixNano()) / 1e9)
}

// Measurement is a single data point reported by a sensor node.
type Measurement struct {
	Revision          *int           `json:"revision"`
	CreationTimestamp Timestamp      `json:"creation_timestamp"`
	Value             map[string]any `json:"value"`
}

// LogEntry is a diagnostic message reported by a sensor node.
type LogEntry struct {
	Severity          string    `json:"severity"`
	Subject           string    `json:"subject"`
	Details           string    `json:"details,omitempty"`
	Revision          *int      `json:"revision"`
	CreationTimestamp Timestamp `json:"creation_timestamp"`
}

// Log severities the service reports.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// ServerStatus is the opaque body of GET /status.
type ServerStatus = json.RawMessage

// LogAggregates is the opaque body of GET .../logs/aggregates.
type LogAggregates = json.RawMessage
