package monitor

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tum-esm/sensorboard/internal/state"
	"github.com/tum-esm/sensorboard/internal/telemetry"
)

// NeverPlaceholder is shown when a sensor has no timestamp to display.
const NeverPlaceholder = "never"

// SensorStatus is the health indicator derived for one sensor.
type SensorStatus int

const (
	// StatusUnknown means nothing has been loaded for the sensor yet.
	StatusUnknown SensorStatus = iota
	StatusHealthy
	StatusWarning
	StatusError
)

// String returns a human-readable status string.
func (s SensorStatus) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// severity ranks statuses for sorting, worst first.
func (s SensorStatus) severity() int {
	switch s {
	case StatusError:
		return 3
	case StatusWarning:
		return 2
	case StatusHealthy:
		return 1
	default:
		return 0
	}
}

// LastMeasurementTime returns the newest creation timestamp in ms.
// ok is false for an empty collection.
func LastMeasurementTime(ms []telemetry.Measurement) (ts telemetry.Timestamp, ok bool) {
	for i, m := range ms {
		if i == 0 || m.CreationTimestamp > ts {
			ts = m.CreationTimestamp
		}
	}
	return ts, len(ms) > 0
}

// LastLogTime returns the newest creation timestamp in logs.
// ok is false for an empty collection.
func LastLogTime(logs []telemetry.LogEntry) (ts telemetry.Timestamp, ok bool) {
	latest, ok := LatestLog(logs)
	return latest.CreationTimestamp, ok
}

// LatestLog returns the log entry with the newest creation timestamp.
func LatestLog(logs []telemetry.LogEntry) (telemetry.LogEntry, bool) {
	var latest telemetry.LogEntry
	for i, l := range logs {
		if i == 0 || l.CreationTimestamp > latest.CreationTimestamp {
			latest = l
		}
	}
	return latest, len(logs) > 0
}

// LatestMeasurement returns the measurement with the newest creation timestamp.
func LatestMeasurement(ms []telemetry.Measurement) (telemetry.Measurement, bool) {
	var latest telemetry.Measurement
	for i, m := range ms {
		if i == 0 || m.CreationTimestamp > latest.CreationTimestamp {
			latest = m
		}
	}
	return latest, len(ms) > 0
}

// RenderTime formats a timestamp relative to now, or the "never" placeholder
// when there is no timestamp.
func RenderTime(ts telemetry.Timestamp, ok bool, now time.Time) string {
	if !ok {
		return NeverPlaceholder
	}
	return humanize.RelTime(ts.Time(), now, "ago", "from now")
}

// DeriveStatus computes the indicator for a sensor:
//   - unknown when no request for the sensor has succeeded
//   - error or warning when the newest log entry has that severity
//   - warning when staleAfter is set and the newest data or log is older
//     than staleAfter, or there is no data at all
//   - healthy otherwise
func DeriveStatus(st state.SensorState, now time.Time, staleAfter time.Duration) SensorStatus {
	if !st.Loaded() {
		return StatusUnknown
	}

	if latest, ok := LatestLog(st.Logs); ok {
		switch latest.Severity {
		case telemetry.SeverityError:
			return StatusError
		case telemetry.SeverityWarning:
			return StatusWarning
		}
	}

	if staleAfter > 0 {
		newest, ok := newestActivity(st)
		if !ok || now.Sub(newest.Time()) > staleAfter {
			return StatusWarning
		}
	}

	return StatusHealthy
}

func newestActivity(st state.SensorState) (telemetry.Timestamp, bool) {
	data, dataOK := LastMeasurementTime(st.Measurements)
	logs, logsOK := LastLogTime(st.Logs)
	switch {
	case dataOK && logsOK:
		return max(data, logs), true
	case dataOK:
		return data, true
	case logsOK:
		return logs, true
	default:
		return 0, false
	}
}
