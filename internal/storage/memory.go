package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/tum-esm/sensorboard/internal/telemetry"
)

type recordKey struct {
	kind Kind
	ts   telemetry.Timestamp
}

type memoryStorage struct {
	mu   sync.RWMutex
	data map[string]map[recordKey]Record // sensor -> records
}

// NewMemoryStorage returns a Storage that lives for the process lifetime.
func NewMemoryStorage() Storage {
	return &memoryStorage{
		data: make(map[string]map[recordKey]Record),
	}
}

func (m *memoryStorage) save(sensor string, records []Record) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[sensor]
	if !ok {
		bucket = make(map[recordKey]Record)
		m.data[sensor] = bucket
	}

	added := 0
	for _, r := range records {
		key := recordKey{kind: r.Kind, ts: r.Timestamp}
		if _, exists := bucket[key]; exists {
			continue
		}
		bucket[key] = r
		added++
	}
	return added
}

func (m *memoryStorage) SaveMeasurements(sensor string, ms []telemetry.Measurement) (int, error) {
	return m.save(sensor, measurementRecords(sensor, ms)), nil
}

func (m *memoryStorage) SaveLogs(sensor string, logs []telemetry.LogEntry) (int, error) {
	return m.save(sensor, logRecords(sensor, logs)), nil
}

func (m *memoryStorage) LastSeen(sensor string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var newest telemetry.Timestamp
	found := false
	for key := range m.data[sensor] {
		if !found || key.ts > newest {
			newest = key.ts
			found = true
		}
	}
	if !found {
		return time.Time{}, false, nil
	}
	return newest.Time(), true, nil
}

func (m *memoryStorage) History(sensor string, from, to time.Time) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lo, hi := bounds(from, to)

	var filtered []Record
	for _, r := range m.data[sensor] {
		if r.Timestamp >= lo && r.Timestamp <= hi {
			filtered = append(filtered, r)
		}
	}

	sortRecords(filtered)
	return filtered, nil
}

func (m *memoryStorage) Cleanup(olderThan time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := telemetry.TimestampOf(olderThan)
	for sensor, bucket := range m.data {
		for key := range bucket {
			if key.ts < cutoff {
				delete(bucket, key)
			}
		}
		if len(bucket) == 0 {
			delete(m.data, sensor)
		}
	}

	return nil
}

func (m *memoryStorage) Close() error {
	return nil
}

// sortRecords orders records oldest first, measurements before logs on ties.
func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Timestamp != records[j].Timestamp {
			return records[i].Timestamp < records[j].Timestamp
		}
		return records[i].Kind > records[j].Kind
	})
}
