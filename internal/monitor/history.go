package monitor

import (
	"sort"
	"sync"

	"github.com/tum-esm/sensorboard/internal/telemetry"
)

// DefaultHistorySize is the default number of values retained per measurement key.
const DefaultHistorySize = 120

// History keeps the numeric measurement values of every sensor in ring
// buffers, so graphs span more than the window of a single fetch.
// It is safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	size    int
	sensors map[string]*sensorHistory
}

// sensorHistory holds one ring buffer per measurement key of a sensor.
type sensorHistory struct {
	series map[string]*ringBuffer
	// newest is the creation timestamp of the newest recorded measurement.
	newest telemetry.Timestamp
	seen   bool
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history with the given number of values per key.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size:    size,
		sensors: make(map[string]*sensorHistory),
	}
}

// Record appends every measurement newer than the newest one already
// recorded for the sensor, oldest first. Re-fetching an overlapping window
// adds nothing twice. Non-numeric values are skipped.
func (h *History) Record(sensor string, ms []telemetry.Measurement) int {
	if len(ms) == 0 {
		return 0
	}

	sorted := make([]telemetry.Measurement, len(ms))
	copy(sorted, ms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreationTimestamp < sorted[j].CreationTimestamp
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	hist := h.getOrCreateSensor(sensor)
	added := 0
	for _, m := range sorted {
		if hist.seen && m.CreationTimestamp <= hist.newest {
			continue
		}
		for key, v := range m.Value {
			f, ok := toFloat(v)
			if !ok {
				continue
			}
			buf, ok := hist.series[key]
			if !ok {
				buf = newRingBuffer(h.size)
				hist.series[key] = buf
			}
			buf.push(f)
		}
		hist.newest = m.CreationTimestamp
		hist.seen = true
		added++
	}
	return added
}

// Series returns the last count values of a measurement key, oldest first.
func (h *History) Series(sensor, key string, count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.sensors[sensor]
	if !ok {
		return nil
	}
	buf, ok := hist.series[key]
	if !ok {
		return nil
	}
	return buf.getLast(count)
}

// Keys returns the recorded measurement keys of a sensor, sorted.
func (h *History) Keys(sensor string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.sensors[sensor]
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(hist.series))
	for k := range hist.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Count returns how many values are stored for a measurement key.
func (h *History) Count(sensor, key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.sensors[sensor]
	if !ok {
		return 0
	}
	if buf, ok := hist.series[key]; ok {
		return buf.count
	}
	return 0
}

// Clear removes all history for the sensor.
func (h *History) Clear(sensor string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sensors, sensor)
}

// getOrCreateSensor returns the history for a sensor, creating it if needed.
// Must be called with h.mu held.
func (h *History) getOrCreateSensor(sensor string) *sensorHistory {
	hist, ok := h.sensors[sensor]
	if !ok {
		hist = &sensorHistory{series: make(map[string]*ringBuffer)}
		h.sensors[sensor] = hist
	}
	return hist
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}
	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)
	// head is the next write position, so the newest value sits at head-1
	start := (r.head - count + r.size) % r.size
	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}
	return result
}
