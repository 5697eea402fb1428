// Package populate fans out the telemetry requests that fill the state store.
//
// One run issues a single status request plus three requests per configured
// sensor (measurements, logs, aggregates). Every request runs in its own
// goroutine and writes its own key on success; a failure is logged and
// dropped without touching any other request.
package populate

import (
	"context"
	"sync"
	"time"

	"github.com/tum-esm/sensorboard/internal/config"
	"github.com/tum-esm/sensorboard/internal/logger"
	"github.com/tum-esm/sensorboard/internal/state"
	"github.com/tum-esm/sensorboard/internal/telemetry"
)

// Fetcher is the subset of the telemetry client a Populator needs.
type Fetcher interface {
	GetStatus(ctx context.Context) (telemetry.ServerStatus, error)
	GetMeasurements(ctx context.Context, sensorID string) ([]telemetry.Measurement, error)
	GetLogs(ctx context.Context, sensorID string) ([]telemetry.LogEntry, error)
	GetLogAggregates(ctx context.Context, sensorID string) (telemetry.LogAggregates, error)
}

// Failure describes one dropped request.
type Failure struct {
	Kind   state.Kind
	Sensor string
	Err    error
}

// Report summarizes one Run.
type Report struct {
	Requests  int
	Succeeded int
	Failed    []Failure
	Started   time.Time
	Duration  time.Duration
}

// OK reports whether every request succeeded.
func (r Report) OK() bool {
	return len(r.Failed) == 0
}

// Populator fills a state.Store from a Fetcher.
type Populator struct {
	fetcher Fetcher
	store   *state.Store
	sensors  []config.Sensor
	log      logger.Logger
	progress ProgressFunc
}

// ProgressFunc is called once for every finished request, from the
// request's goroutine. err is nil on success.
type ProgressFunc func(kind state.Kind, sensor string, err error)

// Option configures a Populator.
type Option func(*Populator)

// WithLogger sets the logger used for dropped requests.
func WithLogger(l logger.Logger) Option {
	return func(p *Populator) {
		if l != nil {
			p.log = l
		}
	}
}

// WithProgress reports every finished request to fn, successful or not.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Populator) {
		p.progress = fn
	}
}

// New creates a Populator for the given sensors.
func New(f Fetcher, store *state.Store, sensors []config.Sensor, opts ...Option) *Populator {
	p := &Populator{
		fetcher: f,
		store:   store,
		sensors: append([]config.Sensor(nil), sensors...),
		log:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Requests returns how many requests a single Run issues.
func (p *Populator) Requests() int {
	return 1 + 3*len(p.sensors)
}

// Run issues every request concurrently and waits for all of them.
// It never returns an error: failures are logged, dropped and listed in the
// returned Report.
func (p *Populator) Run(ctx context.Context) Report {
	started := time.Now()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		report = Report{Requests: p.Requests(), Started: started}
	)

	record := func(kind state.Kind, sensor string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			report.Succeeded++
			return
		}
		report.Failed = append(report.Failed, Failure{Kind: kind, Sensor: sensor, Err: err})
	}

	spawn := func(kind state.Kind, sensor string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := fn()
			if err != nil {
				if sensor == "" {
					p.log.Warn("could not load server status: %v", err)
				} else {
					p.log.Warn("could not load %s for sensor %s: %v", kind, sensor, err)
				}
			}
			record(kind, sensor, err)
			if p.progress != nil {
				p.progress(kind, sensor, err)
			}
		}()
	}

	spawn(state.KindStatus, "", func() error {
		status, err := p.fetcher.GetStatus(ctx)
		if err != nil {
			return err
		}
		p.store.SetServerStatus(status)
		return nil
	})

	for _, s := range p.sensors {
		spawn(state.KindMeasurements, s.Name, func() error {
			ms, err := p.fetcher.GetMeasurements(ctx, s.ID)
			if err != nil {
				return err
			}
			p.store.SetMeasurements(s.Name, ms)
			return nil
		})
		spawn(state.KindLogs, s.Name, func() error {
			logs, err := p.fetcher.GetLogs(ctx, s.ID)
			if err != nil {
				return err
			}
			p.store.SetLogs(s.Name, logs)
			return nil
		})
		spawn(state.KindAggregates, s.Name, func() error {
			agg, err := p.fetcher.GetLogAggregates(ctx, s.ID)
			if err != nil {
				return err
			}
			p.store.SetAggregates(s.Name, agg)
			return nil
		})
	}

	wg.Wait()

	report.Duration = time.Since(started)
	p.log.Debug("populate finished: %d/%d requests succeeded in %s",
		report.Succeeded, report.Requests, report.Duration.Round(time.Millisecond))
	return report
}

// Loop runs immediately and then every interval until ctx is done.
// An interval of zero runs once. onReport, if non-nil, receives every Report.
func (p *Populator) Loop(ctx context.Context, interval time.Duration, onReport func(Report)) {
	emit := func(r Report) {
		if onReport != nil {
			onReport(r)
		}
	}

	emit(p.Run(ctx))
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			emit(p.Run(ctx))
		}
	}
}
