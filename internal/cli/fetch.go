package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/tum-esm/sensorboard/internal/monitor"
	"github.com/tum-esm/sensorboard/internal/populate"
	"github.com/tum-esm/sensorboard/internal/state"
	"github.com/tum-esm/sensorboard/internal/storage"
	"github.com/tum-esm/sensorboard/internal/telemetry"
	"github.com/tum-esm/sensorboard/internal/ui"
)

// fetchOptions holds options for the fetch command.
type fetchOptions struct {
	Format  string
	Sensors []string
	Watch   string // --watch; empty fetches once
	Out     io.Writer
	Stderr  io.Writer
	Now     func() time.Time
}

// FetchResult is the machine-readable outcome of one fetch.
type FetchResult struct {
	Server     string          `json:"server" yaml:"server"`
	Network    string          `json:"network" yaml:"network"`
	Requests   int             `json:"requests" yaml:"requests"`
	Succeeded  int             `json:"succeeded" yaml:"succeeded"`
	DurationMs int64           `json:"duration_ms" yaml:"duration_ms"`
	Failures   []FetchFailure  `json:"failures" yaml:"failures"`
	Sensors    []SensorSummary `json:"sensors" yaml:"sensors"`
}

// FetchFailure is one dropped request.
type FetchFailure struct {
	Kind   string `json:"kind" yaml:"kind"`
	Sensor string `json:"sensor,omitempty" yaml:"sensor,omitempty"`
	Error  string `json:"error" yaml:"error"`
}

// SensorSummary is what the dashboard would show for one sensor.
type SensorSummary struct {
	Name         string     `json:"name" yaml:"name"`
	ID           string     `json:"id" yaml:"id"`
	Status       string     `json:"status" yaml:"status"`
	LastData     *time.Time `json:"last_data" yaml:"last_data"`
	LastLogs     *time.Time `json:"last_logs" yaml:"last_logs"`
	Measurements int        `json:"measurements" yaml:"measurements"`
	Logs         int        `json:"logs" yaml:"logs"`
}

// fetchCommand runs one populate cycle, or one per --watch interval, and
// prints the outcome.
func fetchCommand(ctx context.Context, opts fetchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format, err := ParseFormat(opts.Format, FormatText, FormatJSON, FormatYAML)
	if err != nil {
		return err
	}
	watch, err := parseRefreshInterval("watch", opts.Watch, 0)
	if err != nil {
		return err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	a, err := newApp(appOptions{
		ConfigPath: cfgFile,
		Verbose:    verbose,
		LogFormat:  logFormat,
		LogFile:    logFile,
		Sensors:    opts.Sensors,
		Stderr:     stderr,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.recorder()
	if err != nil {
		return err
	}

	if format == FormatText {
		ui.PrintHeader(opts.Out, ui.HeaderInfo{
			Version: formatVersion(version),
			Server:  a.cfg.ServerURL,
			Network: a.cfg.NetworkID,
		})
	}

	if watch > 0 {
		return watchFetch(ctx, a, rec, format, watch, opts)
	}

	var (
		progress *ui.ParallelProgress
		popOpts  []populate.Option
	)
	if format == FormatText && isTerminal(stderr) {
		var hook populate.ProgressFunc
		progress, hook = newFetchProgress(stderr, true, a.cfg.SensorNames())
		popOpts = append(popOpts, populate.WithProgress(hook))
		progress.Start()
	}

	report := a.populator(popOpts...).Run(ctx)

	if progress != nil {
		progress.Stop()
		fmt.Fprintln(stderr)
	}
	syncHistory(a, rec)

	if err := printFetchReport(opts.Out, a, format, report, opts.Now()); err != nil {
		return err
	}

	if report.Requests > 0 && report.Succeeded == 0 {
		return sberrors.New(sberrors.ErrFetch,
			fmt.Sprintf("All %d requests to %s failed", report.Requests, a.cfg.ServerURL),
			"Check server_url and your network connection, or run with --verbose")
	}
	return nil
}

// watchFetch re-fetches every interval until ctx is done or the process is
// interrupted. Every report is printed as it lands; failed cycles do not
// stop the loop.
func watchFetch(ctx context.Context, a *app, rec *storage.Recorder, format string, interval time.Duration, opts fetchOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	a.log.Info("watching %d sensors every %s", len(a.cfg.Sensors), interval)

	var writeErr error
	a.populator().Loop(ctx, interval, func(report populate.Report) {
		// A run cut short by shutdown only holds cancelled requests
		if ctx.Err() != nil || writeErr != nil {
			return
		}
		syncHistory(a, rec)

		if format == FormatYAML {
			fmt.Fprintln(opts.Out, "---")
		}
		if format == FormatText {
			fmt.Fprintf(opts.Out, "\nFetched at %s\n", report.Started.Format("15:04:05"))
		}
		if err := printFetchReport(opts.Out, a, format, report, opts.Now()); err != nil {
			writeErr = err
			cancel()
		}
	})
	return writeErr
}

// newFetchProgress builds a progress display with one line for the status
// request and one per sensor, and the populate hook that feeds it.
func newFetchProgress(w io.Writer, isTTY bool, sensors []string) (*ui.ParallelProgress, populate.ProgressFunc) {
	progress := ui.NewParallelProgress(isTTY)
	progress.SetWriter(w)
	progress.AddTask(statusTaskName, 1)
	for _, name := range sensors {
		progress.AddTask(name, 3)
	}
	return progress, func(kind state.Kind, sensor string, err error) {
		name := sensor
		if kind == state.KindStatus {
			name = statusTaskName
		}
		progress.RequestDone(name, err == nil)
	}
}

// statusTaskName labels the server status line of the fetch progress.
const statusTaskName = "server status"

// syncHistory records the store contents when history recording is on.
func syncHistory(a *app, rec *storage.Recorder) {
	if rec == nil {
		return
	}
	if err := rec.Sync(); err != nil {
		a.log.Warn("history not fully recorded: %v", err)
	}
}

// printFetchReport writes the summary and sensor table, or the structured
// result.
func printFetchReport(w io.Writer, a *app, format string, report populate.Report, now time.Time) error {
	result := buildFetchResult(a, report, now, a.cfg.Monitor.StaleAfter)
	if format != FormatText {
		return writeStructured(w, format, result)
	}
	fmt.Fprintln(w, ui.RenderSummary(summaryForUI(report)))
	fmt.Fprintln(w)
	fmt.Fprint(w, ui.RenderSensorTable(sensorRows(result.Sensors, now)))
	return nil
}

// buildFetchResult collects the report and the resulting store contents.
func buildFetchResult(a *app, report populate.Report, now time.Time, staleAfter time.Duration) FetchResult {
	result := FetchResult{
		Server:     a.cfg.ServerURL,
		Network:    a.cfg.NetworkID,
		Requests:   report.Requests,
		Succeeded:  report.Succeeded,
		DurationMs: report.Duration.Milliseconds(),
		Failures:   make([]FetchFailure, 0, len(report.Failed)),
		Sensors:    make([]SensorSummary, 0, len(a.cfg.Sensors)),
	}

	for _, f := range report.Failed {
		result.Failures = append(result.Failures, FetchFailure{
			Kind:   string(f.Kind),
			Sensor: f.Sensor,
			Error:  f.Err.Error(),
		})
	}

	for _, s := range a.cfg.Sensors {
		st, _ := a.store.Sensor(s.Name)
		result.Sensors = append(result.Sensors, summarizeSensor(s.Name, s.ID, st, now, staleAfter))
	}

	return result
}

// summarizeSensor derives the list-view fields for one sensor. A sensor
// without any loaded state is reported as unknown with no timestamps.
func summarizeSensor(name, id string, st state.SensorState, now time.Time, staleAfter time.Duration) SensorSummary {
	summary := SensorSummary{
		Name:         name,
		ID:           id,
		Status:       monitor.DeriveStatus(st, now, staleAfter).String(),
		Measurements: len(st.Measurements),
		Logs:         len(st.Logs),
	}
	if ts, ok := monitor.LastMeasurementTime(st.Measurements); ok {
		summary.LastData = timePtr(ts)
	}
	if ts, ok := monitor.LastLogTime(st.Logs); ok {
		summary.LastLogs = timePtr(ts)
	}
	return summary
}

func timePtr(ts telemetry.Timestamp) *time.Time {
	t := ts.Time()
	return &t
}

// sensorRows converts summaries into table rows.
func sensorRows(sensors []SensorSummary, now time.Time) []ui.SensorTableRow {
	rows := make([]ui.SensorTableRow, 0, len(sensors))
	for _, s := range sensors {
		rows = append(rows, ui.SensorTableRow{
			Status:   tableStatus(s.Status),
			Name:     s.Name,
			ID:       s.ID,
			LastData: relTime(s.LastData, now),
			LastLogs: relTime(s.LastLogs, now),
		})
	}
	return rows
}

func relTime(t *time.Time, now time.Time) string {
	if t == nil {
		return monitor.NeverPlaceholder
	}
	return monitor.RenderTime(telemetry.TimestampOf(*t), true, now)
}

// tableStatus maps a sensor status name to the table's indicator.
func tableStatus(status string) string {
	switch status {
	case monitor.StatusHealthy.String():
		return "ok"
	case monitor.StatusWarning.String():
		return "warn"
	case monitor.StatusError.String():
		return "fail"
	default:
		return ""
	}
}

// summaryForUI converts a populate report for the summary renderer.
func summaryForUI(report populate.Report) ui.FetchSummary {
	summary := ui.FetchSummary{
		Requests:  report.Requests,
		Succeeded: report.Succeeded,
		Duration:  report.Duration,
	}
	for _, f := range report.Failed {
		summary.Failures = append(summary.Failures, ui.FetchFailure{
			Kind:    string(f.Kind),
			Sensor:  f.Sensor,
			Message: f.Err.Error(),
		})
	}
	return summary
}
