package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tum-esm/sensorboard/internal/config"
	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/tum-esm/sensorboard/internal/logger"
	"github.com/tum-esm/sensorboard/internal/populate"
	"github.com/tum-esm/sensorboard/internal/state"
	"github.com/tum-esm/sensorboard/internal/storage"
	"github.com/tum-esm/sensorboard/internal/telemetry"
	"golang.org/x/term"
)

// appOptions controls how a command's dependencies are built.
type appOptions struct {
	ConfigPath string
	Verbose    bool
	LogFormat  string // overrides log.format
	LogFile    string // overrides log.file
	// TUI sends logs to the log file or discards them so they do not
	// corrupt the alternate screen.
	TUI bool
	// Sensors limits the run to these sensor names, in config order.
	Sensors []string
	// Stderr receives logs when no log file is configured. Defaults to os.Stderr.
	Stderr io.Writer
}

// app bundles everything one command invocation needs.
type app struct {
	cfg     *config.Config
	cfgPath string
	log     logger.Logger
	client  *telemetry.Client
	store   *state.Store

	closers []func() error
}

// newApp loads and validates the config, then builds the logger, telemetry
// client and state store from it.
func newApp(opts appOptions) (*app, error) {
	cfg, cfgPath, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	if opts.LogFile != "" {
		cfg.Log.File = config.ExpandTilde(opts.LogFile)
	}

	if unknown := cfg.FilterSensors(opts.Sensors); len(unknown) > 0 {
		return nil, sberrors.New(sberrors.ErrConfig,
			fmt.Sprintf("Unknown sensor: %s", unknown[0]),
			fmt.Sprintf("Configured sensors: %v", cfg.SensorNames()))
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		cfgPath: cfgPath,
		store:   state.New(),
	}

	log, closeLog, err := newLogger(cfg.Log, opts)
	if err != nil {
		return nil, err
	}
	a.log = log
	if closeLog != nil {
		a.closers = append(a.closers, closeLog)
	}

	a.client = telemetry.NewClient(cfg.ServerURL, cfg.NetworkID,
		telemetry.WithTimeout(cfg.Fetch.Timeout))

	if cfgPath != "" {
		a.log.Debug("loaded config from %s", cfgPath)
	} else {
		a.log.Debug("no config file found, using built-in defaults")
	}

	return a, nil
}

// newLogger builds the command logger from the log config.
func newLogger(cfg config.LogConfig, opts appOptions) (logger.Logger, func() error, error) {
	out := opts.Stderr
	if out == nil {
		out = os.Stderr
	}

	var closeFn func() error
	switch {
	case cfg.File != "":
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, sberrors.WrapWithCode(err, sberrors.ErrConfig,
				fmt.Sprintf("Can't create log directory for %s", cfg.File),
				"Check the log.file setting or pass --log-file")
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, sberrors.WrapWithCode(err, sberrors.ErrConfig,
				fmt.Sprintf("Can't open log file %s", cfg.File),
				"Check the log.file setting or pass --log-file")
		}
		out = f
		closeFn = f.Close
	case opts.TUI:
		out = io.Discard
	}

	log := logger.New("sensorboard", logger.Options{
		Format:  cfg.Format,
		Output:  out,
		Debug:   opts.Verbose || os.Getenv(logger.DebugEnv) != "",
		NoColor: noColor || !isTerminal(out),
	})
	logger.SetDefault(log)

	return log, closeFn, nil
}

// populator returns a Populator over the configured sensors.
func (a *app) populator(opts ...populate.Option) *populate.Populator {
	opts = append([]populate.Option{populate.WithLogger(a.log)}, opts...)
	return populate.New(a.client, a.store, a.cfg.Sensors, opts...)
}

// openStorage opens the configured history backend. It returns
// storage.ErrDisabled when recording is off.
func (a *app) openStorage() (storage.Storage, error) {
	s, err := storage.Open(a.cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, s.Close)
	return s, nil
}

// recorder returns a Recorder when history recording is enabled, or nil.
func (a *app) recorder() (*storage.Recorder, error) {
	s, err := a.openStorage()
	if errors.Is(err, storage.ErrDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, sberrors.WrapWithCode(err, sberrors.ErrStorage,
			"Can't open history storage",
			"Check storage.backend and storage.path in your config")
	}
	return storage.NewRecorder(a.store, s,
		storage.WithRecorderLogger(a.log),
		storage.WithRetention(a.cfg.Storage.Retention),
	), nil
}

// Close releases log files and storage in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && a.log != nil {
			a.log.Debug("close: %v", err)
		}
	}
	a.closers = nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
