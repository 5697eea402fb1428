package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tum-esm/sensorboard/internal/config"
	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/tum-esm/sensorboard/internal/storage"
)

// historyOptions holds options for the history command.
type historyOptions struct {
	Sensor string
	Since  string
	Format string
	Out    io.Writer
	Stderr io.Writer
	Now    func() time.Time
}

// historyCommand exports recorded measurements and logs for one sensor.
func historyCommand(opts historyOptions) error {
	format, err := ParseFormat(opts.Format, FormatCSV, FormatJSON)
	if err != nil {
		return err
	}
	since, err := ParseDurationFlag("since", opts.Since, 24*time.Hour)
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
		Sensors:    []string{opts.Sensor},
		Stderr:     stderr,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Storage.Backend == config.BackendMemory {
		a.log.Warn("storage.backend is memory, nothing survives between runs")
	}

	history, err := a.openStorage()
	if errors.Is(err, storage.ErrDisabled) {
		return sberrors.New(sberrors.ErrStorage,
			"History recording is disabled",
			"Set storage.backend to 'sqlite' and run 'sensorboard monitor' or 'sensorboard fetch' to record")
	}
	if err != nil {
		return sberrors.WrapWithCode(err, sberrors.ErrStorage,
			"Can't open history storage",
			"Check storage.backend and storage.path in your config")
	}

	now := opts.Now()
	var from time.Time
	if since > 0 {
		from = now.Add(-since)
	}

	records, err := history.History(opts.Sensor, from, time.Time{})
	if err != nil {
		return sberrors.WrapWithCode(err, sberrors.ErrStorage,
			fmt.Sprintf("Can't read history of %s", opts.Sensor),
			"Check storage.path points to a sensorboard database")
	}
	a.log.Debug("exporting %d records for %s", len(records), opts.Sensor)

	if format == FormatJSON {
		err = storage.ExportJSON(opts.Out, records, now)
	} else {
		err = storage.ExportCSV(opts.Out, records)
	}
	if err != nil {
		return sberrors.WrapWithCode(err, sberrors.ErrStorage,
			"Failed to write export", "")
	}
	return nil
}
