package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tum-esm/sensorboard/internal/config"
	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/tum-esm/sensorboard/internal/storage"
	"github.com/tum-esm/sensorboard/internal/ui"
)

// sensorsOptions holds options for the sensors command.
type sensorsOptions struct {
	Format string
	Out    io.Writer
	Stderr io.Writer
	Now    func() time.Time
}

// SensorEntry is one configured sensor in machine-readable output.
type SensorEntry struct {
	Name     string     `json:"name" yaml:"name"`
	ID       string     `json:"id" yaml:"id"`
	LastSeen *time.Time `json:"last_seen,omitempty" yaml:"last_seen,omitempty"`
}

// sensorsCommand lists the configured sensors.
func sensorsCommand(opts sensorsOptions) error {
	format, err := ParseFormat(opts.Format, FormatText, FormatJSON, FormatYAML)
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
		Stderr:     stderr,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	history, err := a.openStorage()
	switch {
	case errors.Is(err, storage.ErrDisabled):
		history = nil
	case err != nil:
		a.log.Warn("history unavailable, last seen times omitted: %v", err)
		history = nil
	}

	entries := make([]SensorEntry, 0, len(a.cfg.Sensors))
	for _, s := range a.cfg.Sensors {
		entry := SensorEntry{Name: s.Name, ID: s.ID}
		if history != nil {
			seen, ok, err := history.LastSeen(s.Name)
			if err != nil {
				a.log.Warn("could not read last seen time of %s: %v", s.Name, err)
			} else if ok {
				entry.LastSeen = &seen
			}
		}
		entries = append(entries, entry)
	}

	if format != FormatText {
		return writeStructured(opts.Out, format, entries)
	}

	if a.cfgPath != "" {
		fmt.Fprintf(opts.Out, "%d sensors from %s\n\n", len(entries), a.cfgPath)
	} else {
		fmt.Fprintf(opts.Out, "%d built-in sensors (no config file)\n\n", len(entries))
	}

	columns := []ui.TableColumn{
		{Title: "SENSOR", Width: 28},
		{Title: "ID", Width: 38},
		{Title: "LAST SEEN", Width: 16},
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		seen := "-"
		if e.LastSeen != nil {
			seen = humanize.RelTime(*e.LastSeen, opts.Now(), "ago", "from now")
		}
		rows = append(rows, []string{e.Name, e.ID, seen})
	}
	fmt.Fprintln(opts.Out, ui.RenderSimpleTable(columns, rows))
	return nil
}

// sensorsAddCommand adds or updates a sensor in the config file.
func sensorsAddCommand(out io.Writer, name, id string) error {
	sensor := config.Sensor{Name: name, ID: id}
	if err := config.ValidateSensor(sensor); err != nil {
		return sberrors.WrapWithCode(err, sberrors.ErrConfig,
			fmt.Sprintf("Can't add sensor '%s'", name),
			"Sensor names can't contain whitespace or '/', and ids must be UUIDs")
	}

	path, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		return sberrors.New(sberrors.ErrConfig,
			"Config file not found",
			"Run 'sensorboard init' to create one first")
	}

	if err := config.AddSensor(path, sensor); err != nil {
		return sberrors.WrapWithCode(err, sberrors.ErrConfig,
			fmt.Sprintf("Failed to update %s", path),
			"Check the file is valid YAML and writable")
	}

	fmt.Fprintf(out, "%s Added sensor %s to %s\n", ui.SymbolSuccess, name, path)
	return nil
}
