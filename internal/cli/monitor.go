package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/tum-esm/sensorboard/internal/monitor"
)

// monitorOptions holds options for the monitor command.
type monitorOptions struct {
	Interval string // --interval; empty uses monitor.interval from config
	Sensors  []string
}

// monitorCommand starts the TUI dashboard.
func monitorCommand(ctx context.Context, opts monitorOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(appOptions{
		ConfigPath: cfgFile,
		Verbose:    verbose,
		LogFormat:  logFormat,
		LogFile:    logFile,
		TUI:        true,
		Sensors:    opts.Sensors,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	interval, err := ParseInterval(opts.Interval, a.cfg.Monitor.Interval)
	if err != nil {
		return err
	}

	if len(a.cfg.Sensors) == 0 {
		return sberrors.New(sberrors.ErrConfig,
			"No sensors configured",
			"Add one with 'sensorboard sensors add <name> <id>'")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rec, err := a.recorder()
	if err != nil {
		return err
	}
	if rec != nil {
		recDone := make(chan struct{})
		go func() {
			defer close(recDone)
			rec.Run(ctx)
		}()
		// Stop recording before a.Close releases the database.
		defer func() {
			cancel()
			<-recDone
			if err := rec.Sync(); err != nil {
				a.log.Warn("history not fully recorded: %v", err)
			}
		}()
	}

	model := monitor.NewModel(ctx, monitor.Options{
		Store:      a.store,
		Populator:  a.populator(),
		Sensors:    a.cfg.SensorNames(),
		Interval:   interval,
		StaleAfter: a.cfg.Monitor.StaleAfter,
		ServerURL:  a.cfg.ServerURL,
	})
	defer model.Close()

	a.log.Info("dashboard started for %d sensors against %s", len(a.cfg.Sensors), a.cfg.ServerURL)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return sberrors.WrapWithCode(err, sberrors.ErrUI,
			"Dashboard exited unexpectedly",
			"Try a different terminal, or use 'sensorboard fetch' for plain output")
	}
	return nil
}
