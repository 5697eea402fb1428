package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/tum-esm/sensorboard/internal/config"
	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/tum-esm/sensorboard/internal/ui"
	"gopkg.in/yaml.v3"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string // Directory to write into; defaults to "."
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
	Out            io.Writer
}

// initAnswers are the values the interactive form collects.
type initAnswers struct {
	ServerURL string
	Interval  string
	Record    bool
}

// Init creates a new .sensorboard.yaml configuration file.
func Init(opts InitOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return sberrors.New(sberrors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return sberrors.WrapWithCode(err, sberrors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	if !opts.NonInteractive {
		answers := initAnswers{
			ServerURL: cfg.ServerURL,
			Interval:  "0s",
		}
		if err := askInitAnswers(&answers); err != nil {
			return err
		}
		if err := applyInitAnswers(cfg, answers); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	content, err := renderConfig(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return sberrors.WrapWithCode(err, sberrors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  sensorboard fetch     - Fetch once and print a summary")
	fmt.Fprintln(out, "  sensorboard monitor   - Open the dashboard")
	fmt.Fprintln(out, "  sensorboard sensors   - List configured sensors")

	return nil
}

// askInitAnswers runs the interactive form.
func askInitAnswers(answers *initAnswers) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telemetry server").
				Description("Base URL of the telemetry service").
				Placeholder(config.DefaultServerURL).
				Value(&answers.ServerURL).
				Validate(func(s string) error {
					u, err := url.Parse(strings.TrimSpace(s))
					if err != nil || u.Scheme == "" || u.Host == "" {
						return fmt.Errorf("enter a URL like http://host:8000")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Dashboard refresh interval").
				Description("0s fetches once; press r to refresh by hand").
				Placeholder("1m").
				Value(&answers.Interval).
				Validate(func(s string) error {
					_, err := ParseInterval(strings.TrimSpace(s), 0)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Record history to a local SQLite database?").
				Value(&answers.Record),
		),
	)

	if err := form.Run(); err != nil {
		return sberrors.WrapWithCode(err, sberrors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive flag")
	}
	return nil
}

// applyInitAnswers copies form answers into cfg.
func applyInitAnswers(cfg *config.Config, answers initAnswers) error {
	if s := strings.TrimSpace(answers.ServerURL); s != "" {
		cfg.ServerURL = strings.TrimRight(s, "/")
	}

	interval, err := ParseInterval(strings.TrimSpace(answers.Interval), 0)
	if err != nil {
		return err
	}
	cfg.Monitor.Interval = interval

	if answers.Record {
		cfg.Storage.Backend = config.BackendSQLite
	}
	return nil
}

// renderConfig marshals cfg with a header comment. Durations are written as
// strings so the file stays readable.
func renderConfig(cfg *config.Config) ([]byte, error) {
	doc := configFile{
		Version:   cfg.Version,
		ServerURL: cfg.ServerURL,
		NetworkID: cfg.NetworkID,
		Sensors:   cfg.Sensors,
		Fetch:     fetchFile{Timeout: durationString(cfg.Fetch.Timeout)},
		Monitor: monitorFile{
			Interval:   durationString(cfg.Monitor.Interval),
			StaleAfter: durationString(cfg.Monitor.StaleAfter),
		},
		Storage: storageFile{
			Backend:   cfg.Storage.Backend,
			Path:      cfg.Storage.Path,
			Retention: durationString(cfg.Storage.Retention),
		},
		Log: cfg.Log,
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, sberrors.WrapWithCode(err, sberrors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	header := `# sensorboard configuration
# Run 'sensorboard monitor' to open the dashboard
# storage.backend: none, memory or sqlite

`
	return append([]byte(header), data...), nil
}

type configFile struct {
	Version   int              `yaml:"version"`
	ServerURL string           `yaml:"server_url"`
	NetworkID string           `yaml:"network_id"`
	Sensors   []config.Sensor  `yaml:"sensors"`
	Fetch     fetchFile        `yaml:"fetch"`
	Monitor   monitorFile      `yaml:"monitor"`
	Storage   storageFile      `yaml:"storage"`
	Log       config.LogConfig `yaml:"log"`
}

type fetchFile struct {
	Timeout string `yaml:"timeout"`
}

type monitorFile struct {
	Interval   string `yaml:"interval"`
	StaleAfter string `yaml:"stale_after"`
}

type storageFile struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	Retention string `yaml:"retention"`
}

func durationString(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	return d.String()
}

// initCommand is the implementation called by the cobra command.
func initCommand(opts InitOptions) error {
	return Init(opts)
}
