package cli

import (
	"os"

	sberrors "github.com/tum-esm/sensorboard/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	monitorIntervalFlag string
	monitorSensorsFlag  string
	fetchFormatFlag     string
	fetchSensorsFlag    string
	fetchWatchFlag      string
	statusFormatFlag    string
	sensorsFormatFlag   string
	initForce           bool
	initNonInteractive  bool
	historySinceFlag    string
	historyFormatFlag   string
)

// monitorCmd starts the TUI dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live dashboard of every configured sensor",
	Long: `Start an interactive TUI dashboard listing every configured sensor with a
status indicator and the time of its newest measurement and log.

All requests run concurrently. A sensor shows up as soon as any of its
requests succeeds; sensors that could not be loaded keep a neutral
indicator and "never".

Keyboard shortcuts:
  q / Ctrl+C  Quit
  r           Re-fetch everything
  s           Cycle sort order (config/name/status/last data)
  up/k        Select previous sensor
  down/j      Select next sensor
  Enter       Open sensor details
  Esc         Back
  ?           Show help

Examples:
  sensorboard monitor
  sensorboard monitor --sensors tum-esm-midcost-raspi-1,tum-esm-midcost-raspi-2
  sensorboard monitor --interval 1m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd.Context(), monitorOptions{
			Interval: monitorIntervalFlag,
			Sensors:  ParseSensorsFlag(monitorSensorsFlag),
		})
	},
}

// fetchCmd populates once and prints a summary
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch everything once and print a summary",
	Long: `Issue the status request plus measurements, logs and log aggregates for
every configured sensor, wait for all of them to settle, then print which
requests failed and the last activity per sensor.

Failed requests are reported but do not fail the command unless nothing
could be loaded at all.

With --watch the fetch repeats every interval until interrupted, printing
one report per run. Failed runs are reported and the loop keeps going.

Examples:
  sensorboard fetch
  sensorboard fetch --format json
  sensorboard fetch --sensors tum-esm-midcost-raspi-3
  sensorboard fetch --watch 1m --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetchCommand(cmd.Context(), fetchOptions{
			Format:  fetchFormatFlag,
			Sensors: ParseSensorsFlag(fetchSensorsFlag),
			Watch:   fetchWatchFlag,
			Out:     cmd.OutOrStdout(),
			Stderr:  cmd.ErrOrStderr(),
		})
	},
}

// statusCmd prints the server status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the telemetry server status",
	Long: `Request the telemetry server's status document and print it.

Examples:
  sensorboard status
  sensorboard status --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCommand(cmd.Context(), statusOptions{
			Format: statusFormatFlag,
			Out:    cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
	},
}

// sensorsCmd lists configured sensors
var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "List configured sensors",
	Long: `List the sensors from the config file in display order.

When history recording is enabled, the time each sensor was last seen is
read from the history store.

Examples:
  sensorboard sensors
  sensorboard sensors --format json
  sensorboard sensors add rooftop-1 c04e0bcc-2b32-4fb3-8971-9cbe27ab7117`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sensorsCommand(sensorsOptions{
			Format: sensorsFormatFlag,
			Out:    cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
	},
}

// sensorsAddCmd adds a sensor to the config file
var sensorsAddCmd = &cobra.Command{
	Use:   "add <name> <id>",
	Short: "Add a sensor to the config file",
	Long: `Append a sensor to the sensors list of the config file, keeping its
comments and layout. An existing sensor with the same name gets the new id.

Examples:
  sensorboard sensors add rooftop-1 c04e0bcc-2b32-4fb3-8971-9cbe27ab7117`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sensorsAddCommand(cmd.OutOrStdout(), args[0], args[1])
	},
}

// initCmd creates a new .sensorboard.yaml configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .sensorboard.yaml configuration",
	Long: `Create a .sensorboard.yaml file in the current directory.

The file starts from the built-in defaults: the public telemetry server,
its network id and the full sensor table. Interactive mode asks for the
server, refresh interval and whether to record history.

Examples:
  sensorboard init
  sensorboard init --non-interactive
  sensorboard init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(InitOptions{
			Overwrite:      initForce,
			NonInteractive: initNonInteractive || os.Getenv("CI") != "",
			Out:            cmd.OutOrStdout(),
		})
	},
}

// historyCmd exports recorded history
var historyCmd = &cobra.Command{
	Use:   "history <sensor>",
	Short: "Export recorded measurements and logs of a sensor",
	Long: `Print the measurements and logs recorded for a sensor.

History is only recorded while storage.backend is "memory" or "sqlite";
only the sqlite backend survives between runs.

Examples:
  sensorboard history tum-esm-midcost-raspi-1
  sensorboard history tum-esm-midcost-raspi-1 --since 1h --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyCommand(historyOptions{
			Sensor: args[0],
			Since:  historySinceFlag,
			Format: historyFormatFlag,
			Out:    cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
		})
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion scripts for sensorboard.

Examples:
  # Bash
  sensorboard completion bash > /etc/bash_completion.d/sensorboard

  # Zsh
  sensorboard completion zsh > "${fpath[1]}/_sensorboard"

  # Fish
  sensorboard completion fish > ~/.config/fish/completions/sensorboard.fish`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return sberrors.New(sberrors.ErrConfig,
				"Unknown shell: "+args[0],
				"Supported shells: bash, zsh, fish, powershell")
		}
	},
}

func init() {
	// monitor command flags
	monitorCmd.Flags().StringVar(&monitorIntervalFlag, "interval", "", "auto-refresh interval, 0 to fetch once (default from config)")
	monitorCmd.Flags().StringVar(&monitorSensorsFlag, "sensors", "", "only show these sensors (comma-separated)")

	// fetch command flags
	fetchCmd.Flags().StringVar(&fetchFormatFlag, "format", FormatText, "output format: text, json or yaml")
	fetchCmd.Flags().StringVar(&fetchSensorsFlag, "sensors", "", "only fetch these sensors (comma-separated)")
	fetchCmd.Flags().StringVar(&fetchWatchFlag, "watch", "", "repeat every interval until interrupted (e.g. 1m)")

	// status command flags
	statusCmd.Flags().StringVar(&statusFormatFlag, "format", FormatText, "output format: text, json or yaml")

	// sensors command flags
	sensorsCmd.Flags().StringVar(&sensorsFormatFlag, "format", FormatText, "output format: text, json or yaml")
	sensorsCmd.AddCommand(sensorsAddCmd)

	// init command flags
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts and write the defaults")

	// history command flags
	historyCmd.Flags().StringVar(&historySinceFlag, "since", "24h", "how far back to export, 0 for everything")
	historyCmd.Flags().StringVar(&historyFormatFlag, "format", FormatCSV, "output format: csv or json")

	// Register all commands
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sensorsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(completionCmd)
}
