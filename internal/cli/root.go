package cli

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tum-esm/sensorboard/internal/ui"
)

// Global flags
var (
	cfgFile   string
	verbose   bool
	noColor   bool
	logFormat string
	logFile   string
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "sensorboard",
	Short: "Dashboard for a network of environmental sensor nodes",
	Long: `sensorboard fetches measurements, logs and log aggregates for every
configured sensor node from the telemetry server and shows them in a
terminal dashboard.

Every request runs independently: a sensor whose data could not be loaded
still shows up, with a neutral indicator and "never" as its last activity.

Get started:
  sensorboard init       Write a config file
  sensorboard monitor    Open the dashboard
  sensorboard fetch      Fetch once and print a summary`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .sensorboard.yaml, searched upwards)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file (default from config)")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// Config returns the --config flag value.
func Config() string {
	return cfgFile
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}

// formatError renders err for the terminal, adding a hint for typos in
// command or flag names.
func formatError(err error) string {
	msg := err.Error()
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	if !isUnknownCommandError(err) {
		return msg
	}

	if name := extractUnknownCommand(err); name != "" {
		if suggestions := rootCmd.SuggestionsFor(name); len(suggestions) > 0 {
			msg += fmt.Sprintf("\nDid you mean %q?\n", suggestions[0])
		}
	}
	return msg + "\nRun 'sensorboard --help' for usage.\n"
}

// isUnknownCommandError reports whether err comes from cobra rejecting an
// unknown command or flag.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

var unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)

// extractUnknownCommand returns the command name from cobra's unknown
// command error, or "" when err is not one.
func extractUnknownCommand(err error) string {
	m := unknownCommandPattern.FindStringSubmatch(err.Error())
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
