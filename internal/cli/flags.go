package cli

import (
	"fmt"
	"strings"
	"time"

	sberrors "github.com/tum-esm/sensorboard/internal/errors"
)

// Output formats for one-shot commands.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// ParseFormat checks that format is one of allowed.
func ParseFormat(format string, allowed ...string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	for _, a := range allowed {
		if format == a {
			return format, nil
		}
	}
	return "", sberrors.New(sberrors.ErrConfig,
		fmt.Sprintf("'%s' isn't a supported output format", format),
		fmt.Sprintf("Use one of: %s", strings.Join(allowed, ", ")))
}

// ParseDurationFlag parses a duration flag. An empty flag returns fallback.
// Negative durations are rejected.
func ParseDurationFlag(name, flag string, fallback time.Duration) (time.Duration, error) {
	if flag == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, sberrors.WrapWithCode(err, sberrors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid --%s", flag, name),
			"Try something like 30s, 5m, or 1h.")
	}
	if d < 0 {
		return 0, sberrors.New(sberrors.ErrConfig,
			fmt.Sprintf("--%s can't be negative", name),
			"Use 0 to disable it.")
	}
	return d, nil
}

// minRefreshInterval keeps auto-refresh from hammering the server.
const minRefreshInterval = 5 * time.Second

// ParseInterval parses the monitor --interval flag. Zero disables
// auto-refresh; anything else must be at least minRefreshInterval.
func ParseInterval(flag string, fallback time.Duration) (time.Duration, error) {
	return parseRefreshInterval("interval", flag, fallback)
}

// parseRefreshInterval parses a repeat interval flag. Zero means run once.
func parseRefreshInterval(name, flag string, fallback time.Duration) (time.Duration, error) {
	d, err := ParseDurationFlag(name, flag, fallback)
	if err != nil {
		return 0, err
	}
	if d > 0 && d < minRefreshInterval {
		return 0, sberrors.New(sberrors.ErrConfig,
			fmt.Sprintf("--%s too short", name),
			fmt.Sprintf("Minimum is %s; use 0 to fetch once.", minRefreshInterval))
	}
	return d, nil
}

// ParseSensorsFlag splits a comma-separated --sensors value, dropping blanks
// and duplicates.
func ParseSensorsFlag(flag string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, name := range strings.Split(flag, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
