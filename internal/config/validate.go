package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/tum-esm/sensorboard/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sensorboard only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade sensorboard to a newer release.")
	}

	if err := validateServerURL(cfg.ServerURL); err != nil {
		return err
	}

	if _, err := uuid.Parse(cfg.NetworkID); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("network_id '%s' is not a valid UUID", cfg.NetworkID),
			"Copy the network id from the telemetry service.")
	}

	if err := validateSensors(cfg.Sensors); err != nil {
		return err
	}

	if err := validateDurations(cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Durations must be zero or positive, e.g. '30s' or '5m'.")
	}

	if err := validateStorage(cfg.Storage); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'storage' section in your .sensorboard.yaml.")
	}

	if err := validateLog(cfg.Log); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'log' section in your .sensorboard.yaml.")
	}

	return nil
}

func validateServerURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New(errors.ErrConfig,
			"server_url is empty",
			"Set server_url to the telemetry service, e.g. "+DefaultServerURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("server_url '%s' is not a valid URL", raw),
			"Use a full URL like "+DefaultServerURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("server_url '%s' must use http or https", raw),
			"Use a full URL like "+DefaultServerURL)
	}
	if u.Host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("server_url '%s' has no host", raw),
			"Use a full URL like "+DefaultServerURL)
	}
	return nil
}

// ValidateSensor checks a single sensor entry.
func ValidateSensor(s Sensor) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("sensor name is required")
	}
	if strings.ContainsAny(s.Name, " \t\n/") {
		return fmt.Errorf("sensor name '%s' cannot contain whitespace or '/'", s.Name)
	}
	if _, err := uuid.Parse(s.ID); err != nil {
		return fmt.Errorf("sensor '%s' has invalid id '%s': %w", s.Name, s.ID, err)
	}
	return nil
}

func validateSensors(sensors []Sensor) error {
	if len(sensors) == 0 {
		return errors.New(errors.ErrConfig,
			"No sensors configured",
			"Add at least one entry under 'sensors:' with a name and id.")
	}

	seen := make(map[string]bool, len(sensors))
	for _, s := range sensors {
		if err := ValidateSensor(s); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				"Each sensor needs a name and a UUID id.")
		}
		if seen[s.Name] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Sensor '%s' is listed twice", s.Name),
				"Sensor names must be unique.")
		}
		seen[s.Name] = true
	}
	return nil
}

func validateDurations(cfg *Config) error {
	checks := []struct {
		key   string
		value int64
	}{
		{"fetch.timeout", int64(cfg.Fetch.Timeout)},
		{"monitor.interval", int64(cfg.Monitor.Interval)},
		{"monitor.stale_after", int64(cfg.Monitor.StaleAfter)},
		{"storage.retention", int64(cfg.Storage.Retention)},
	}
	for _, c := range checks {
		if c.value < 0 {
			return fmt.Errorf("%s cannot be negative", c.key)
		}
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case "", BackendNone, BackendMemory:
		return nil
	case BackendSQLite:
		if strings.TrimSpace(s.Path) == "" {
			return fmt.Errorf("storage.path is required for the sqlite backend")
		}
		return nil
	default:
		return fmt.Errorf("storage.backend must be 'none', 'memory' or 'sqlite', got '%s'", s.Backend)
	}
}

func validateLog(l LogConfig) error {
	switch l.Format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("log.format must be 'text' or 'json', got '%s'", l.Format)
	}
}
