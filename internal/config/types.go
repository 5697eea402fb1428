package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

const (
	// DefaultServerURL is the telemetry service the dashboard talks to when
	// nothing else is configured.
	DefaultServerURL = "http://142.93.164.41:8000"

	// DefaultNetworkID identifies the sensor network on the telemetry service.
	DefaultNetworkID = "1f705cc5-4242-458b-9201-4217455ea23c"
)

// Storage backends accepted by StorageConfig.Backend.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config represents the complete .sensorboard.yaml configuration file.
type Config struct {
	Version   int           `yaml:"version" mapstructure:"version"`
	ServerURL string        `yaml:"server_url" mapstructure:"server_url"`
	NetworkID string        `yaml:"network_id" mapstructure:"network_id"`
	Sensors   []Sensor      `yaml:"sensors" mapstructure:"sensors"`
	Fetch     FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Monitor   MonitorConfig `yaml:"monitor" mapstructure:"monitor"`
	Storage   StorageConfig `yaml:"storage" mapstructure:"storage"`
	Log       LogConfig     `yaml:"log" mapstructure:"log"`
}

// Sensor maps a human-readable node name to the UUID used in API paths.
type Sensor struct {
	Name string `yaml:"name" mapstructure:"name"`
	ID   string `yaml:"id" mapstructure:"id"`
}

// FetchConfig controls the HTTP requests made against the telemetry service.
type FetchConfig struct {
	// Timeout bounds each individual request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// MonitorConfig controls the dashboard.
type MonitorConfig struct {
	// Interval between automatic re-populations. Zero populates once.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// StaleAfter marks a sensor as warning when its newest data or log
	// is older than this.
	StaleAfter time.Duration `yaml:"stale_after" mapstructure:"stale_after"`
}

// StorageConfig controls optional history recording.
type StorageConfig struct {
	// Backend is "none", "memory" or "sqlite".
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Path is the SQLite database file. Supports ~ and ${HOME}.
	Path string `yaml:"path" mapstructure:"path"`

	// Retention drops recorded rows older than this. Zero keeps everything.
	Retention time.Duration `yaml:"retention" mapstructure:"retention"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Format is "text" or "json".
	Format string `yaml:"format" mapstructure:"format"`

	// File receives logs while the dashboard is running. Empty discards them.
	File string `yaml:"file" mapstructure:"file"`
}

// DefaultSensors returns the built-in sensor table, in display order.
func DefaultSensors() []Sensor {
	return []Sensor{
		{Name: "tum-esm-midcost-raspi-1", ID: "c04e0bcc-2b32-4fb3-8971-9cbe27ab7117"},
		{Name: "tum-esm-midcost-raspi-2", ID: "64c5c8ec-4e6b-413b-b113-b130f80eae91"},
		{Name: "tum-esm-midcost-raspi-3", ID: "3682334d-a359-438c-ad40-860270bbcbf0"},
		{Name: "tum-esm-midcost-raspi-4", ID: "919ac396-de7d-4dda-8224-564739e0ff1b"},
		{Name: "tum-esm-midcost-raspi-5", ID: "df2727fd-0f22-4c39-bc46-27a3c632087a"},
		{Name: "tum-esm-midcost-raspi-6", ID: "870093ad-5773-458a-a7a9-73fb7c66d2e9"},
		{Name: "tum-esm-midcost-raspi-7", ID: "7d0747e7-7c2d-4d2e-bd19-e98ae29d5948"},
		{Name: "tum-esm-midcost-raspi-8", ID: "58ae94f3-e2d3-4e16-b3c4-9daf31648c6b"},
		{Name: "tum-esm-midcost-raspi-9", ID: "7d2ba05f-4233-4a2f-b00b-452d9a34ee18"},
		{Name: "tum-esm-midcost-raspi-10", ID: "fcce393d-ac53-4b59-ae71-d89cc2cdd619"},
		{Name: "tum-esm-midcost-raspi-11", ID: "ecc83b80-bf8a-4f70-b56f-0e0a5d071f9d"},
		{Name: "tum-esm-midcost-raspi-12", ID: "2794eda8-216f-4ac7-aea9-68734dcbb5ac"},
		{Name: "tum-esm-midcost-raspi-13", ID: "5af58695-ae8d-419a-8f2a-1ae2017b9913"},
		{Name: "tum-esm-midcost-raspi-14", ID: "07195901-387e-4218-b8c7-e811c247b94b"},
		{Name: "tum-esm-midcost-raspi-15", ID: "9573732f-e183-4097-89d6-a353e36dba69"},
		{Name: "tum-esm-midcost-raspi-16", ID: "8cd4e335-e200-4a69-b5e9-01bb84fc960a"},
		{Name: "tum-esm-midcost-raspi-17", ID: "f695a691-6ab8-4b30-bee0-6c4aa7e07f8f"},
		{Name: "tum-esm-midcost-raspi-18", ID: "c7e8c239-0f86-45e2-b83d-c70accb2ece5"},
		{Name: "tum-esm-midcost-raspi-19", ID: "c22a5292-3020-4e31-9920-8053155da1e6"},
		{Name: "tum-esm-midcost-raspi-20", ID: "bcbf556b-e3b1-452b-b92c-8562d874e328"},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:   CurrentConfigVersion,
		ServerURL: DefaultServerURL,
		NetworkID: DefaultNetworkID,
		Sensors:   DefaultSensors(),
		Fetch: FetchConfig{
			Timeout: 0,
		},
		Monitor: MonitorConfig{
			Interval:   0,
			StaleAfter: 30 * time.Minute,
		},
		Storage: StorageConfig{
			Backend:   BackendNone,
			Path:      "~/.local/share/sensorboard/history.db",
			Retention: 7 * 24 * time.Hour,
		},
		Log: LogConfig{
			Format: "text",
		},
	}
}

// SensorByName returns the configured sensor with the given name.
func (c *Config) SensorByName(name string) (Sensor, bool) {
	for _, s := range c.Sensors {
		if s.Name == name {
			return s, true
		}
	}
	return Sensor{}, false
}

// SensorNames returns the configured sensor names in config order.
func (c *Config) SensorNames() []string {
	names := make([]string, len(c.Sensors))
	for i, s := range c.Sensors {
		names[i] = s.Name
	}
	return names
}

// FilterSensors restricts the sensor list to the given names, keeping config
// order. An empty filter leaves the list unchanged. Unknown names are returned.
func (c *Config) FilterSensors(names []string) (unknown []string) {
	if len(names) == 0 {
		return nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
		if _, ok := c.SensorByName(n); !ok {
			unknown = append(unknown, n)
		}
	}
	kept := make([]Sensor, 0, len(names))
	for _, s := range c.Sensors {
		if want[s.Name] {
			kept = append(kept, s)
		}
	}
	c.Sensors = kept
	return unknown
}
