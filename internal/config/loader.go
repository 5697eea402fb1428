package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/tum-esm/sensorboard/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".sensorboard.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/sensorboard"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix is the prefix for environment variable overrides,
	// e.g. SENSORBOARD_SERVER_URL.
	EnvPrefix = "SENSORBOARD"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'sensorboard init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .sensorboard.yaml in current directory
// 3. .sensorboard.yaml in parent directories (stops at git root or home)
// 4. ~/.config/sensorboard/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && parent == home {
			// Don't go above home directory
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		if isGitRoot(dir) {
			break
		}
	}

	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if not found.
// The dashboard works out of the box against the built-in sensor network.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		v := viper.New()
		cfg, err := parseConfig(v, "")
		return cfg, "", err
	}

	cfg, err := Load(path)
	return cfg, path, err
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{"server_url", "network_id", "log.format", "log.file", "storage.backend"} {
		_ = v.BindEnv(key)
	}

	// A configured sensor list replaces the built-in table rather than
	// merging into it element by element.
	if v.IsSet("sensors") {
		cfg.Sensors = nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		where := "your config"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}

	cfg.Storage.Path = ExpandTilde(Expand(cfg.Storage.Path))
	cfg.Log.File = ExpandTilde(Expand(cfg.Log.File))

	return cfg, nil
}

// setDefaults registers scalar defaults so env overrides and partial files
// resolve against them.
func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("server_url", def.ServerURL)
	v.SetDefault("network_id", def.NetworkID)
	v.SetDefault("fetch.timeout", def.Fetch.Timeout.String())
	v.SetDefault("monitor.interval", def.Monitor.Interval.String())
	v.SetDefault("monitor.stale_after", def.Monitor.StaleAfter.String())
	v.SetDefault("storage.backend", def.Storage.Backend)
	v.SetDefault("storage.path", def.Storage.Path)
	v.SetDefault("storage.retention", def.Storage.Retention.String())
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.file", def.Log.File)
}

// isGitRoot checks if a directory is a git repository root.
func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return info.IsDir()
}
