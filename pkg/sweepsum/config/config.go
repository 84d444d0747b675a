package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// appName names the per-user directories and the environment prefix.
const appName = "sweepsum"

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Console    string            `mapstructure:"console"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// PaletteConfig holds the display colors used by the pretty formatter.
type PaletteConfig struct {
	Added   string `mapstructure:"added"`
	Removed string `mapstructure:"removed"`
	Changed string `mapstructure:"changed"`
	Error   string `mapstructure:"error"`
	Path    string `mapstructure:"path"`
	Digest  string `mapstructure:"digest"`
	Muted   string `mapstructure:"muted"`
}

// HistoryConfig configures the run history store.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	DefaultPath string        `mapstructure:"default_path"`
	Exclude     []string      `mapstructure:"exclude"`
	Algorithm   string        `mapstructure:"algorithm"`
	Workers     int           `mapstructure:"workers"`
	SyncEvery   int           `mapstructure:"sync_every"`
	Format      string        `mapstructure:"format"`
	Palette     PaletteConfig `mapstructure:"palette"`
	History     HistoryConfig `mapstructure:"history"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// SetDefaults registers every default on v. Load and the CLI share it so
// the two never drift.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("default_path", DefaultPath)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("algorithm", DefaultAlgorithm)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("sync_every", DefaultSyncEvery)
	v.SetDefault("format", DefaultFormat)

	v.SetDefault("palette.added", DefaultPalette.Added)
	v.SetDefault("palette.removed", DefaultPalette.Removed)
	v.SetDefault("palette.changed", DefaultPalette.Changed)
	v.SetDefault("palette.error", DefaultPalette.Error)
	v.SetDefault("palette.path", DefaultPalette.Path)
	v.SetDefault("palette.digest", DefaultPalette.Digest)
	v.SetDefault("palette.muted", DefaultPalette.Muted)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "") // Empty means DefaultHistoryPath
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.console", "")
	v.SetDefault("logging.rotation.max_size", "10MiB")
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.components", map[string]string{
		"scanner":  "info",
		"manifest": "info",
		"compare":  "info",
		"history":  "warn",
	})
}

// AddConfigPaths registers the config file search locations on v:
//   - $XDG_CONFIG_HOME/sweepsum/config.yaml
//   - $HOME/.config/sweepsum/config.yaml
func AddConfigPaths(v *viper.Viper) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, appName))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".config", appName))
	}
}

// BindEnv enables SWEEPSUM_ prefixed environment overrides on v, e.g.
// SWEEPSUM_ALGORITHM or SWEEPSUM_LOGGING_LEVEL.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load loads configuration from file and environment variables into a
// fresh viper instance.
func Load() (*Config, error) {
	v := viper.New()
	AddConfigPaths(v)
	BindEnv(v)
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper decodes the settings held by v and expands ~ in paths.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var err error
	if cfg.History.Path, err = ExpandPath(cfg.History.Path); err != nil {
		return nil, err
	}
	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return nil, err
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath()
	}
	return &cfg, nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigPath returns the path of the default config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists and returns its
// path. created is false when a config file was already present.
func WriteDefault() (path string, created bool, err error) {
	if err := EnsureConfigDir(); err != nil {
		return "", false, err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("failed to check config file: %w", err)
	}

	var excludes strings.Builder
	for _, e := range DefaultExclusions {
		fmt.Fprintf(&excludes, "  - %s\n", e)
	}

	defaultConfig := fmt.Sprintf(`# sweepsum configuration

# Root scanned when none is given on the command line
default_path: %s

# Subtrees never entered during a scan (exact path or path + "/" prefix)
exclude:
%s
# Digest algorithm: sha256, blake3, sha3-256
algorithm: %s

# Traversal workers; 1 keeps the scan strictly sequential, 0 sizes to the machine
workers: %d

# fsync the manifest every N records (0 disables)
sync_every: %d

# Report format for compare and show: pretty, plain, json, yaml
format: %s

# Colors for pretty output (ANSI index or hex)
palette:
  added: "%s"
  removed: "%s"
  changed: "%s"
  error: "%s"
  path: "%s"
  digest: "%s"
  muted: "%s"

# Run history
history:
  enabled: true
  # Empty means use default: $XDG_DATA_HOME/sweepsum/history
  path: ""
  retention_days: %d

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: info
  # Log file path (empty means use default: $XDG_STATE_HOME/sweepsum/sweepsum.log)
  path: ""
  # Mirror logs at this level to stderr (empty disables)
  console: ""
  rotation:
    max_size: 10MiB
    max_backups: 5
  components:
    scanner: info
    manifest: info
    compare: info
    history: warn
`,
		DefaultPath, excludes.String(), DefaultAlgorithm, DefaultWorkers, DefaultSyncEvery, DefaultFormat,
		DefaultPalette.Added, DefaultPalette.Removed, DefaultPalette.Changed, DefaultPalette.Error,
		DefaultPalette.Path, DefaultPalette.Digest, DefaultPalette.Muted,
		DefaultRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, true, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/sweepsum/ for the history database.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// StateDir returns $XDG_STATE_HOME/sweepsum/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// DefaultHistoryPath returns the default history database directory.
func DefaultHistoryPath() string {
	return filepath.Join(DataDir(), "history")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	if err := os.MkdirAll(DataDir(), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}
