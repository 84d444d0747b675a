package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func isolate(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	return tempDir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DefaultPath != DefaultPath {
		t.Errorf("DefaultPath = %q, want %q", cfg.DefaultPath, DefaultPath)
	}
	if cfg.Algorithm != DefaultAlgorithm {
		t.Errorf("Algorithm = %q, want %q", cfg.Algorithm, DefaultAlgorithm)
	}
	if cfg.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", cfg.Workers, DefaultWorkers)
	}
	if cfg.SyncEvery != DefaultSyncEvery {
		t.Errorf("SyncEvery = %d, want %d", cfg.SyncEvery, DefaultSyncEvery)
	}
	if cfg.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", cfg.Format, DefaultFormat)
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled = false, want true")
	}
	if cfg.History.RetentionDays != DefaultRetentionDays {
		t.Errorf("History.RetentionDays = %d, want %d", cfg.History.RetentionDays, DefaultRetentionDays)
	}
	if cfg.History.Path != DefaultHistoryPath() {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, DefaultHistoryPath())
	}
	if cfg.Palette != DefaultPalette {
		t.Errorf("Palette = %+v, want %+v", cfg.Palette, DefaultPalette)
	}
	if len(cfg.Exclude) != len(DefaultExclusions) {
		t.Errorf("len(Exclude) = %d, want %d", len(cfg.Exclude), len(DefaultExclusions))
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := isolate(t)
	configDir := filepath.Join(tempDir, ".config", "sweepsum")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `
default_path: /srv
exclude:
  - /srv/tmp
  - /srv/cache
algorithm: blake3
workers: 4
sync_every: 0
format: json
palette:
  added: "#00ff00"
history:
  enabled: false
  path: /custom/history
  retention_days: 7
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DefaultPath != "/srv" {
		t.Errorf("DefaultPath = %q, want %q", cfg.DefaultPath, "/srv")
	}
	if cfg.Algorithm != "blake3" {
		t.Errorf("Algorithm = %q, want %q", cfg.Algorithm, "blake3")
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.SyncEvery != 0 {
		t.Errorf("SyncEvery = %d, want 0", cfg.SyncEvery)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Palette.Added != "#00ff00" {
		t.Errorf("Palette.Added = %q, want #00ff00", cfg.Palette.Added)
	}
	if cfg.Palette.Removed != DefaultPalette.Removed {
		t.Errorf("Palette.Removed = %q, want default %q", cfg.Palette.Removed, DefaultPalette.Removed)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false")
	}
	if cfg.History.Path != "/custom/history" {
		t.Errorf("History.Path = %q, want /custom/history", cfg.History.Path)
	}
	if cfg.History.RetentionDays != 7 {
		t.Errorf("History.RetentionDays = %d, want 7", cfg.History.RetentionDays)
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "/srv/tmp" {
		t.Errorf("Exclude = %v, want [/srv/tmp /srv/cache]", cfg.Exclude)
	}
}

func TestLoad_XDGConfigHome(t *testing.T) {
	tempDir := t.TempDir()
	xdgConfigDir := filepath.Join(tempDir, "xdg-config", "sweepsum")
	if err := os.MkdirAll(xdgConfigDir, 0o755); err != nil {
		t.Fatalf("failed to create XDG config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(xdgConfigDir, "config.yaml"), []byte("algorithm: sha3-256"), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tempDir, "xdg-config"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Algorithm != "sha3-256" {
		t.Errorf("Algorithm = %q, want sha3-256", cfg.Algorithm)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("SWEEPSUM_ALGORITHM", "blake3")
	t.Setenv("SWEEPSUM_WORKERS", "3")
	t.Setenv("SWEEPSUM_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Algorithm != "blake3" {
		t.Errorf("Algorithm = %q, want blake3", cfg.Algorithm)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	tempDir := isolate(t)
	configDir := filepath.Join(tempDir, ".config", "sweepsum")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("exclude: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() with broken YAML should fail")
	}
}

func TestLoad_LoggingDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Path != "" {
		t.Errorf("Logging.Path = %q, want empty", cfg.Logging.Path)
	}
	if cfg.Logging.Rotation.MaxSize != "10MiB" {
		t.Errorf("Logging.Rotation.MaxSize = %q, want 10MiB", cfg.Logging.Rotation.MaxSize)
	}
	if cfg.Logging.Rotation.MaxBackups != 5 {
		t.Errorf("Logging.Rotation.MaxBackups = %d, want 5", cfg.Logging.Rotation.MaxBackups)
	}
	if cfg.Logging.Components["scanner"] != "info" {
		t.Errorf("Logging.Components[scanner] = %q, want info", cfg.Logging.Components["scanner"])
	}
}

func TestFromViper_ExpandsHome(t *testing.T) {
	tempDir := isolate(t)

	v := viper.New()
	SetDefaults(v)
	v.Set("history.path", "~/hist")
	v.Set("logging.path", "~/logs/sweepsum.log")

	cfg, err := FromViper(v)
	if err != nil {
		t.Fatalf("FromViper() error = %v", err)
	}
	if cfg.History.Path != filepath.Join(tempDir, "hist") {
		t.Errorf("History.Path = %q", cfg.History.Path)
	}
	if cfg.Logging.Path != filepath.Join(tempDir, "logs", "sweepsum.log") {
		t.Errorf("Logging.Path = %q", cfg.Logging.Path)
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("uses XDG_CONFIG_HOME when set", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if dir != "/custom/config/sweepsum" {
			t.Errorf("ConfigDir() = %q, want /custom/config/sweepsum", dir)
		}
	})

	t.Run("uses HOME/.config when XDG_CONFIG_HOME not set", func(t *testing.T) {
		tempDir := isolate(t)

		dir, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		expected := filepath.Join(tempDir, ".config", "sweepsum")
		if dir != expected {
			t.Errorf("ConfigDir() = %q, want %q", dir, expected)
		}
	})
}

func TestEnsureConfigDir(t *testing.T) {
	tempDir := isolate(t)

	if err := EnsureConfigDir(); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(tempDir, ".config", "sweepsum"))
	if err != nil {
		t.Fatalf("config dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("config path is not a directory")
	}
}

func TestWriteDefault(t *testing.T) {
	t.Run("creates a config that loads back to the defaults", func(t *testing.T) {
		tempDir := isolate(t)

		path, created, err := WriteDefault()
		if err != nil {
			t.Fatalf("WriteDefault() error = %v", err)
		}
		if !created {
			t.Error("created = false, want true")
		}
		if path != filepath.Join(tempDir, ".config", "sweepsum", "config.yaml") {
			t.Errorf("path = %q", path)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read config file: %v", err)
		}
		var parsed map[string]any
		if err := yaml.Unmarshal(content, &parsed); err != nil {
			t.Fatalf("default config is not valid YAML: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Algorithm != DefaultAlgorithm || cfg.Workers != DefaultWorkers {
			t.Errorf("loaded %+v, want defaults", cfg)
		}
		if strings.Join(cfg.Exclude, ",") != strings.Join(DefaultExclusions, ",") {
			t.Errorf("Exclude = %v, want %v", cfg.Exclude, DefaultExclusions)
		}
	})

	t.Run("does not overwrite existing config", func(t *testing.T) {
		tempDir := isolate(t)

		configDir := filepath.Join(tempDir, ".config", "sweepsum")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}
		configPath := filepath.Join(configDir, "config.yaml")
		existingContent := "# existing config\nalgorithm: blake3"
		if err := os.WriteFile(configPath, []byte(existingContent), 0o644); err != nil {
			t.Fatalf("failed to write existing config: %v", err)
		}

		_, created, err := WriteDefault()
		if err != nil {
			t.Fatalf("WriteDefault() error = %v", err)
		}
		if created {
			t.Error("created = true, want false")
		}

		content, err := os.ReadFile(configPath)
		if err != nil {
			t.Fatalf("failed to read config file: %v", err)
		}
		if string(content) != existingContent {
			t.Errorf("config file was overwritten: got %q, want %q", string(content), existingContent)
		}
	})
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home dir: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"expands tilde", "~/config/sweepsum", filepath.Join(homeDir, "config/sweepsum")},
		{"leaves absolute path unchanged", "/etc/sweepsum", "/etc/sweepsum"},
		{"leaves relative path unchanged", "config/sweepsum", "config/sweepsum"},
		{"handles tilde only", "~", homeDir},
		{"handles tilde with slash", "~/", homeDir},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			if err != nil {
				t.Fatalf("ExpandPath(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultExclusions(t *testing.T) {
	expected := []string{"/proc", "/sys", "/dev", "/run"}

	if len(DefaultExclusions) != len(expected) {
		t.Fatalf("len(DefaultExclusions) = %d, want %d", len(DefaultExclusions), len(expected))
	}
	for i, v := range expected {
		if DefaultExclusions[i] != v {
			t.Errorf("DefaultExclusions[%d] = %q, want %q", i, DefaultExclusions[i], v)
		}
	}
}

func TestDefaultConstants(t *testing.T) {
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"DefaultPath", DefaultPath, "/"},
		{"DefaultAlgorithm", DefaultAlgorithm, "sha256"},
		{"DefaultWorkers", DefaultWorkers, 1},
		{"DefaultRetentionDays", DefaultRetentionDays, 90},
		{"DefaultFormat", DefaultFormat, "pretty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}
}

func TestXDGDirs(t *testing.T) {
	// adrg/xdg caches values at init time, so only the structure is checked.
	for name, dir := range map[string]string{
		"DataDir":  DataDir(),
		"StateDir": StateDir(),
	} {
		if !filepath.IsAbs(dir) {
			t.Errorf("%s() = %q, want absolute path", name, dir)
		}
		if filepath.Base(dir) != "sweepsum" {
			t.Errorf("%s() = %q, want path ending in 'sweepsum'", name, dir)
		}
	}

	if filepath.Base(DefaultHistoryPath()) != "history" {
		t.Errorf("DefaultHistoryPath() = %q", DefaultHistoryPath())
	}
}
