package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage sweepsum configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/sweepsum/config.yaml (if set)
  2. ~/.config/sweepsum/config.yaml

Environment variables can override config file settings using the SWEEPSUM_ prefix:
  SWEEPSUM_ALGORITHM=blake3
  SWEEPSUM_WORKERS=4
  SWEEPSUM_LOGGING_LEVEL=debug`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration merged from defaults, file, environment and flags.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration as YAML.
func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Fprintf(w, "# Config file: %s\n", configFile)
	} else {
		fmt.Fprintln(w, "# Config file: (using defaults, no file found)")
	}

	data, err := yaml.Marshal(configView(cfg))
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, _ = w.Write(data)

	// Show any environment overrides
	var overrides []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "SWEEPSUM_") {
			overrides = append(overrides, kv)
		}
	}
	if len(overrides) > 0 {
		fmt.Fprintln(w, "\n# Environment overrides:")
		for _, kv := range overrides {
			fmt.Fprintf(w, "#   %s\n", kv)
		}
	}
	return nil
}

// configView mirrors config.Config with yaml keys matching the file format.
func configView(cfg *config.Config) map[string]any {
	return map[string]any{
		"default_path": cfg.DefaultPath,
		"exclude":      cfg.Exclude,
		"algorithm":    cfg.Algorithm,
		"workers":      cfg.Workers,
		"sync_every":   cfg.SyncEvery,
		"format":       cfg.Format,
		"palette": map[string]string{
			"added":   cfg.Palette.Added,
			"removed": cfg.Palette.Removed,
			"changed": cfg.Palette.Changed,
			"error":   cfg.Palette.Error,
			"path":    cfg.Palette.Path,
			"digest":  cfg.Palette.Digest,
			"muted":   cfg.Palette.Muted,
		},
		"history": map[string]any{
			"enabled":        cfg.History.Enabled,
			"path":           cfg.History.Path,
			"retention_days": cfg.History.RetentionDays,
		},
		"logging": map[string]any{
			"level":   cfg.Logging.Level,
			"path":    cfg.Logging.Path,
			"console": cfg.Logging.Console,
			"rotation": map[string]any{
				"max_size":    cfg.Logging.Rotation.MaxSize,
				"max_backups": cfg.Logging.Rotation.MaxBackups,
			},
			"components": cfg.Logging.Components,
		},
	}
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(_ *cobra.Command, _ []string) error {
	configPath, _, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	// Determine editor
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	cliLog.Debug("opening config", "path", configPath, "editor", editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}
	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath, created, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	w := cmd.OutOrStdout()
	if !created {
		fmt.Fprintf(w, "Config file already exists: %s\n", configPath)
		fmt.Fprintln(w, "Use 'sweepsum config edit' to modify it.")
		return nil
	}
	fmt.Fprintf(w, "Created default config file: %s\n", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), configPath)
	return nil
}
