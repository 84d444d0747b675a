package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/config"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/logging"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/output"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "sweepsum",
		Short: "Record and verify file digests across a directory tree",
		Long: `Sweepsum walks a directory tree, digests every regular file, and writes
a manifest of "<digest>\t<path>" lines. Two manifests can later be compared
to find files that appeared, disappeared, or changed.

Unreadable files are recorded with the ERROR sentinel instead of aborting
the scan, and pseudo filesystems such as /proc and /sys are skipped.

Examples:
  sweepsum scan / -o before.txt          # Digest the whole system
  sweepsum scan ~/src -o src.txt -e ~/src/.git
  sweepsum compare before.txt after.txt  # Report differences
  sweepsum show before.txt --errors-only # List unreadable files
  sweepsum history                       # View past runs`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initializeLogging,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/sweepsum/config.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "", "output format ("+formatList()+")")
	rootCmd.PersistentFlags().String("template", "", "text/template for --format template")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "mirror debug logs to stderr")

	// Bind flags to viper
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("template", rootCmd.PersistentFlags().Lookup("template"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	v := viper.GetViper()
	if cfgFile != "" {
		// Use config file from the flag
		v.SetConfigFile(cfgFile)
	} else {
		config.AddConfigPaths(v)
	}
	config.BindEnv(v)
	config.SetDefaults(v)

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			printError("failed to read config file: %v", err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig decodes the merged flag, env, file and default settings.
func loadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}

// initializeLogging prepares the XDG directories and starts file logging.
// It runs before every command.
func initializeLogging(_ *cobra.Command, _ []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := config.EnsureStateDir(); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	console := cfg.Logging.Console
	if getVerbose() {
		console = "debug"
	}

	return logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		Rotation:     parseRotationConfig(cfg.Logging.Rotation),
		Components:   cfg.Logging.Components,
		ConsoleLevel: console,
	})
}

// parseRotationConfig converts the configured rotation settings. An empty
// or unparsable size falls back to the logging default.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	out := logging.DefaultRotationConfig()
	if rc.MaxSize != "" {
		if size, err := humanize.ParseBytes(rc.MaxSize); err == nil && size > 0 {
			out.MaxSize = int64(size)
		}
	}
	if rc.MaxBackups > 0 {
		out.MaxBackups = rc.MaxBackups
	}
	return out
}

// formatterFor builds the formatter named by --format (or the configured
// default) with the configured palette.
func formatterFor(cfg *config.Config) (output.Formatter, error) {
	name := viper.GetString("format")
	if name == "" {
		name = cfg.Format
	}

	opts := output.Options{
		Palette: output.Palette{
			Added:   cfg.Palette.Added,
			Removed: cfg.Palette.Removed,
			Changed: cfg.Palette.Changed,
			Error:   cfg.Palette.Error,
			Path:    cfg.Palette.Path,
			Digest:  cfg.Palette.Digest,
			Muted:   cfg.Palette.Muted,
		},
		Template: viper.GetString("template"),
	}

	f, err := output.Get(name, opts)
	if err != nil {
		return nil, fmt.Errorf("unknown output format %q: available formats are %v", name, output.Available())
	}
	return f, nil
}

func formatList() string {
	return strings.Join(output.Available(), "|")
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message to stderr if quiet mode is not enabled.
// Results go to stdout; progress and notices go here.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
