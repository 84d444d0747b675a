package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/config"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/digest"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/exclude"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/history"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/logging"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/manifest"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/output"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/scanner"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/tuner"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/types"
)

var cliLog = logging.Get("cli")

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Digest every regular file under root into a manifest",
	Long: `Walk root (default: the configured default_path, "/" unless changed) and
write one "<digest>\t<path>" line per regular file to the output manifest.

Symbolic links are never followed. Excluded directories are pruned before
they are entered; the configured exclusions (default /proc, /sys, /dev,
/run) always apply and -e adds more. Files that cannot be read are written
with the ERROR sentinel and the scan continues.

Records are written as they are produced, so an interrupted scan leaves a
valid partial manifest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

var (
	scanOutput    string
	scanForce     bool
	scanExclude   []string
	scanAlgorithm string
	scanWorkers   int
	scanSyncEvery int
	scanProgress  bool
	scanNoHistory bool
)

// Overwrite prompt hooks, replaced in tests.
var (
	promptInput     io.Reader = os.Stdin
	promptOutput    io.Writer = os.Stderr
	stdinIsTerminal           = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

func init() {
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "manifest file to write (required)")
	scanCmd.Flags().BoolVar(&scanForce, "force", false, "overwrite an existing manifest without asking")
	scanCmd.Flags().StringSliceVarP(&scanExclude, "exclude", "e", nil, "additional directory to prune (repeatable)")
	scanCmd.Flags().StringVarP(&scanAlgorithm, "algorithm", "a", "", "digest algorithm ("+strings.Join(digest.Available(), "|")+")")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0, "concurrent walkers (0 = configured value; configure 0 to size to the machine)")
	scanCmd.Flags().IntVar(&scanSyncEvery, "sync-every", -1, "fsync the manifest every N records (0 disables, -1 = configured value)")
	scanCmd.Flags().BoolVarP(&scanProgress, "progress", "p", false, "show a progress spinner on stderr")
	scanCmd.Flags().BoolVar(&scanNoHistory, "no-history", false, "do not record this run in history")
	_ = scanCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(scanCmd)
}

// scanSettings are the resolved inputs of one scan.
type scanSettings struct {
	Root        string
	Destination string
	Exclude     []string
	Algorithm   string
	Workers     int
	SyncEvery   int
}

// resolveScanSettings merges flags over the loaded configuration.
func resolveScanSettings(cfg *config.Config, args []string) (*scanSettings, error) {
	root := cfg.DefaultPath
	if len(args) > 0 {
		root = args[0]
	}
	root, err := config.ExpandPath(root)
	if err != nil {
		return nil, fmt.Errorf("failed to expand path: %w", err)
	}
	if root, err = filepath.Abs(root); err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	dest, err := config.ExpandPath(scanOutput)
	if err != nil {
		return nil, fmt.Errorf("failed to expand output path: %w", err)
	}
	if dest == "" {
		return nil, errors.New("an output manifest is required (-o FILE)")
	}
	if dest, err = filepath.Abs(dest); err != nil {
		return nil, fmt.Errorf("failed to resolve output path: %w", err)
	}

	s := &scanSettings{
		Root:        root,
		Destination: dest,
		Algorithm:   cfg.Algorithm,
		Workers:     cfg.Workers,
		SyncEvery:   cfg.SyncEvery,
	}

	// Flag exclusions add to the configured ones so the pseudo filesystems
	// stay pruned. Both are made absolute: the walk only yields absolute
	// paths, so a relative root would never match.
	for _, e := range append(slices.Clone(cfg.Exclude), scanExclude...) {
		expanded, err := config.ExpandPath(e)
		if err != nil {
			return nil, fmt.Errorf("failed to expand exclusion %q: %w", e, err)
		}
		if expanded == "" {
			continue
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve exclusion %q: %w", e, err)
		}
		s.Exclude = append(s.Exclude, abs)
	}

	if scanAlgorithm != "" {
		s.Algorithm = scanAlgorithm
	}
	if scanWorkers > 0 {
		s.Workers = scanWorkers
	}
	if scanSyncEvery >= 0 {
		s.SyncEvery = scanSyncEvery
	}
	s.Workers = tuner.Resolve(s.Workers)
	return s, nil
}

// runScan is the scan command handler.
func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	settings, err := resolveScanSettings(cfg, args)
	if err != nil {
		return err
	}
	formatter, err := formatterFor(cfg)
	if err != nil {
		return err
	}
	engine, err := digest.NewEngine(settings.Algorithm)
	if err != nil {
		return err
	}

	// Setup failures abort before the destination is touched.
	info, err := os.Stat(settings.Root)
	if err != nil {
		return fmt.Errorf("cannot access scan root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", scanner.ErrRootNotDirectory, settings.Root)
	}

	overwrite, err := resolveOverwrite(settings.Destination)
	if err != nil {
		return err
	}

	w, err := manifest.Create(settings.Destination, manifest.CreateOptions{
		Overwrite: overwrite,
		SyncEvery: settings.SyncEvery,
	})
	if err != nil {
		return err
	}

	m := exclude.New(settings.Exclude...)
	if exclude.Under(settings.Destination, settings.Root) && !m.IsExcluded(filepath.Dir(settings.Destination)) {
		printInfo("Warning: %s is inside the scanned tree and will be digested while being written", settings.Destination)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	onProgress, finish := newProgress(scanProgress)

	printInfo("Scanning %s with %s...", settings.Root, engine.Algorithm())
	res, scanErr := scanner.New(scanner.Options{
		Root:       settings.Root,
		Exclude:    settings.Exclude,
		Engine:     engine,
		Workers:    settings.Workers,
		OnProgress: onProgress,
	}).Scan(ctx, w)
	finish()

	closeErr := w.Close()
	if scanErr != nil {
		return scanErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to finish manifest: %w", closeErr)
	}

	if cfg.History.Enabled && !scanNoHistory {
		recordHistory(cfg, history.FromScan(res, w.Path()))
	}

	if !getQuiet() {
		if err := render(formatter, output.ScanSummary(res, w.Path())); err != nil {
			return err
		}
	}

	if res.Interrupted {
		return &exitError{
			code: exitAborted,
			err:  fmt.Errorf("scan interrupted; %d records written to %s", res.RecordsWritten, w.Path()),
		}
	}
	return nil
}

// resolveOverwrite decides whether an existing destination may be
// truncated: --force, or a yes at the interactive prompt.
func resolveOverwrite(dest string) (bool, error) {
	if scanForce {
		return true, nil
	}
	if _, err := os.Lstat(dest); err != nil {
		// Missing destinations need no permission; other stat failures
		// surface from manifest.Create.
		return false, nil
	}

	ok, err := confirmOverwrite(dest)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: %s (use --force to overwrite)", manifest.ErrDestinationExists, dest)
	}
	return true, nil
}

// confirmOverwrite asks on the terminal. Without a terminal the answer is
// no.
func confirmOverwrite(dest string) (bool, error) {
	if !stdinIsTerminal() {
		return false, nil
	}

	fmt.Fprintf(promptOutput, "%s already exists. Overwrite? [y/N] ", dest)
	line, err := bufio.NewReader(promptInput).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// newProgress returns a progress callback for the scanner and a function
// that clears the display. Progress is only drawn on a terminal.
func newProgress(enabled bool) (func(types.ScanProgress), func()) {
	if !enabled || getQuiet() || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil, func() {}
	}

	bar := progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription("Scanning"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	update := func(p types.ScanProgress) {
		_ = bar.Set64(p.RecordsWritten)
	}
	return update, func() { _ = bar.Finish() }
}

// recordHistory stores e. History is best effort: a failure is logged and
// reported but never fails the command.
func recordHistory(cfg *config.Config, e *history.Entry) {
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		cliLog.Warn("history unavailable", "path", cfg.History.Path, "error", err)
		return
	}
	defer store.Close()

	if err := store.Record(e); err != nil {
		cliLog.Warn("failed to record history", "error", err)
	}
}

// render formats r and writes it to stdout.
func render(f output.Formatter, r *output.Result) error {
	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err := os.Stdout.Write(buf.Bytes())
	return err
}
