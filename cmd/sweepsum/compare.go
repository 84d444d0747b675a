package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/compare"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/history"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/output"
)

var compareCmd = &cobra.Command{
	Use:   "compare FIRST SECOND",
	Short: "Report paths added, removed or changed between two manifests",
	Long: `Compare two manifests by path.

Paths only in the first manifest, paths only in the second, and paths whose
digests differ are reported. Two ERROR records for the same path are equal.
Malformed lines are skipped with a warning; duplicate paths keep their last
record.

Exit status is 0 when the manifests are identical, 1 when they differ and
2 when a manifest cannot be read.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

var compareNoHistory bool

func init() {
	compareCmd.Flags().BoolVar(&compareNoHistory, "no-history", false, "do not record this run in history")
	rootCmd.AddCommand(compareCmd)
}

// runCompare is the compare command handler.
func runCompare(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	formatter, err := formatterFor(cfg)
	if err != nil {
		return err
	}

	report, err := compare.Files(args[0], args[1])
	if err != nil {
		return err
	}

	if !getQuiet() {
		warnDiagnostics(os.Stderr, args[0], report.First)
		warnDiagnostics(os.Stderr, args[1], report.Second)
	}

	if cfg.History.Enabled && !compareNoHistory {
		recordHistory(cfg, history.FromCompare(report))
	}

	if err := render(formatter, output.DiffResult(report)); err != nil {
		return err
	}

	if !report.Identical {
		return &exitError{code: exitDifferences}
	}
	return nil
}

// warnDiagnostics writes one line per skipped malformed line, naming the
// manifest, line number and reason, then notes superseded duplicates.
func warnDiagnostics(w io.Writer, path string, s compare.Side) {
	for _, d := range s.Diagnostics {
		fmt.Fprintf(w, "Warning: %s: %s (skipped)\n", path, d)
	}
	if s.Duplicates > 0 {
		fmt.Fprintf(w, "Warning: %s: %d duplicate path(s), last entry kept\n", path, s.Duplicates)
	}
}
