package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/config"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/history"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View past scan and compare runs",
	Long: `View the history of scan and compare runs.

Each run records its inputs and counts: the root and manifest of a scan,
or the two manifests and the number of differences of a comparison.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show details of a specific run",
	Long:  `Display detailed information about a run by its ID or a unique ID prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory opens the configured history store.
func openHistory() (*history.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, cfg, nil
}

// runHistory lists recent runs.
func runHistory(cmd *cobra.Command, _ []string) error {
	store, _, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No history entries found.")
		fmt.Fprintln(w, "Run 'sweepsum scan -o FILE [root]' to record a manifest.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-8s  %-16s  %s\n", "ID", "TYPE", "WHEN", "SUMMARY")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range entries {
		fmt.Fprintf(w, "%-36s  %-8s  %-16s  %s\n",
			e.ID,
			e.Operation,
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			summarizeEntry(e))
	}
	fmt.Fprintln(w, strings.Repeat("-", 100))
	fmt.Fprintf(w, "Showing %d entries. Use --limit to see more.\n", len(entries))
	fmt.Fprintln(w, "Use 'sweepsum history show <id>' for details on a specific entry.")
	return nil
}

// summarizeEntry returns a one-line description of a run.
func summarizeEntry(e history.Entry) string {
	switch e.Operation {
	case history.OpScan:
		s := fmt.Sprintf("%s -> %s (%d records, %d errors)", e.Root, e.Manifest, e.Records, e.Errors)
		if e.Interrupted {
			s += " interrupted"
		}
		return s
	case history.OpCompare:
		if e.Identical {
			return fmt.Sprintf("%s = %s", e.First, e.Second)
		}
		return fmt.Sprintf("%s vs %s (-%d +%d ~%d)", e.First, e.Second, e.OnlyInFirst, e.OnlyInSecond, e.Mismatched)
	default:
		return ""
	}
}

// runHistoryShow displays details of a specific run.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, _, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	e, err := store.Get(args[0])
	if err != nil {
		return fmt.Errorf("failed to get entry: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Run Details")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "ID:          %s\n", e.ID)
	fmt.Fprintf(w, "Timestamp:   %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Operation:   %s\n", e.Operation)

	switch e.Operation {
	case history.OpScan:
		fmt.Fprintf(w, "Root:        %s\n", e.Root)
		fmt.Fprintf(w, "Manifest:    %s\n", e.Manifest)
		fmt.Fprintf(w, "Algorithm:   %s\n", e.Algorithm)
		fmt.Fprintf(w, "Records:     %d\n", e.Records)
		fmt.Fprintf(w, "Errors:      %d\n", e.Errors)
		fmt.Fprintf(w, "Hashed:      %s\n", types.FormatSize(e.Bytes))
		fmt.Fprintf(w, "Elapsed:     %s\n", e.Elapsed.Round(time.Millisecond))
		fmt.Fprintf(w, "Interrupted: %t\n", e.Interrupted)
	case history.OpCompare:
		fmt.Fprintf(w, "First:       %s\n", e.First)
		fmt.Fprintf(w, "Second:      %s\n", e.Second)
		fmt.Fprintf(w, "Only first:  %d\n", e.OnlyInFirst)
		fmt.Fprintf(w, "Only second: %d\n", e.OnlyInSecond)
		fmt.Fprintf(w, "Mismatched:  %d\n", e.Mismatched)
		fmt.Fprintf(w, "Matched:     %d\n", e.Matched)
		fmt.Fprintf(w, "Identical:   %t\n", e.Identical)
	}
	return nil
}

// runHistoryClean removes old history entries.
func runHistoryClean(cmd *cobra.Command, _ []string) error {
	store, cfg, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	retentionDays := cfg.History.RetentionDays
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}

	removed, err := store.Cleanup(retentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries older than %d days.\n", removed, retentionDays)
	return nil
}
