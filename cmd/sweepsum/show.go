package main

import (
	"github.com/spf13/cobra"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/manifest"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/output"
)

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Display a manifest",
	Long: `Display the effective records of a manifest sorted by path, with counts of
unreadable files, duplicate paths and malformed lines.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

var showErrorsOnly bool

func init() {
	showCmd.Flags().BoolVar(&showErrorsOnly, "errors-only", false, "only list files recorded as unreadable")
	rootCmd.AddCommand(showCmd)
}

// runShow is the show command handler.
func runShow(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	formatter, err := formatterFor(cfg)
	if err != nil {
		return err
	}

	m, err := manifest.LoadFile(args[0])
	if err != nil {
		return err
	}

	return render(formatter, output.ManifestResult(output.NewManifestView(m, showErrorsOnly)))
}
