// Package config provides configuration management for sweepsum.
package config

// Default configuration values for sweepsum.
const (
	// DefaultPath is the default root to scan when none is specified.
	DefaultPath = "/"

	// DefaultAlgorithm is the digest algorithm used when none is configured.
	DefaultAlgorithm = "sha256"

	// DefaultWorkers is the default number of traversal workers.
	// One worker keeps the scan single-pass and sequential.
	DefaultWorkers = 1

	// DefaultSyncEvery is the default number of records between fsyncs of
	// the manifest file. Zero disables periodic syncing.
	DefaultSyncEvery = 1000

	// DefaultRetentionDays is the default number of days to retain history.
	DefaultRetentionDays = 90

	// DefaultFormat is the default report format.
	DefaultFormat = "pretty"
)

// DefaultExclusions are the pseudo-filesystem mount points skipped by default.
// Their trees are virtual and can be unbounded or block on read.
var DefaultExclusions = []string{
	"/proc",
	"/sys",
	"/dev",
	"/run",
}

// DefaultPalette is the default color palette for terminal output.
// Values are lipgloss colors: ANSI indexes or hex strings.
var DefaultPalette = PaletteConfig{
	Added:   "10",
	Removed: "9",
	Changed: "11",
	Error:   "13",
	Path:    "14",
	Digest:  "7",
	Muted:   "8",
}
