// Package types provides core data types shared by the sweepsum scanner,
// comparator and presenters: scan results, per-path errors, progress
// snapshots, and size formatting helpers.
package types

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
)

// ScanResult contains the aggregated results of a scan run.
// The records themselves are streamed to the manifest sink; the result only
// carries counters and the non-fatal errors met along the way.
type ScanResult struct {
	// Root is the resolved absolute path that was scanned.
	Root string `json:"root"`

	// Algorithm is the digest algorithm used for every record.
	Algorithm string `json:"algorithm"`

	// RecordsWritten is the number of manifest lines written to the sink.
	RecordsWritten int64 `json:"records_written"`

	// ErrorRecords is the number of records written with the error sentinel.
	ErrorRecords int64 `json:"error_records"`

	// FilesHashed is the number of regular files digested successfully.
	FilesHashed int64 `json:"files_hashed"`

	// BytesHashed is the total content size of successfully digested files.
	BytesHashed int64 `json:"bytes_hashed"`

	// DirsScanned is the number of directories entered.
	DirsScanned int64 `json:"dirs_scanned"`

	// DirsPruned is the number of directories skipped by exclusion.
	DirsPruned int64 `json:"dirs_pruned"`

	// Elapsed is the wall time of the scan.
	Elapsed time.Duration `json:"elapsed"`

	// Interrupted is set when the scan stopped early on context cancellation.
	Interrupted bool `json:"interrupted,omitempty"`

	// Errors contains every non-fatal error encountered during the scan.
	Errors []ScanError `json:"errors,omitempty"`
}

// ScanError pairs a path with the reason it could not be processed.
type ScanError struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path"`

	// Reason is a short classification (permission, not-found, io, ...).
	Reason string `json:"reason,omitempty"`

	// Error is the error message describing what went wrong.
	Error string `json:"error"`
}

// ScanProgress is a point-in-time snapshot of a running scan.
type ScanProgress struct {
	DirsScanned    int64  `json:"dirs_scanned"`
	RecordsWritten int64  `json:"records_written"`
	ErrorRecords   int64  `json:"error_records"`
	BytesHashed    int64  `json:"bytes_hashed"`
	CurrentPath    string `json:"current_path"`
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units, e.g. FormatSize(1536*1024) returns "1.5 MiB".
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}
