// Package history keeps a log of past scan and compare runs in a badger
// store under the sweepsum data directory.
package history

import (
	"time"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/compare"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/types"
)

// OperationType represents the type of operation.
type OperationType string

const (
	// OpScan represents a scan that wrote a manifest.
	OpScan OperationType = "scan"
	// OpCompare represents a comparison of two manifests.
	OpCompare OperationType = "compare"
)

// Entry records one run. Scan entries fill the scan fields, compare
// entries the compare fields.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation OperationType `json:"operation"`

	// Scan runs.
	Root        string        `json:"root,omitempty"`
	Manifest    string        `json:"manifest,omitempty"`
	Algorithm   string        `json:"algorithm,omitempty"`
	Records     int64         `json:"records,omitempty"`
	Errors      int64         `json:"errors,omitempty"`
	Bytes       int64         `json:"bytes,omitempty"`
	Elapsed     time.Duration `json:"elapsed,omitempty"`
	Interrupted bool          `json:"interrupted,omitempty"`

	// Compare runs.
	First        string `json:"first,omitempty"`
	Second       string `json:"second,omitempty"`
	OnlyInFirst  int    `json:"only_in_first,omitempty"`
	OnlyInSecond int    `json:"only_in_second,omitempty"`
	Mismatched   int    `json:"mismatched,omitempty"`
	Matched      int    `json:"matched,omitempty"`
	Identical    bool   `json:"identical,omitempty"`
}

// FromScan builds an entry for a finished scan that wrote to dest.
func FromScan(r *types.ScanResult, dest string) *Entry {
	return &Entry{
		Operation:   OpScan,
		Root:        r.Root,
		Manifest:    dest,
		Algorithm:   r.Algorithm,
		Records:     r.RecordsWritten,
		Errors:      r.ErrorRecords,
		Bytes:       r.BytesHashed,
		Elapsed:     r.Elapsed,
		Interrupted: r.Interrupted,
	}
}

// FromCompare builds an entry for a comparison.
func FromCompare(r *compare.Report) *Entry {
	return &Entry{
		Operation:    OpCompare,
		First:        r.First.Source,
		Second:       r.Second.Source,
		OnlyInFirst:  len(r.OnlyInFirst),
		OnlyInSecond: len(r.OnlyInSecond),
		Mismatched:   len(r.Mismatched),
		Matched:      r.Matched,
		Identical:    r.Identical,
	}
}
