// Package compare diffs two manifests by path.
//
// Paths are the identity; the digest field is the value. A path missing
// from one side is reported as only in the other, a path whose digest
// fields differ as a mismatch. Two error sentinels are equal: both sides
// were unreadable and there is nothing more to say about them.
package compare

import (
	"fmt"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/logging"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/manifest"
)

var logger = logging.Get("compare")

// Mismatch is a path present in both manifests with different digest fields.
// First and Second are the on-disk fields: a hex digest or the sentinel.
type Mismatch struct {
	Path   string `json:"path" yaml:"path"`
	First  string `json:"first" yaml:"first"`
	Second string `json:"second" yaml:"second"`
}

// Side summarizes one input manifest.
type Side struct {
	Source     string `json:"source,omitempty" yaml:"source,omitempty"`
	Paths      int    `json:"paths" yaml:"paths"`
	Errors     int    `json:"errors" yaml:"errors"`
	Duplicates int    `json:"duplicates" yaml:"duplicates"`
	Malformed  int    `json:"malformed" yaml:"malformed"`

	// Diagnostics carries the line number and reason of every malformed
	// line, in file order.
	Diagnostics []string `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Report is the result of comparing two manifests. The three lists are
// disjoint and sorted by path.
type Report struct {
	First  Side `json:"first" yaml:"first"`
	Second Side `json:"second" yaml:"second"`

	OnlyInFirst  []string   `json:"only_in_first" yaml:"only_in_first"`
	OnlyInSecond []string   `json:"only_in_second" yaml:"only_in_second"`
	Mismatched   []Mismatch `json:"mismatched" yaml:"mismatched"`

	// Matched counts paths present in both with equal fields.
	Matched int `json:"matched" yaml:"matched"`

	// Identical is true iff all three lists are empty.
	Identical bool `json:"identical" yaml:"identical"`
}

// Differences returns the total number of reported paths.
func (r *Report) Differences() int {
	return len(r.OnlyInFirst) + len(r.OnlyInSecond) + len(r.Mismatched)
}

// Compare diffs a against b. Duplicate paths were already resolved by the
// loader, so each side contributes its last record per path.
func Compare(a, b *manifest.Manifest) *Report {
	r := &Report{
		First:        summarize(a),
		Second:       summarize(b),
		OnlyInFirst:  []string{},
		OnlyInSecond: []string{},
		Mismatched:   []Mismatch{},
	}

	for _, path := range a.Paths() {
		ra, _ := a.Get(path)
		rb, ok := b.Get(path)
		switch {
		case !ok:
			r.OnlyInFirst = append(r.OnlyInFirst, path)
		case ra.Field() != rb.Field():
			r.Mismatched = append(r.Mismatched, Mismatch{Path: path, First: ra.Field(), Second: rb.Field()})
		default:
			r.Matched++
		}
	}

	for _, path := range b.Paths() {
		if _, ok := a.Get(path); !ok {
			r.OnlyInSecond = append(r.OnlyInSecond, path)
		}
	}

	r.Identical = r.Differences() == 0
	return r
}

// Files loads both manifests and compares them. A missing file is a named
// failure wrapping manifest.ErrManifestNotFound.
func Files(first, second string) (*Report, error) {
	a, err := manifest.LoadFile(first)
	if err != nil {
		return nil, fmt.Errorf("loading first manifest: %w", err)
	}
	b, err := manifest.LoadFile(second)
	if err != nil {
		return nil, fmt.Errorf("loading second manifest: %w", err)
	}

	r := Compare(a, b)
	logger.Info("manifests compared",
		"first", first,
		"second", second,
		"only_in_first", len(r.OnlyInFirst),
		"only_in_second", len(r.OnlyInSecond),
		"mismatched", len(r.Mismatched),
		"matched", r.Matched)
	return r, nil
}

func summarize(m *manifest.Manifest) Side {
	s := Side{
		Source:     m.Source,
		Paths:      m.Len(),
		Errors:     m.ErrorCount(),
		Duplicates: len(m.Duplicates),
		Malformed:  len(m.Malformed),
	}
	for _, e := range m.Malformed {
		s.Diagnostics = append(s.Diagnostics, e.Error())
	}
	return s
}

// Mask marks the byte positions where a and b differ, for highlighting a
// mismatch. Positions past the end of the shorter string count as
// differing. The result never affects equality.
func Mask(a, b string) (ma, mb []bool) {
	ma = make([]bool, len(a))
	mb = make([]bool, len(b))

	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		differs := i >= len(a) || i >= len(b) || a[i] != b[i]
		if !differs {
			continue
		}
		if i < len(a) {
			ma[i] = true
		}
		if i < len(b) {
			mb[i] = true
		}
	}
	return ma, mb
}
