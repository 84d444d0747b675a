package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/compare"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/manifest"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/types"
)

// PlainFormatter formats output as line-oriented text without colors.
// It produces plain text output suitable for scripting and piping.
//
// A diff is written as ONLY_IN_FIRST and ONLY_IN_SECOND lines followed by
// one MISMATCH block per differing path. Identical manifests produce no
// output. A manifest is written back in its on-disk line format.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	if err := r.validate(); err != nil {
		return err
	}

	switch r.Kind {
	case KindDiff:
		writePlainDiff(w, r.Diff)
	case KindManifest:
		for _, rec := range r.Manifest.Records {
			w.WriteString(manifest.Encode(rec))
			w.WriteByte('\n')
		}
	case KindScan:
		return writePlainScan(w, r.Scan, r.Destination)
	}
	return nil
}

func writePlainDiff(w *bytes.Buffer, d *compare.Report) {
	for _, p := range d.OnlyInFirst {
		fmt.Fprintf(w, "ONLY_IN_FIRST %s\n", p)
	}
	for _, p := range d.OnlyInSecond {
		fmt.Fprintf(w, "ONLY_IN_SECOND %s\n", p)
	}
	for _, m := range d.Mismatched {
		fmt.Fprintf(w, "MISMATCH %s\n", m.Path)
		fmt.Fprintf(w, "  first:  %s\n", m.First)
		fmt.Fprintf(w, "  second: %s\n", m.Second)
		fmt.Fprintf(w, "          %s\n", markerLine(m.First, m.Second))
	}
}

// markerLine puts a caret under every position where a and b differ.
func markerLine(a, b string) string {
	ma, mb := compare.Mask(a, b)
	n := len(ma)
	if len(mb) > n {
		n = len(mb)
	}

	var sb strings.Builder
	for i := 0; i < n; i++ {
		if (i < len(ma) && ma[i]) || (i < len(mb) && mb[i]) {
			sb.WriteByte('^')
		} else {
			sb.WriteByte(' ')
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

func writePlainScan(w *bytes.Buffer, r *types.ScanResult, dest string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)

	rows := [][2]string{
		{"root", r.Root},
		{"manifest", dest},
		{"algorithm", r.Algorithm},
		{"records", fmt.Sprintf("%d", r.RecordsWritten)},
		{"errors", fmt.Sprintf("%d", r.ErrorRecords)},
		{"bytes", fmt.Sprintf("%d", r.BytesHashed)},
		{"dirs", fmt.Sprintf("%d", r.DirsScanned)},
		{"pruned", fmt.Sprintf("%d", r.DirsPruned)},
		{"elapsed", r.Elapsed.String()},
		{"interrupted", fmt.Sprintf("%t", r.Interrupted)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, e := range r.Errors {
		fmt.Fprintf(w, "ERROR %s %s: %s\n", e.Reason, e.Path, e.Error)
	}
	return nil
}

func init() {
	Register("plain", func(Options) Formatter {
		return &PlainFormatter{}
	})
}

// Ensure PlainFormatter implements Formatter.
var _ Formatter = (*PlainFormatter)(nil)
