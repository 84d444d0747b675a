package output

import (
	"bytes"
)

// resultPaths returns the paths a result refers to: every reported path of
// a diff in report order, every record of a manifest, or every unreadable
// path of a scan.
func resultPaths(r *Result) []string {
	var paths []string
	switch r.Kind {
	case KindDiff:
		paths = append(paths, r.Diff.OnlyInFirst...)
		paths = append(paths, r.Diff.OnlyInSecond...)
		for _, m := range r.Diff.Mismatched {
			paths = append(paths, m.Path)
		}
	case KindManifest:
		for _, rec := range r.Manifest.Records {
			paths = append(paths, rec.Path)
		}
	case KindScan:
		for _, e := range r.Scan.Errors {
			paths = append(paths, e.Path)
		}
	}
	return paths
}

// PathsFormatter formats output as one file path per line.
// It produces a simple list of paths suitable for piping to other tools.
// Only the paths are output, without digests or other metadata.
type PathsFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PathsFormatter) Format(w *bytes.Buffer, r *Result) error {
	if err := r.validate(); err != nil {
		return err
	}
	for _, p := range resultPaths(r) {
		w.WriteString(p)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("paths", func(Options) Formatter {
		return &PathsFormatter{}
	})
}

// Ensure PathsFormatter implements Formatter.
var _ Formatter = (*PathsFormatter)(nil)

// NullFormatter formats output as null-delimited paths.
// It produces paths separated by null bytes (0x00), suitable for use with
// xargs -0 or other tools that support null-delimited input.
type NullFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *NullFormatter) Format(w *bytes.Buffer, r *Result) error {
	if err := r.validate(); err != nil {
		return err
	}
	for _, p := range resultPaths(r) {
		w.WriteString(p)
		w.WriteByte(0)
	}
	return nil
}

func init() {
	Register("null", func(Options) Formatter {
		return &NullFormatter{}
	})
}

// Ensure NullFormatter implements Formatter.
var _ Formatter = (*NullFormatter)(nil)
