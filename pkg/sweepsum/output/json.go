package output

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/types"
)

// jsonScan is the JSON shape of a scan summary. Elapsed is rendered as a
// duration string rather than nanoseconds.
type jsonScan struct {
	*types.ScanResult
	Elapsed     string `json:"elapsed"`
	Destination string `json:"destination"`
}

// JSONFormatter formats output as a single indented JSON object.
// A diff or manifest is written as-is; a scan summary carries the
// destination manifest alongside its counters.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	if err := r.validate(); err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(jsonPayload(r))
}

func jsonPayload(r *Result) any {
	switch r.Kind {
	case KindDiff:
		return r.Diff
	case KindManifest:
		return r.Manifest
	default:
		return jsonScan{
			ScanResult:  r.Scan,
			Elapsed:     r.Scan.Elapsed.String(),
			Destination: r.Destination,
		}
	}
}

func init() {
	Register("json", func(Options) Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// jsonlDiffLine is one difference in JSONL output.
type jsonlDiffLine struct {
	Status string `json:"status"`
	Path   string `json:"path"`
	First  string `json:"first,omitempty"`
	Second string `json:"second,omitempty"`
}

// JSONLFormatter formats output as newline-delimited JSON (one object per line).
// Each difference, manifest record or scan error is written as a compact
// JSON object on its own line. This format is suitable for streaming
// processing with tools like jq.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	if err := r.validate(); err != nil {
		return err
	}

	var items []any
	switch r.Kind {
	case KindDiff:
		for _, p := range r.Diff.OnlyInFirst {
			items = append(items, jsonlDiffLine{Status: StatusOnlyInFirst, Path: p})
		}
		for _, p := range r.Diff.OnlyInSecond {
			items = append(items, jsonlDiffLine{Status: StatusOnlyInSecond, Path: p})
		}
		for _, m := range r.Diff.Mismatched {
			items = append(items, jsonlDiffLine{Status: StatusMismatch, Path: m.Path, First: m.First, Second: m.Second})
		}
	case KindManifest:
		for _, rec := range r.Manifest.Records {
			items = append(items, rec)
		}
	case KindScan:
		for _, e := range r.Scan.Errors {
			items = append(items, e)
		}
	}

	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func(Options) Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
