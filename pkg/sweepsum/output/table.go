package output

import (
	"bytes"
	"encoding/csv"
	"strings"
)

// Row status values used by the tabular formatters.
const (
	StatusOnlyInFirst  = "only_in_first"
	StatusOnlyInSecond = "only_in_second"
	StatusMismatch     = "mismatch"
)

// rows flattens a result into a header and data rows shared by the
// tabular formatters.
func rows(r *Result) (header []string, data [][]string) {
	switch r.Kind {
	case KindDiff:
		header = []string{"STATUS", "PATH", "FIRST", "SECOND"}
		for _, p := range r.Diff.OnlyInFirst {
			data = append(data, []string{StatusOnlyInFirst, p, "", ""})
		}
		for _, p := range r.Diff.OnlyInSecond {
			data = append(data, []string{StatusOnlyInSecond, p, "", ""})
		}
		for _, m := range r.Diff.Mismatched {
			data = append(data, []string{StatusMismatch, m.Path, m.First, m.Second})
		}
	case KindManifest:
		header = []string{"DIGEST", "PATH"}
		for _, rec := range r.Manifest.Records {
			data = append(data, []string{rec.Field(), rec.Path})
		}
	case KindScan:
		header = []string{"PATH", "REASON", "ERROR"}
		for _, e := range r.Scan.Errors {
			data = append(data, []string{e.Path, e.Reason, e.Error})
		}
	}
	return header, data
}

// TSVFormatter formats output as tab-separated values.
// It produces a simple table with a header row followed by data rows.
// Fields are written verbatim; manifest paths never contain line breaks,
// but a path containing a tab will shift columns.
type TSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	if err := r.validate(); err != nil {
		return err
	}

	header, data := rows(r)
	w.WriteString(strings.Join(header, "\t"))
	w.WriteByte('\n')
	for _, row := range data {
		w.WriteString(strings.Join(row, "\t"))
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("tsv", func(Options) Formatter {
		return &TSVFormatter{}
	})
}

// Ensure TSVFormatter implements Formatter.
var _ Formatter = (*TSVFormatter)(nil)

// CSVFormatter formats output as comma-separated values with proper quoting.
// It uses encoding/csv for RFC 4180 compliant output.
type CSVFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *CSVFormatter) Format(w *bytes.Buffer, r *Result) error {
	if err := r.validate(); err != nil {
		return err
	}

	header, data := rows(r)
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(data); err != nil {
		return err
	}
	return writer.Error()
}

func init() {
	Register("csv", func(Options) Formatter {
		return &CSVFormatter{}
	})
}

// Ensure CSVFormatter implements Formatter.
var _ Formatter = (*CSVFormatter)(nil)

// MarkdownFormatter formats output as a GitHub-flavored Markdown table.
// It produces a table with header, separator, and data rows using | delimiters.
type MarkdownFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *MarkdownFormatter) Format(w *bytes.Buffer, r *Result) error {
	if err := r.validate(); err != nil {
		return err
	}

	header, data := rows(r)
	writeMarkdownRow(w, header)

	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeMarkdownRow(w, sep)

	for _, row := range data {
		writeMarkdownRow(w, row)
	}
	return nil
}

func writeMarkdownRow(w *bytes.Buffer, cells []string) {
	w.WriteString("|")
	for _, c := range cells {
		w.WriteString(" ")
		w.WriteString(escapeMarkdownPipe(c))
		w.WriteString(" |")
	}
	w.WriteByte('\n')
}

// escapeMarkdownPipe escapes pipe characters in a string for Markdown tables.
func escapeMarkdownPipe(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func init() {
	Register("markdown", func(Options) Formatter {
		return &MarkdownFormatter{}
	})
}

// Ensure MarkdownFormatter implements Formatter.
var _ Formatter = (*MarkdownFormatter)(nil)

