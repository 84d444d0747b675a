package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/compare"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/manifest"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/types"
)

// PrettyFormatter formats output with colors and styling using lipgloss.
// It produces a visually appealing output suitable for terminal display.
type PrettyFormatter struct {
	styles *Styles
}

// NewPrettyFormatter returns a pretty formatter using palette p.
func NewPrettyFormatter(p Palette) *PrettyFormatter {
	return &PrettyFormatter{styles: NewStyles(p)}
}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	if err := r.validate(); err != nil {
		return err
	}
	if f.styles == nil {
		f.styles = NewStyles(DefaultPalette())
	}

	switch r.Kind {
	case KindDiff:
		f.formatDiff(w, r.Diff)
	case KindManifest:
		f.formatManifest(w, r.Manifest)
	case KindScan:
		f.formatScan(w, r.Scan, r.Destination)
	}
	return nil
}

// formatDiff renders a comparison: header, the three sections, footer.
func (f *PrettyFormatter) formatDiff(w *bytes.Buffer, d *compare.Report) {
	s := f.styles

	header := []string{
		f.field("First:", describeSide(d.First)),
		f.field("Second:", describeSide(d.Second)),
	}
	w.WriteString(s.HeaderBox.Render(strings.Join(header, "\n")))
	w.WriteString("\n")

	if len(d.OnlyInFirst) > 0 {
		w.WriteString(s.Title.Render(fmt.Sprintf("Only in first (%d)", len(d.OnlyInFirst))))
		w.WriteString("\n")
		for _, p := range d.OnlyInFirst {
			fmt.Fprintf(w, "  %s %s\n", s.Removed.Render("-"), s.Removed.Render(p))
		}
	}

	if len(d.OnlyInSecond) > 0 {
		w.WriteString(s.Title.Render(fmt.Sprintf("Only in second (%d)", len(d.OnlyInSecond))))
		w.WriteString("\n")
		for _, p := range d.OnlyInSecond {
			fmt.Fprintf(w, "  %s %s\n", s.Added.Render("+"), s.Added.Render(p))
		}
	}

	if len(d.Mismatched) > 0 {
		w.WriteString(s.Title.Render(fmt.Sprintf("Mismatched (%d)", len(d.Mismatched))))
		w.WriteString("\n")
		for _, m := range d.Mismatched {
			f.formatMismatch(w, m)
		}
	}

	var parts []string
	if d.Identical {
		parts = append(parts, s.Success.Render("Manifests are identical"))
	} else {
		parts = append(parts,
			f.field("Only in first:", fmt.Sprintf("%d", len(d.OnlyInFirst))),
			f.field("Only in second:", fmt.Sprintf("%d", len(d.OnlyInSecond))),
			f.field("Mismatched:", fmt.Sprintf("%d", len(d.Mismatched))))
	}
	parts = append(parts, f.field("Matched:", fmt.Sprintf("%d", d.Matched)))
	w.WriteString(s.FooterBox.Render(strings.Join(parts, "  ")))
	w.WriteString("\n")
}

// formatMismatch renders one mismatch block with both fields and the
// differing positions highlighted.
func (f *PrettyFormatter) formatMismatch(w *bytes.Buffer, m compare.Mismatch) {
	s := f.styles
	ma, mb := compare.Mask(m.First, m.Second)

	fmt.Fprintf(w, "  %s %s\n", s.Changed.Render("~"), s.Path.Render(m.Path))
	fmt.Fprintf(w, "      %s %s\n", s.Label.Render("first: "), f.highlight(m.First, ma))
	fmt.Fprintf(w, "      %s %s\n", s.Label.Render("second:"), f.highlight(m.Second, mb))
}

// highlight renders field with the masked positions emphasized. Runs of
// equal state are rendered together to keep escape sequences short.
func (f *PrettyFormatter) highlight(field string, mask []bool) string {
	s := f.styles
	base := s.Digest
	if field == manifest.Sentinel {
		base = s.Error
	}

	var sb strings.Builder
	start := 0
	for i := 1; i <= len(field); i++ {
		if i < len(field) && mask[i] == mask[start] {
			continue
		}
		style := base
		if mask[start] {
			style = s.Highlight
		}
		sb.WriteString(style.Render(field[start:i]))
		start = i
	}
	return sb.String()
}

// formatManifest renders a manifest listing.
func (f *PrettyFormatter) formatManifest(w *bytes.Buffer, v *ManifestView) {
	s := f.styles

	header := []string{f.field("Manifest:", v.Source)}
	info := []string{
		f.field("Paths:", fmt.Sprintf("%d", v.Paths)),
		f.field("Errors:", f.count(v.Errors, s.Error)),
	}
	if n := len(v.Duplicates); n > 0 {
		info = append(info, f.field("Duplicates:", f.count(n, s.Warning)))
	}
	if n := len(v.Malformed); n > 0 {
		info = append(info, f.field("Malformed:", f.count(n, s.Warning)))
	}
	header = append(header, strings.Join(info, "  "))
	w.WriteString(s.HeaderBox.Render(strings.Join(header, "\n")))
	w.WriteString("\n")

	if len(v.Records) == 0 {
		if v.ErrorsOnly {
			w.WriteString(s.Muted.Render("  No unreadable files recorded"))
		} else {
			w.WriteString(s.Muted.Render("  Manifest is empty"))
		}
		w.WriteString("\n")
	}

	width := manifest.DigestLen
	for _, rec := range v.Records {
		field := s.Digest.Render(rec.Digest)
		if rec.Err {
			field = s.Error.Render(padRight(manifest.Sentinel, width))
		}
		fmt.Fprintf(w, "  %s  %s\n", field, s.Path.Render(rec.Path))
	}

	if len(v.Malformed) > 0 || len(v.Duplicates) > 0 {
		w.WriteString("\n")
		w.WriteString(s.Warning.Bold(true).Render("Warnings:"))
		w.WriteString("\n")
		for _, m := range v.Malformed {
			w.WriteString(s.Warning.Render("  " + m))
			w.WriteString("\n")
		}
		for _, d := range v.Duplicates {
			w.WriteString(s.Warning.Render("  duplicate path, last entry kept: " + d))
			w.WriteString("\n")
		}
	}
}

// formatScan renders a scan summary.
func (f *PrettyFormatter) formatScan(w *bytes.Buffer, r *types.ScanResult, dest string) {
	s := f.styles

	lines := []string{
		f.field("Root:", r.Root),
		f.field("Manifest:", dest),
		strings.Join([]string{
			f.field("Algorithm:", r.Algorithm),
			f.field("Elapsed:", formatDuration(r.Elapsed)),
		}, "  "),
	}
	if r.Interrupted {
		lines = append(lines, s.Warning.Bold(true).Render("Scan interrupted; manifest holds the records written so far"))
	}
	w.WriteString(s.HeaderBox.Render(strings.Join(lines, "\n")))
	w.WriteString("\n")

	if len(r.Errors) > 0 {
		w.WriteString(s.Title.Render(fmt.Sprintf("Unreadable (%d)", len(r.Errors))))
		w.WriteString("\n")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s %s %s\n",
				s.Error.Render(padRight(e.Reason, 12)),
				s.Path.Render(e.Path),
				s.Muted.Render(e.Error))
		}
	}

	parts := []string{
		f.field("Records:", fmt.Sprintf("%d", r.RecordsWritten)),
		f.field("Errors:", f.count(int(r.ErrorRecords), s.Error)),
		f.field("Hashed:", types.FormatSize(r.BytesHashed)),
		f.field("Dirs:", fmt.Sprintf("%d", r.DirsScanned)),
		f.field("Pruned:", fmt.Sprintf("%d", r.DirsPruned)),
	}
	w.WriteString(s.FooterBox.Render(strings.Join(parts, "  ")))
	w.WriteString("\n")
}

func (f *PrettyFormatter) field(label, value string) string {
	return f.styles.Label.Render(label) + " " + f.styles.Value.Render(value)
}

// count renders n in style when non-zero.
func (f *PrettyFormatter) count(n int, style lipgloss.Style) string {
	if n == 0 {
		return "0"
	}
	return style.Render(fmt.Sprintf("%d", n))
}

func describeSide(s compare.Side) string {
	desc := fmt.Sprintf("%s (%d paths, %d errors)", s.Source, s.Paths, s.Errors)
	if s.Source == "" {
		desc = strings.TrimSpace(desc)
	}
	if s.Duplicates > 0 || s.Malformed > 0 {
		desc += fmt.Sprintf(" [%d duplicate, %d malformed]", s.Duplicates, s.Malformed)
	}
	return desc
}

// padRight pads a string with spaces on the right to the given width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// formatDuration formats a duration in a human-friendly way.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func init() {
	Register("pretty", func(opts Options) Formatter {
		return NewPrettyFormatter(opts.Palette)
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
