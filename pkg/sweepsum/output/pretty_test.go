package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/compare"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/manifest"
)

func TestPrettyFormatter_Diff(t *testing.T) {
	out := format(t, "pretty", sampleDiff(t))

	assert.Contains(t, out, "before.txt")
	assert.Contains(t, out, "after.txt")
	assert.Contains(t, out, "Only in first (1)")
	assert.Contains(t, out, "/old")
	assert.Contains(t, out, "Only in second (1)")
	assert.Contains(t, out, "/etc/c")
	assert.Contains(t, out, "Mismatched (1)")
	assert.Contains(t, out, "/etc/b")
	assert.Contains(t, out, "Matched:")
	assert.NotContains(t, out, "identical")
}

func TestPrettyFormatter_Identical(t *testing.T) {
	out := format(t, "pretty", identicalDiff(t))

	assert.Contains(t, out, "Manifests are identical")
	assert.NotContains(t, out, "Only in first")
	assert.NotContains(t, out, "Mismatched (")
}

func TestPrettyFormatter_Manifest(t *testing.T) {
	out := format(t, "pretty", sampleManifest(t, false))

	assert.Contains(t, out, "scan.txt")
	assert.Contains(t, out, "/srv/a")
	assert.Contains(t, out, "/srv/b file")
	assert.Contains(t, out, "/srv/locked")
	assert.Contains(t, out, manifest.Sentinel)
	assert.Contains(t, out, "Warnings:")
	assert.Contains(t, out, "malformed manifest line 4")
	assert.Contains(t, out, "duplicate path, last entry kept: /srv/a")
}

func TestPrettyFormatter_EmptyManifest(t *testing.T) {
	r := ManifestResult(NewManifestView(manifest.New(), false))
	assert.Contains(t, format(t, "pretty", r), "Manifest is empty")

	r = ManifestResult(NewManifestView(manifest.New(), true))
	assert.Contains(t, format(t, "pretty", r), "No unreadable files recorded")
}

func TestPrettyFormatter_Scan(t *testing.T) {
	out := format(t, "pretty", sampleScan())

	assert.Contains(t, out, "/srv")
	assert.Contains(t, out, "/tmp/scan.txt")
	assert.Contains(t, out, "sha256")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "3.0 MiB")
	assert.Contains(t, out, "Unreadable (1)")
	assert.Contains(t, out, "permission")
	assert.NotContains(t, out, "interrupted")
}

func TestPrettyFormatter_Interrupted(t *testing.T) {
	r := sampleScan()
	r.Scan.Interrupted = true

	assert.Contains(t, format(t, "pretty", r), "Scan interrupted")
}

func TestPrettyFormatter_ZeroValue(t *testing.T) {
	f := &PrettyFormatter{}
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, identicalDiff(t)))
	assert.NotEmpty(t, buf.String())
}

func TestPrettyFormatter_HighlightKeepsText(t *testing.T) {
	f := NewPrettyFormatter(Palette{})
	_, mb := compare.Mask(digestA, digestB)

	got := stripANSI(f.highlight(digestB, mb))
	assert.Equal(t, digestB, got)
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
	assert.Equal(t, "", padRight("", 0))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, p, Palette{}.withDefaults())

	custom := Palette{Added: "#00ff00"}.withDefaults()
	assert.Equal(t, "#00ff00", custom.Added)
	assert.Equal(t, p.Removed, custom.Removed)
}

func TestNewStyles(t *testing.T) {
	s := NewStyles(Palette{})
	require.NotNil(t, s)
	assert.Equal(t, "x", stripANSI(s.Added.Render("x")))
}

// stripANSI removes CSI escape sequences.
func stripANSI(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			i += 2
			for i < len(s) && (s[i] < 0x40 || s[i] > 0x7e) {
				i++
			}
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
