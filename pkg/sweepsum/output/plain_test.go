package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatter_Diff(t *testing.T) {
	out := format(t, "plain", sampleDiff(t))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "ONLY_IN_FIRST /old", lines[0])
	assert.Equal(t, "ONLY_IN_SECOND /etc/c", lines[1])
	assert.Equal(t, "MISMATCH /etc/b", lines[2])
	assert.Equal(t, "  first:  ERROR", lines[3])
	assert.Equal(t, "  second: "+digestB, lines[4])
	assert.Equal(t, "          "+strings.Repeat("^", 64), lines[5])
}

func TestPlainFormatter_IdenticalIsSilent(t *testing.T) {
	assert.Empty(t, format(t, "plain", identicalDiff(t)))
}

func TestPlainFormatter_Manifest(t *testing.T) {
	out := format(t, "plain", sampleManifest(t, false))

	want := digestC + "\t/srv/a\n" +
		digestB + "\t/srv/b file\n" +
		"ERROR\t/srv/locked\n"
	assert.Equal(t, want, out)
}

func TestPlainFormatter_Scan(t *testing.T) {
	out := format(t, "plain", sampleScan())

	assert.Contains(t, out, "root:")
	assert.Contains(t, out, "/srv\n")
	assert.Contains(t, out, "records:")
	assert.Contains(t, out, "interrupted: false")
	assert.Contains(t, out, "ERROR permission /srv/locked: open /srv/locked: permission denied\n")
}

func TestMarkerLine(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"equal", "abcd", "abcd", ""},
		{"middle", "abcd", "abXd", "  ^"},
		{"longer second", "ab", "abcd", "  ^^"},
		{"longer first", "abcd", "a", " ^^^"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, markerLine(tt.a, tt.b))
		})
	}
}
