package compare

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/manifest"
)

var (
	abc = "abc123" + strings.Repeat("0", 58)
	def = "def456" + strings.Repeat("0", 58)
	nnn = "999aaa" + strings.Repeat("0", 58)
)

func load(t *testing.T, text string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Load(strings.NewReader(text))
	require.NoError(t, err)
	return m
}

func writeManifest(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestCompare_Scenario(t *testing.T) {
	a := load(t, abc+"\t/etc/a\nERROR\t/etc/b\n")
	b := load(t, abc+"\t/etc/a\n"+def+"\t/etc/b\n"+nnn+"\t/etc/c\n")

	r := Compare(a, b)

	assert.Empty(t, r.OnlyInFirst)
	assert.Equal(t, []string{"/etc/c"}, r.OnlyInSecond)
	assert.Equal(t, []Mismatch{{Path: "/etc/b", First: manifest.Sentinel, Second: def}}, r.Mismatched)
	assert.Equal(t, 1, r.Matched)
	assert.False(t, r.Identical)
	assert.Equal(t, 2, r.Differences())
	assert.Equal(t, 1, r.First.Errors)
	assert.Equal(t, 3, r.Second.Paths)
}

func TestCompare_SameManifestIsIdentical(t *testing.T) {
	text := abc + "\t/a\nERROR\t/b\n" + def + "\t/c d\n"

	r := Compare(load(t, text), load(t, text))

	assert.True(t, r.Identical)
	assert.Empty(t, r.OnlyInFirst)
	assert.Empty(t, r.OnlyInSecond)
	assert.Empty(t, r.Mismatched)
	assert.Equal(t, 3, r.Matched)
}

func TestCompare_ErrorEqualsError(t *testing.T) {
	r := Compare(load(t, "ERROR\t/x\n"), load(t, "ERROR\t/x\n"))

	assert.True(t, r.Identical)
	assert.Empty(t, r.Mismatched)
}

func TestCompare_ErrorAgainstDigestIsMismatch(t *testing.T) {
	r := Compare(load(t, abc+"\t/x\n"), load(t, "ERROR\t/x\n"))

	require.Len(t, r.Mismatched, 1)
	assert.Equal(t, Mismatch{Path: "/x", First: abc, Second: manifest.Sentinel}, r.Mismatched[0])
}

func TestCompare_Empty(t *testing.T) {
	r := Compare(manifest.New(), manifest.New())
	assert.True(t, r.Identical)

	r = Compare(manifest.New(), load(t, abc+"\t/only\n"))
	assert.False(t, r.Identical)
	assert.Equal(t, []string{"/only"}, r.OnlyInSecond)
}

func TestCompare_DuplicatesLastWins(t *testing.T) {
	// The first manifest changed its mind about /x; only the last line counts.
	a := load(t, abc+"\t/x\n"+def+"\t/x\n")
	b := load(t, def+"\t/x\n")

	r := Compare(a, b)

	assert.True(t, r.Identical)
	assert.Equal(t, 1, r.First.Duplicates)
}

func TestCompare_MalformedLinesDoNotAbort(t *testing.T) {
	a := load(t, abc+"\t/a\nnot-a-digest\t/b\n\n")
	b := load(t, abc+"\t/a\n")

	r := Compare(a, b)

	assert.True(t, r.Identical)
	assert.Equal(t, 1, r.First.Malformed)
	require.Len(t, r.First.Diagnostics, 1)
	assert.Contains(t, r.First.Diagnostics[0], "line 2")
	assert.Contains(t, r.First.Diagnostics[0], "not-a-digest")
	assert.Empty(t, r.Second.Diagnostics)
}

func TestCompare_SortedOutput(t *testing.T) {
	a := load(t, abc+"\t/z\n"+abc+"\t/m\n"+abc+"\t/a\n")
	b := load(t, abc+"\t/y\n"+abc+"\t/b\n")

	r := Compare(a, b)

	assert.Equal(t, []string{"/a", "/m", "/z"}, r.OnlyInFirst)
	assert.Equal(t, []string{"/b", "/y"}, r.OnlyInSecond)
}

// TestCompare_Partition checks that every path in either manifest lands in
// exactly one bucket.
func TestCompare_Partition(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	digests := []string{abc, def, nnn, manifest.Sentinel}

	for round := 0; round < 50; round++ {
		a, b := manifest.New(), manifest.New()
		for i := 0; i < 40; i++ {
			path := fmt.Sprintf("/p/%d", rng.Intn(60))
			rec := manifest.Record{Path: path}
			if d := digests[rng.Intn(len(digests))]; d == manifest.Sentinel {
				rec.Err = true
			} else {
				rec.Digest = d
			}
			if rng.Intn(2) == 0 {
				a.Add(rec)
			} else {
				b.Add(rec)
			}
		}

		r := Compare(a, b)

		seen := make(map[string]string)
		mark := func(path, bucket string) {
			prev, dup := seen[path]
			require.False(t, dup, "round %d: %s in both %s and %s", round, path, prev, bucket)
			seen[path] = bucket
		}
		for _, p := range r.OnlyInFirst {
			mark(p, "onlyInFirst")
		}
		for _, p := range r.OnlyInSecond {
			mark(p, "onlyInSecond")
		}
		for _, m := range r.Mismatched {
			mark(m.Path, "mismatched")
		}

		union := make(map[string]bool)
		for _, p := range a.Paths() {
			union[p] = true
		}
		for _, p := range b.Paths() {
			union[p] = true
		}
		assert.Equal(t, len(union), len(seen)+r.Matched, "round %d", round)
		assert.Equal(t, r.Differences() == 0, r.Identical)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeManifest(t, dir, "first", abc+"\t/etc/a\nERROR\t/etc/b\n")
	second := writeManifest(t, dir, "second", abc+"\t/etc/a\n"+def+"\t/etc/b\n"+nnn+"\t/etc/c\n")

	r, err := Files(first, second)
	require.NoError(t, err)

	assert.Equal(t, first, r.First.Source)
	assert.Equal(t, second, r.Second.Source)
	assert.Equal(t, []string{"/etc/c"}, r.OnlyInSecond)
	assert.Len(t, r.Mismatched, 1)
}

func TestFiles_Missing(t *testing.T) {
	dir := t.TempDir()
	present := writeManifest(t, dir, "present", abc+"\t/a\n")
	missing := filepath.Join(dir, "missing")

	_, err := Files(missing, present)
	require.ErrorIs(t, err, manifest.ErrManifestNotFound)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), missing)

	_, err = Files(present, missing)
	require.ErrorIs(t, err, manifest.ErrManifestNotFound)
	assert.Contains(t, err.Error(), "second")
}

func TestMask(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		wantA string
		wantB string
	}{
		{"equal", "abcd", "abcd", "....", "...."},
		{"one position", "abcd", "abXd", "..^.", "..^."},
		{"all positions", "ab", "cd", "^^", "^^"},
		{"second shorter", "abcd", "ab", "..^^", ".."},
		{"first shorter", "ab", "abcd", "..", "..^^"},
		{"sentinel against digest", "ERROR", "ERRab", "...^^", "...^^"},
		{"empty", "", "xy", "", "^^"},
	}

	render := func(mask []bool) string {
		var sb strings.Builder
		for _, m := range mask {
			if m {
				sb.WriteByte('^')
			} else {
				sb.WriteByte('.')
			}
		}
		return sb.String()
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma, mb := Mask(tt.a, tt.b)
			assert.Equal(t, tt.wantA, render(ma))
			assert.Equal(t, tt.wantB, render(mb))
		})
	}
}
