package output

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRows(t *testing.T) {
	header, data := rows(sampleDiff(t))
	assert.Equal(t, []string{"STATUS", "PATH", "FIRST", "SECOND"}, header)
	assert.Equal(t, [][]string{
		{StatusOnlyInFirst, "/old", "", ""},
		{StatusOnlyInSecond, "/etc/c", "", ""},
		{StatusMismatch, "/etc/b", "ERROR", digestB},
	}, data)

	header, data = rows(sampleManifest(t, true))
	assert.Equal(t, []string{"DIGEST", "PATH"}, header)
	assert.Equal(t, [][]string{{"ERROR", "/srv/locked"}}, data)

	header, data = rows(sampleScan())
	assert.Equal(t, []string{"PATH", "REASON", "ERROR"}, header)
	require.Len(t, data, 1)
	assert.Equal(t, "permission", data[0][1])
}

func TestTSVFormatter(t *testing.T) {
	out := format(t, "tsv", sampleManifest(t, false))

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "DIGEST\tPATH", lines[0])
	assert.Equal(t, digestC+"\t/srv/a", lines[1])
	assert.Equal(t, "ERROR\t/srv/locked", lines[3])
}

func TestTSVFormatter_HeaderOnlyWhenIdentical(t *testing.T) {
	assert.Equal(t, "STATUS\tPATH\tFIRST\tSECOND\n", format(t, "tsv", identicalDiff(t)))
}

func TestCSVFormatter_Quoting(t *testing.T) {
	m := loadManifest(t, "x", digestA+"\t/srv/a,b \"quoted\"\n")
	out := format(t, "csv", ManifestResult(NewManifestView(m, false)))

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"DIGEST", "PATH"}, records[0])
	assert.Equal(t, []string{digestA, `/srv/a,b "quoted"`}, records[1])
}

func TestCSVFormatter_Diff(t *testing.T) {
	records, err := csv.NewReader(strings.NewReader(format(t, "csv", sampleDiff(t)))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{StatusMismatch, "/etc/b", "ERROR", digestB}, records[3])
}

func TestMarkdownFormatter(t *testing.T) {
	out := format(t, "markdown", sampleScan())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "| PATH | REASON | ERROR |", lines[0])
	assert.Equal(t, "| --- | --- | --- |", lines[1])
	assert.Equal(t, "| /srv/locked | permission | open /srv/locked: permission denied |", lines[2])
}

func TestMarkdownFormatter_EscapesPipes(t *testing.T) {
	m := loadManifest(t, "x", digestA+"\t/srv/a|b\n")
	out := format(t, "markdown", ManifestResult(NewManifestView(m, false)))

	assert.Contains(t, out, `/srv/a\|b`)
}
