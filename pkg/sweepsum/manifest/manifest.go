package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/logging"
)

// logger is the package-level logger for manifest loading and writing.
var logger = logging.Get("manifest")

// ErrManifestNotFound is returned by LoadFile when the manifest file does
// not exist.
var ErrManifestNotFound = errors.New("manifest not found")

// maxLineSize bounds a single manifest line. PATH_MAX is 4096 on Linux, so
// this leaves ample room for unusual filesystems.
const maxLineSize = 1024 * 1024

// Manifest is a loaded manifest. Records keeps every decoded line in file
// order; lookups go through a path index where a later record for the same
// path supersedes an earlier one.
type Manifest struct {
	// Source is the file the manifest was loaded from, if any.
	Source string

	// Records holds every well-formed record in the order read, including
	// records later superseded by a duplicate path.
	Records []Record

	// Duplicates lists paths that appeared more than once, in the order the
	// repeat was seen.
	Duplicates []string

	// Malformed holds a diagnostic for every line that could not be decoded.
	Malformed []*MalformedError

	index map[string]int
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{index: make(map[string]int)}
}

// Add appends r and makes it the effective record for its path.
func (m *Manifest) Add(r Record) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if _, dup := m.index[r.Path]; dup {
		m.Duplicates = append(m.Duplicates, r.Path)
	}
	m.Records = append(m.Records, r)
	m.index[r.Path] = len(m.Records) - 1
}

// Get returns the effective record for path.
func (m *Manifest) Get(path string) (Record, bool) {
	i, ok := m.index[path]
	if !ok {
		return Record{}, false
	}
	return m.Records[i], true
}

// Len returns the number of distinct paths.
func (m *Manifest) Len() int {
	return len(m.index)
}

// Paths returns the distinct paths sorted bytewise.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.index))
	for p := range m.index {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Effective returns the effective record for every distinct path, sorted
// by path.
func (m *Manifest) Effective() []Record {
	paths := m.Paths()
	out := make([]Record, len(paths))
	for i, p := range paths {
		out[i] = m.Records[m.index[p]]
	}
	return out
}

// ErrorCount returns how many distinct paths carry the error sentinel.
func (m *Manifest) ErrorCount() int {
	n := 0
	for _, i := range m.index {
		if m.Records[i].Err {
			n++
		}
	}
	return n
}

// Load reads a manifest from r. Blank lines are skipped; malformed lines are
// recorded in Malformed and logged, never returned as an error. Only a read
// failure of r itself is an error.
func Load(r io.Reader) (*Manifest, error) {
	m := New()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		rec, err := DecodeLine(sc.Text())
		if err != nil {
			var malformed *MalformedError
			switch {
			case errors.Is(err, ErrBlankLine):
				continue
			case errors.As(err, &malformed):
				malformed.Line = lineNo
				m.Malformed = append(m.Malformed, malformed)
				continue
			default:
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
		m.Add(rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest at line %d: %w", lineNo+1, err)
	}

	return m, nil
}

// LoadFile opens and loads the manifest at path. A missing file yields an
// error wrapping ErrManifestNotFound.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	m.Source = path

	for _, d := range m.Malformed {
		logger.Warn("skipping malformed line", "file", path, "line", d.Line, "reason", d.Reason)
	}
	if n := len(m.Duplicates); n > 0 {
		logger.Warn("duplicate paths resolved by last entry", "file", path, "count", n)
	}
	logger.Debug("manifest loaded", "file", path, "records", len(m.Records), "paths", m.Len())

	return m, nil
}
