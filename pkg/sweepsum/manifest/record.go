// Package manifest implements the sweepsum manifest format: one record per
// line, a digest field and an absolute path separated by a tab.
//
//	<64 lowercase hex chars | ERROR>\t<path>
//
// There is no header and no trailing metadata. The package provides the line
// codec, a streaming Writer used by the scanner, and a loader that builds a
// path-indexed Manifest for comparison and display.
package manifest

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Sentinel is the digest field written for a file whose content could not
// be read. It can never collide with a hex digest.
const Sentinel = "ERROR"

// DigestLen is the width of a valid hex digest field.
const DigestLen = 64

// ErrBlankLine is returned by DecodeLine for empty or whitespace-only lines.
// Loaders skip such lines silently.
var ErrBlankLine = errors.New("blank line")

// ErrUnencodablePath is returned when a path cannot be represented in the
// line format, i.e. it is empty or contains a line break.
var ErrUnencodablePath = errors.New("path cannot be encoded in a manifest line")

// Record is a single manifest entry. Exactly one of Digest and Err is
// meaningful: when Err is true the file was unreadable and Digest is empty.
type Record struct {
	Path   string `json:"path" yaml:"path"`
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`
	Err    bool   `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK returns a record for a successfully digested file.
func OK(path, digest string) Record {
	return Record{Path: path, Digest: digest}
}

// Failed returns an error-sentinel record for path.
func Failed(path string) Record {
	return Record{Path: path, Err: true}
}

// Field returns the digest field as it appears on disk: the hex digest or
// the sentinel.
func (r Record) Field() string {
	if r.Err {
		return Sentinel
	}
	return r.Digest
}

// Validate checks that the record can be encoded and decoded losslessly.
func (r Record) Validate() error {
	if r.Path == "" || strings.ContainsAny(r.Path, "\r\n") {
		return fmt.Errorf("%w: %q", ErrUnencodablePath, r.Path)
	}
	if r.Err {
		if r.Digest != "" {
			return fmt.Errorf("record for %s carries both a digest and the error flag", r.Path)
		}
		return nil
	}
	if !IsDigest(r.Digest) {
		return fmt.Errorf("record for %s has invalid digest %q", r.Path, r.Digest)
	}
	return nil
}

// Encode renders r as a manifest line without the trailing newline.
func Encode(r Record) string {
	return r.Field() + "\t" + r.Path
}

// MalformedError describes a line that could not be decoded.
type MalformedError struct {
	// Line is the 1-based line number, or 0 when decoding a lone line.
	Line   int
	Reason string
	Text   string
}

func (e *MalformedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed manifest line %d: %s", e.Line, e.Reason)
	}
	return "malformed manifest line: " + e.Reason
}

// DecodeLine parses one manifest line.
//
// Carriage returns and line feeds anywhere in the line are dropped. The
// digest field is separated from the path by the first tab; when no tab is
// present the line is split on the first run of whitespace instead. That
// fallback is best-effort: a path that itself starts with whitespace loses
// it. Blank lines return ErrBlankLine; anything else that does not parse
// returns a *MalformedError.
func DecodeLine(line string) (Record, error) {
	line = stripLineBreaks(line)
	if strings.TrimSpace(line) == "" {
		return Record{}, ErrBlankLine
	}

	field, path, ok := splitFields(line)
	if !ok {
		return Record{}, &MalformedError{Reason: "missing path field", Text: line}
	}
	if path == "" {
		return Record{}, &MalformedError{Reason: "empty path", Text: line}
	}

	switch {
	case field == Sentinel:
		return Failed(path), nil
	case IsDigest(field):
		return OK(path, field), nil
	default:
		return Record{}, &MalformedError{
			Reason: fmt.Sprintf("digest field %q is neither %d lowercase hex chars nor %s", truncate(field, 80), DigestLen, Sentinel),
			Text:   line,
		}
	}
}

// IsDigest reports whether s is exactly DigestLen lowercase hex characters.
func IsDigest(s string) bool {
	if len(s) != DigestLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

func splitFields(line string) (field, path string, ok bool) {
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return strings.TrimSpace(line[:i]), line[i+1:], true
	}

	// Legacy layout: digest, whitespace run, path.
	line = strings.TrimLeftFunc(line, unicode.IsSpace)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, "", false
	}
	return line[:i], strings.TrimLeftFunc(line[i:], unicode.IsSpace), true
}

func stripLineBreaks(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	// Byte-wise so paths that are not valid UTF-8 survive untouched.
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\r' && s[i] != '\n' {
			b = append(b, s[i])
		}
	}
	return string(b)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
