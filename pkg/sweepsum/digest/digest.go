// Package digest computes content digests of regular files for sweepsum
// manifests.
//
// An Engine is bound to one algorithm for its lifetime. Read failures are
// never fatal: File returns a *Error that classifies the failure so the
// scanner can record it and keep going.
package digest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"sync"
)

// Reason classifies why a file could not be digested.
type Reason string

// Failure classifications.
const (
	ReasonPermission Reason = "permission"
	ReasonNotFound   Reason = "not-found"
	ReasonNotRegular Reason = "not-regular"
	ReasonIO         Reason = "io"
)

// ErrNotRegular is returned when the path does not name a regular file at
// the time it is opened, for example when a file was swapped for a symlink
// after discovery.
var ErrNotRegular = errors.New("not a regular file")

// Error is returned by Engine.File for every per-file failure.
type Error struct {
	Path   string
	Reason Reason
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("digest %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify maps an error from opening or reading a file to a Reason.
func Classify(err error) Reason {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermission
	case errors.Is(err, fs.ErrNotExist):
		return ReasonNotFound
	case errors.Is(err, ErrNotRegular), isSymlinkRefusal(err):
		return ReasonNotRegular
	default:
		return ReasonIO
	}
}

// Engine digests files with a single configured algorithm.
// It is safe for concurrent use; each call gets its own hash state.
type Engine struct {
	algorithm string
	factory   Factory
	bufPool   sync.Pool
}

// bufSize is the read buffer used when streaming file content.
const bufSize = 128 * 1024

// NewEngine returns an Engine for the named algorithm.
// An empty name selects DefaultAlgorithm.
func NewEngine(algorithm string) (*Engine, error) {
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	factory, err := Lookup(algorithm)
	if err != nil {
		return nil, err
	}
	e := &Engine{algorithm: algorithm, factory: factory}
	e.bufPool.New = func() any {
		buf := make([]byte, bufSize)
		return &buf
	}
	return e, nil
}

// Algorithm returns the name of the engine's algorithm.
func (e *Engine) Algorithm() string {
	return e.algorithm
}

// File returns the lowercase hex digest of the file at path and the number
// of bytes read. Symlinks are never followed. Any failure is a *Error.
func (e *Engine) File(path string) (string, int64, error) {
	f, err := openNoFollow(path)
	if err != nil {
		return "", 0, &Error{Path: path, Reason: Classify(err), Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", 0, &Error{Path: path, Reason: Classify(err), Err: err}
	}
	if !info.Mode().IsRegular() {
		return "", 0, &Error{Path: path, Reason: ReasonNotRegular, Err: ErrNotRegular}
	}

	sum, n, err := e.sum(f)
	if err != nil {
		return "", n, &Error{Path: path, Reason: Classify(err), Err: err}
	}
	return sum, n, nil
}

// Reader digests an arbitrary stream. It is used for content that does not
// live on disk and by tests.
func (e *Engine) Reader(r io.Reader) (string, error) {
	sum, _, err := e.sum(r)
	return sum, err
}

func (e *Engine) sum(r io.Reader) (string, int64, error) {
	h := e.factory()
	bufp := e.bufPool.Get().(*[]byte)
	defer e.bufPool.Put(bufp)

	n, err := io.CopyBuffer(onlyWriter{h}, r, *bufp)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// onlyWriter hides ReaderFrom so io.CopyBuffer actually uses the pooled buffer.
type onlyWriter struct {
	h hash.Hash
}

func (w onlyWriter) Write(p []byte) (int, error) {
	return w.h.Write(p)
}
