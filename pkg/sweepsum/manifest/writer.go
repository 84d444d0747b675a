package manifest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
)

// ErrInvalidDestination is returned when the output path is empty or names
// a directory.
var ErrInvalidDestination = errors.New("invalid manifest destination")

// ErrDestinationExists is returned when the output file exists and the
// caller did not allow overwriting it.
var ErrDestinationExists = errors.New("manifest destination already exists")

// CreateOptions controls how Create opens the destination.
type CreateOptions struct {
	// Overwrite allows truncating an existing file. The engine never asks;
	// callers decide (flag, prompt) and pass the answer here.
	Overwrite bool

	// SyncEvery fsyncs the file after this many records. Zero disables
	// periodic syncing; records are still written through immediately.
	SyncEvery int
}

// Writer streams records to a sink, one Write call per line, so an
// interrupted scan leaves every completed record readable. It is safe for
// concurrent use.
type Writer struct {
	mu        sync.Mutex
	w         io.Writer
	file      *os.File
	path      string
	syncEvery int
	unsynced  int
	count     int64
	errCount  int64
	closed    bool
}

// NewWriter wraps an arbitrary sink. Close does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Create opens path for a new manifest. All failures here are fatal setup
// errors that callers must surface before any traversal starts.
func Create(path string, opts CreateOptions) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidDestination)
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidDestination, path)
	case err == nil && !opts.Overwrite:
		return nil, fmt.Errorf("%w: %s", ErrDestinationExists, path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("checking destination %s: %w", path, err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.Overwrite {
		// Closes the window between the Stat above and the open.
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrDestinationExists, path)
		}
		return nil, fmt.Errorf("creating manifest %s: %w", path, err)
	}

	logger.Debug("manifest created", "file", path, "overwrite", opts.Overwrite)

	return &Writer{
		w:         f,
		file:      f,
		path:      path,
		syncEvery: opts.SyncEvery,
	}, nil
}

// Path returns the destination path, or "" for wrapped sinks.
func (w *Writer) Path() string {
	return w.path
}

// Write validates, encodes and appends r as one line.
func (w *Writer) Write(r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	line := Encode(r) + "\n"

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New("manifest writer is closed")
	}
	if _, err := io.WriteString(w.w, line); err != nil {
		return fmt.Errorf("writing manifest record: %w", err)
	}
	w.count++
	if r.Err {
		w.errCount++
	}

	if w.file != nil && w.syncEvery > 0 {
		w.unsynced++
		if w.unsynced >= w.syncEvery {
			w.unsynced = 0
			if err := w.file.Sync(); err != nil {
				return fmt.Errorf("syncing manifest: %w", err)
			}
		}
	}
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// ErrorCount returns the number of sentinel records written so far.
func (w *Writer) ErrorCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errCount
}

// Close syncs and closes a file created by Create. It is a no-op for
// wrapped sinks and safe to call more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.file == nil {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("syncing manifest: %w", err)
	}
	return w.file.Close()
}
