package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/digest"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/exclude"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/logging"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/manifest"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/types"
)

var logger = logging.Get("scanner")

// Sink receives one record per scanned file. *manifest.Writer implements it.
type Sink interface {
	Write(manifest.Record) error
}

var (
	// ErrNoSink is returned when Scan is called without a destination.
	ErrNoSink = errors.New("scanner: no output sink")

	// ErrRootNotDirectory is returned when the scan root is not a directory.
	ErrRootNotDirectory = errors.New("scan root is not a directory")

	// ErrSink wraps a failure to append a record to the sink. It aborts the
	// scan; every record written before it stays valid.
	ErrSink = errors.New("writing to manifest sink")
)

// ReasonUnencodable marks files whose path cannot be written as a manifest
// line because it contains a line break.
const ReasonUnencodable = "unencodable"

// progressInterval throttles OnProgress callbacks.
const progressInterval = 50 * time.Millisecond

// Scanner walks a tree and streams digest records to a sink.
type Scanner struct {
	opts    Options
	matcher *exclude.Matcher

	// Atomic counters for thread-safe progress reporting.
	dirsScanned    atomic.Int64
	dirsPruned     atomic.Int64
	recordsWritten atomic.Int64
	errorRecords   atomic.Int64
	filesHashed    atomic.Int64
	bytesHashed    atomic.Int64

	// currentPath is the path currently being processed (for progress).
	currentPath atomic.Value

	// errors collects scan errors without stopping the scan.
	errors   []types.ScanError
	errorsMu sync.Mutex

	// sinkMu serializes writes so lines never interleave, whatever the sink.
	// It also guards sinkErr, the first write failure, after which every
	// callback stops the walk.
	sinkMu  sync.Mutex
	sinkErr error

	// lastProgress tracks when progress was last reported, in milliseconds.
	lastProgress atomic.Int64

	initErr error
}

// New creates a new Scanner with the given options.
// Options are validated and defaults are applied.
func New(opts Options) *Scanner {
	err := opts.Validate()

	s := &Scanner{
		opts:    opts,
		matcher: exclude.New(opts.Exclude...),
		errors:  make([]types.ScanError, 0),
		initErr: err,
	}
	s.currentPath.Store("")
	return s
}

// Scan walks the root and writes a record to sink for every regular file not
// under an excluded root. Per-file and per-directory failures are recorded
// and never stop the walk. Scan returns an error only when the root is
// unusable or the sink rejects a write. Cancelling ctx stops the walk early
// and marks the result Interrupted.
func (s *Scanner) Scan(ctx context.Context, sink Sink) (*types.ScanResult, error) {
	if s.initErr != nil {
		return nil, s.initErr
	}
	if sink == nil {
		return nil, ErrNoSink
	}

	startTime := time.Now()

	root, err := s.validateRoot()
	if err != nil {
		return nil, err
	}

	log := logger.With("root", root, "algorithm", s.opts.Engine.Algorithm())
	log.Info("scan started", "exclude", s.matcher.Roots(), "workers", s.opts.Workers)

	s.currentPath.Store(root)
	s.reportProgressForce()

	interrupted := false
	if s.matcher.IsExcluded(root) {
		// An excluded root contributes nothing; never enumerate it.
		s.dirsPruned.Add(1)
		log.Info("scan root is excluded")
	} else {
		interrupted, err = s.walk(ctx, root, sink)
		if err != nil {
			log.Error("scan aborted", "error", err, "records", s.recordsWritten.Load())
			return nil, err
		}
	}

	s.currentPath.Store("")
	s.reportProgressForce()

	result := &types.ScanResult{
		Root:           root,
		Algorithm:      s.opts.Engine.Algorithm(),
		RecordsWritten: s.recordsWritten.Load(),
		ErrorRecords:   s.errorRecords.Load(),
		FilesHashed:    s.filesHashed.Load(),
		BytesHashed:    s.bytesHashed.Load(),
		DirsScanned:    s.dirsScanned.Load(),
		DirsPruned:     s.dirsPruned.Load(),
		Elapsed:        time.Since(startTime),
		Interrupted:    interrupted,
		Errors:         s.errors,
	}

	log.Info("scan finished",
		"records", result.RecordsWritten,
		"errors", result.ErrorRecords,
		"bytes", result.BytesHashed,
		"pruned", result.DirsPruned,
		"elapsed", result.Elapsed,
		"interrupted", interrupted)

	return result, nil
}

// walk runs fastwalk from root. It reports whether ctx stopped the walk.
func (s *Scanner) walk(ctx context.Context, root string, sink Sink) (bool, error) {
	conf := fastwalk.Config{
		Follow:     false, // Never follow symlinks.
		NumWorkers: s.opts.Workers,
	}

	err := fastwalk.Walk(&conf, root, s.walkCallback(ctx, sink))
	// A sink failure wins over whatever fastwalk reported for it.
	if sinkErr := s.sinkFailure(); sinkErr != nil {
		return false, sinkErr
	}
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return true, nil
	case errors.Is(err, ErrSink):
		return false, err
	default:
		return false, fmt.Errorf("walking %s: %w", root, err)
	}
}

// validateRoot resolves the root path to absolute and verifies it is a
// directory.
func (s *Scanner) validateRoot() (string, error) {
	root, err := filepath.Abs(s.opts.Root)
	if err != nil {
		return "", err
	}

	rootInfo, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !rootInfo.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootNotDirectory, root)
	}

	return root, nil
}

// walkCallback returns the callback function for fastwalk.Walk.
func (s *Scanner) walkCallback(ctx context.Context, sink Sink) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if sinkErr := s.sinkFailure(); sinkErr != nil {
			return sinkErr
		}

		// fastwalk hands a callback's own error back as a read error of the
		// enclosing directory. Sink failures must stop the walk, not be
		// recorded as unreadable directories.
		if errors.Is(err, ErrSink) {
			return err
		}

		// Directory read failures are recorded; the walk goes on.
		if err != nil {
			s.addError(path, string(digest.Classify(err)), err)
			logger.Warn("cannot read directory", "path", path, "error", err)
			return nil
		}

		if s.matcher.IsExcluded(path) {
			if d.IsDir() {
				s.dirsPruned.Add(1)
				logger.Debug("pruned excluded directory", "path", path)
				return fastwalk.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			s.dirsScanned.Add(1)
			s.currentPath.Store(path)
			s.reportProgress()
			return nil
		}

		// Symlinks, sockets, devices and pipes are never read.
		if !d.Type().IsRegular() {
			return nil
		}

		return s.processFile(path, sink)
	}
}

// processFile digests one regular file and streams its record.
func (s *Scanner) processFile(path string, sink Sink) error {
	if err := manifest.Failed(path).Validate(); err != nil {
		s.addError(path, ReasonUnencodable, err)
		logger.Warn("skipping path that cannot be encoded", "path", path)
		return nil
	}

	s.currentPath.Store(path)

	var rec manifest.Record
	sum, n, err := s.opts.Engine.File(path)
	if err != nil {
		reason := string(digest.Classify(err))
		var derr *digest.Error
		if errors.As(err, &derr) {
			reason = string(derr.Reason)
		}
		s.addError(path, reason, err)
		logger.Warn("cannot digest file", "path", path, "reason", reason, "error", err)
		rec = manifest.Failed(path)
	} else {
		s.filesHashed.Add(1)
		s.bytesHashed.Add(n)
		rec = manifest.OK(path, sum)
	}

	s.sinkMu.Lock()
	if s.sinkErr != nil {
		err = s.sinkErr
		s.sinkMu.Unlock()
		return err
	}
	if err = sink.Write(rec); err != nil {
		s.sinkErr = fmt.Errorf("%w: %s: %w", ErrSink, path, err)
		err = s.sinkErr
	}
	s.sinkMu.Unlock()
	if err != nil {
		return err
	}

	s.recordsWritten.Add(1)
	if rec.Err {
		s.errorRecords.Add(1)
	}
	if s.opts.OnRecord != nil {
		s.opts.OnRecord(rec)
	}
	s.reportProgress()
	return nil
}

// sinkFailure returns the first sink write error, if any.
func (s *Scanner) sinkFailure() error {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	return s.sinkErr
}

// addError adds an error to the error list thread-safely.
func (s *Scanner) addError(path, reason string, err error) {
	s.errorsMu.Lock()
	s.errors = append(s.errors, types.ScanError{
		Path:   path,
		Reason: reason,
		Error:  err.Error(),
	})
	s.errorsMu.Unlock()
}

// reportProgress calls the progress callback if configured.
// Throttles calls to avoid excessive overhead.
func (s *Scanner) reportProgress() {
	if s.opts.OnProgress == nil {
		return
	}

	now := time.Now().UnixMilli()
	last := s.lastProgress.Load()
	if now-last < progressInterval.Milliseconds() {
		return
	}
	if !s.lastProgress.CompareAndSwap(last, now) {
		return // Another goroutine updated it.
	}

	s.sendProgress()
}

// reportProgressForce calls the progress callback immediately, bypassing
// the throttle. Used at scan start and end.
func (s *Scanner) reportProgressForce() {
	if s.opts.OnProgress == nil {
		return
	}
	s.lastProgress.Store(time.Now().UnixMilli())
	s.sendProgress()
}

// sendProgress sends the current progress to the callback.
func (s *Scanner) sendProgress() {
	currentPath, _ := s.currentPath.Load().(string)

	s.opts.OnProgress(types.ScanProgress{
		DirsScanned:    s.dirsScanned.Load(),
		RecordsWritten: s.recordsWritten.Load(),
		ErrorRecords:   s.errorRecords.Load(),
		BytesHashed:    s.bytesHashed.Load(),
		CurrentPath:    currentPath,
	})
}
