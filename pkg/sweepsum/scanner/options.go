// Package scanner walks a directory tree, digests every regular file that is
// not under an excluded root, and streams one manifest record per file to a
// sink as soon as it is computed.
package scanner

import (
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/config"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/digest"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/manifest"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/types"
)

// Options configures the scanner behavior.
type Options struct {
	// Root is the starting directory for the scan.
	Root string

	// Exclude lists root paths whose subtrees are never entered. Matching is
	// lexical: a path is excluded if it equals a root or starts with the
	// root followed by the path separator.
	Exclude []string

	// Engine computes file digests. Nil selects the default algorithm.
	Engine *digest.Engine

	// Workers is the number of concurrent traversal workers. One keeps the
	// scan strictly sequential; more let fastwalk read directories and hash
	// files in parallel while sink writes stay serialized.
	Workers int

	// OnProgress is called periodically with scan progress updates.
	// It must be safe to call from multiple goroutines.
	OnProgress func(types.ScanProgress)

	// OnRecord is called after each record reaches the sink.
	// It must be safe to call from multiple goroutines.
	OnRecord func(manifest.Record)
}

// DefaultOptions returns options with sensible defaults for most systems.
func DefaultOptions() Options {
	return Options{
		Root:    config.DefaultPath,
		Exclude: config.DefaultExclusions,
		Workers: config.DefaultWorkers,
	}
}

// Validate fills in defaults for unset values. It fails only when the
// default digest engine cannot be built.
func (o *Options) Validate() error {
	if o.Root == "" {
		o.Root = config.DefaultPath
	}
	if o.Workers < 1 {
		o.Workers = config.DefaultWorkers
	}
	if o.Engine == nil {
		engine, err := digest.NewEngine(digest.DefaultAlgorithm)
		if err != nil {
			return err
		}
		o.Engine = engine
	}
	return nil
}
