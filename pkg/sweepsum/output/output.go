// Package output provides formatters for displaying sweepsum results: manifest
// comparisons, manifest listings and scan summaries, in several formats
// (pretty, plain, json, yaml, csv, paths, ...).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty", output.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.DiffResult(report)); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/compare"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/manifest"
	"github.com/jamesainslie/sweepsum/pkg/sweepsum/types"
)

// Kind identifies what a Result carries.
type Kind string

// Result kinds.
const (
	KindDiff     Kind = "diff"
	KindManifest Kind = "manifest"
	KindScan     Kind = "scan"
)

// ErrEmptyResult is returned when a Result carries no payload for its Kind.
var ErrEmptyResult = errors.New("result has no content")

// ManifestView is a loaded manifest prepared for display: the effective
// record per path, sorted, plus the diagnostics gathered while loading.
type ManifestView struct {
	// Source is the file the manifest was loaded from.
	Source string `json:"source" yaml:"source"`

	// Records are the effective records, sorted by path and filtered when
	// ErrorsOnly is set.
	Records []manifest.Record `json:"records" yaml:"records"`

	// Paths is the number of distinct paths in the manifest.
	Paths int `json:"paths" yaml:"paths"`

	// Errors is the number of paths carrying the error sentinel.
	Errors int `json:"errors" yaml:"errors"`

	// Duplicates lists paths that appeared more than once.
	Duplicates []string `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`

	// Malformed holds one diagnostic per rejected line.
	Malformed []string `json:"malformed,omitempty" yaml:"malformed,omitempty"`

	// ErrorsOnly records that Records was filtered to sentinel records.
	ErrorsOnly bool `json:"errors_only,omitempty" yaml:"errors_only,omitempty"`
}

// NewManifestView builds a view of m. With errorsOnly set, only records
// carrying the error sentinel are kept.
func NewManifestView(m *manifest.Manifest, errorsOnly bool) *ManifestView {
	v := &ManifestView{
		Source:     m.Source,
		Paths:      m.Len(),
		Errors:     m.ErrorCount(),
		Duplicates: m.Duplicates,
		ErrorsOnly: errorsOnly,
	}
	for _, rec := range m.Effective() {
		if errorsOnly && !rec.Err {
			continue
		}
		v.Records = append(v.Records, rec)
	}
	if v.Records == nil {
		v.Records = []manifest.Record{}
	}
	for _, d := range m.Malformed {
		v.Malformed = append(v.Malformed, d.Error())
	}
	return v
}

// Result is the input of every formatter. Exactly one payload is set,
// selected by Kind.
type Result struct {
	Kind     Kind              `json:"kind" yaml:"kind"`
	Diff     *compare.Report   `json:"diff,omitempty" yaml:"diff,omitempty"`
	Manifest *ManifestView     `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Scan     *types.ScanResult `json:"scan,omitempty" yaml:"scan,omitempty"`

	// Destination is the manifest file a scan wrote to.
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
}

// DiffResult wraps a comparison report.
func DiffResult(r *compare.Report) *Result {
	return &Result{Kind: KindDiff, Diff: r}
}

// ManifestResult wraps a manifest view.
func ManifestResult(v *ManifestView) *Result {
	return &Result{Kind: KindManifest, Manifest: v}
}

// ScanSummary wraps a finished scan and the file it wrote.
func ScanSummary(r *types.ScanResult, destination string) *Result {
	return &Result{Kind: KindScan, Scan: r, Destination: destination}
}

// validate checks that the payload named by Kind is present.
func (r *Result) validate() error {
	if r == nil {
		return ErrEmptyResult
	}
	switch r.Kind {
	case KindDiff:
		if r.Diff == nil {
			return fmt.Errorf("%w: %s", ErrEmptyResult, r.Kind)
		}
	case KindManifest:
		if r.Manifest == nil {
			return fmt.Errorf("%w: %s", ErrEmptyResult, r.Kind)
		}
	case KindScan:
		if r.Scan == nil {
			return fmt.Errorf("%w: %s", ErrEmptyResult, r.Kind)
		}
	default:
		return fmt.Errorf("unknown result kind %q", r.Kind)
	}
	return nil
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// Options are passed to every formatter factory.
type Options struct {
	// Palette sets the colors of the pretty formatter. The zero value
	// selects DefaultPalette.
	Palette Palette

	// Template is the text/template source for the template formatter.
	// Empty selects a built-in template per result kind.
	Template string
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func(Options) Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string, opts Options) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(opts), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string, opts Options) (Formatter, error) {
	return DefaultRegistry.Get(name, opts)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
