package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/types"
)

// yamlScan represents a scan summary in YAML output.
type yamlScan struct {
	Root           string          `yaml:"root"`
	Destination    string          `yaml:"destination"`
	Algorithm      string          `yaml:"algorithm"`
	RecordsWritten int64           `yaml:"records_written"`
	ErrorRecords   int64           `yaml:"error_records"`
	FilesHashed    int64           `yaml:"files_hashed"`
	BytesHashed    int64           `yaml:"bytes_hashed"`
	DirsScanned    int64           `yaml:"dirs_scanned"`
	DirsPruned     int64           `yaml:"dirs_pruned"`
	Elapsed        string          `yaml:"elapsed"`
	Interrupted    bool            `yaml:"interrupted"`
	Errors         []yamlScanError `yaml:"errors,omitempty"`
}

// yamlScanError represents one unreadable path in YAML output.
type yamlScanError struct {
	Path   string `yaml:"path"`
	Reason string `yaml:"reason,omitempty"`
	Error  string `yaml:"error"`
}

// YAMLFormatter formats output as YAML.
// It produces the same structure as JSONFormatter but in YAML format.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	if err := r.validate(); err != nil {
		return err
	}

	var payload any
	switch r.Kind {
	case KindDiff:
		payload = r.Diff
	case KindManifest:
		payload = r.Manifest
	case KindScan:
		payload = buildYAMLScan(r.Scan, r.Destination)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(payload); err != nil {
		return err
	}
	return encoder.Close()
}

func buildYAMLScan(r *types.ScanResult, dest string) yamlScan {
	out := yamlScan{
		Root:           r.Root,
		Destination:    dest,
		Algorithm:      r.Algorithm,
		RecordsWritten: r.RecordsWritten,
		ErrorRecords:   r.ErrorRecords,
		FilesHashed:    r.FilesHashed,
		BytesHashed:    r.BytesHashed,
		DirsScanned:    r.DirsScanned,
		DirsPruned:     r.DirsPruned,
		Elapsed:        r.Elapsed.String(),
		Interrupted:    r.Interrupted,
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, yamlScanError{Path: e.Path, Reason: e.Reason, Error: e.Error})
	}
	return out
}

func init() {
	Register("yaml", func(Options) Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
