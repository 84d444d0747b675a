package output

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/sweepsum/pkg/sweepsum/compare"
)

// TemplateFormatter formats output using a custom Go text/template.
// The template receives the Result, so it can range over .Diff.Mismatched,
// .Manifest.Records or .Scan.Errors depending on .Kind.
type TemplateFormatter struct {
	templateStr string
	template    *template.Template
	mu          sync.Mutex
}

// NewTemplateFormatter creates a new template formatter with the given
// template string. An empty string selects the built-in template for each
// result kind.
func NewTemplateFormatter(templateStr string) *TemplateFormatter {
	return &TemplateFormatter{
		templateStr: templateStr,
	}
}

// SetTemplate sets or updates the template string.
func (f *TemplateFormatter) SetTemplate(templateStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templateStr = templateStr
	f.template = nil
}

// templateFuncs returns the custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		// bytes formats a size in bytes as a human-readable string.
		// Usage: {{bytes .Scan.BytesHashed}}
		"bytes": func(size int64) string {
			return humanize.IBytes(uint64(size))
		},

		// mask returns a caret line marking where two fields differ.
		// Usage: {{mask .First .Second}}
		"mask": markerLine,

		// short truncates a digest field for compact listings.
		// Usage: {{short .First 12}}
		"short": func(s string, n int) string {
			if n < 0 || len(s) <= n {
				return s
			}
			return s[:n]
		},

		"join": strings.Join,

		// differences is the number of reported paths of a diff.
		// Usage: {{differences .Diff}}
		"differences": func(r *compare.Report) int {
			return r.Differences()
		},
	}
}

// Format writes the formatted output to the buffer.
func (f *TemplateFormatter) Format(w *bytes.Buffer, r *Result) error {
	if err := r.validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Built-in templates depend on the result kind and are parsed per call.
	if f.templateStr == "" {
		tmpl, err := parseTemplate(defaultTemplates[r.Kind])
		if err != nil {
			return err
		}
		return tmpl.Execute(w, r)
	}

	if f.template == nil {
		tmpl, err := parseTemplate(f.templateStr)
		if err != nil {
			return err
		}
		f.template = tmpl
	}
	return f.template.Execute(w, r)
}

func parseTemplate(src string) (*template.Template, error) {
	return template.New("output").Funcs(templateFuncs()).Parse(src)
}

// defaultTemplates are used when no custom template is provided.
var defaultTemplates = map[Kind]string{
	KindDiff: `{{range .Diff.OnlyInFirst}}- {{.}}
{{end}}{{range .Diff.OnlyInSecond}}+ {{.}}
{{end}}{{range .Diff.Mismatched}}~ {{.Path}}
{{end}}`,
	KindManifest: `{{range .Manifest.Records}}{{.Field}}	{{.Path}}
{{end}}`,
	KindScan: `{{.Scan.RecordsWritten}} records ({{.Scan.ErrorRecords}} errors, {{bytes .Scan.BytesHashed}}) written to {{.Destination}}
`,
}

func init() {
	Register("template", func(opts Options) Formatter {
		return NewTemplateFormatter(opts.Template)
	})
}

// Ensure TemplateFormatter implements Formatter.
var _ Formatter = (*TemplateFormatter)(nil)
