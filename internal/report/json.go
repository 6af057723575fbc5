package report

import (
	"encoding/json"
	"io"

	"github.com/leaderofARS/anti-phishing-system/internal/engine"
	"github.com/leaderofARS/anti-phishing-system/internal/pipeline"
)

// JSONWriter outputs verdicts in the HTTP API response shape.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteVerdict writes v as a JSON object.
func (w *JSONWriter) WriteVerdict(v *engine.Verdict) (int, error) {
	return w.writeJSON(v)
}

// WriteHistory writes h as a JSON object.
func (w *JSONWriter) WriteHistory(h *History) (int, error) {
	return w.writeJSON(h)
}

// WriteValue writes any JSON-encodable value, such as model information.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	return w.writeJSON(v)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONVerdict wraps a verdict with the tool version and the per-collector
// results, which the API response leaves out.
type JSONVerdict struct {
	Version    string            `json:"version"`
	Verdict    *engine.Verdict   `json:"verdict"`
	DecidedBy  string            `json:"decided_by"`
	Collectors []pipeline.Result `json:"collectors"`
}

// FullJSONWriter outputs verdicts wrapped in JSONVerdict.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer for wrapped verdicts.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// WriteVerdict writes v wrapped with metadata.
func (w *FullJSONWriter) WriteVerdict(v *engine.Verdict) (int, error) {
	return w.writeJSON(&JSONVerdict{
		Version:    w.version,
		Verdict:    v,
		DecidedBy:  string(v.Source),
		Collectors: v.Collectors,
	})
}
