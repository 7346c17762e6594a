package format

import (
	"encoding/json"
	"io"

	"github.com/lawbridge/lawbridge/pkg/api"
)

// SummaryWriter writes conversation listings page by page.
type SummaryWriter interface {
	WriteSummaries([]api.Summary) error
	Close() error
}

// JSONStreamWriter incrementally writes summaries as a JSON array.
type JSONStreamWriter struct {
	w        io.Writer
	indent   bool
	wroteAny bool
}

func NewJSONStreamWriter(w io.Writer, indent bool) *JSONStreamWriter {
	return &JSONStreamWriter{w: w, indent: indent}
}

func (jw *JSONStreamWriter) WriteSummaries(items []api.Summary) error {
	for _, s := range items {
		var (
			b   []byte
			err error
		)
		if jw.indent {
			b, err = json.MarshalIndent(s, "  ", "  ")
		} else {
			b, err = json.Marshal(s)
		}
		if err != nil {
			return err
		}
		sep := ","
		switch {
		case !jw.wroteAny && jw.indent:
			sep = "[\n  "
		case !jw.wroteAny:
			sep = "["
		case jw.indent:
			sep = ",\n  "
		}
		if _, err := io.WriteString(jw.w, sep); err != nil {
			return err
		}
		if _, err := jw.w.Write(b); err != nil {
			return err
		}
		jw.wroteAny = true
	}
	return nil
}

// Close finishes the JSON array.
func (jw *JSONStreamWriter) Close() error {
	switch {
	case !jw.wroteAny:
		_, err := io.WriteString(jw.w, "[]\n")
		return err
	case jw.indent:
		_, err := io.WriteString(jw.w, "\n]\n")
		return err
	default:
		_, err := io.WriteString(jw.w, "]\n")
		return err
	}
}

// NDJSONWriter writes one summary per line.
type NDJSONWriter struct{ enc *json.Encoder }

func NewNDJSONWriter(w io.Writer) *NDJSONWriter { return &NDJSONWriter{enc: json.NewEncoder(w)} }

func (nw *NDJSONWriter) WriteSummaries(items []api.Summary) error {
	for _, s := range items {
		if err := nw.enc.Encode(s); err != nil {
			return err
		}
	}
	return nil
}

func (nw *NDJSONWriter) Close() error { return nil }
