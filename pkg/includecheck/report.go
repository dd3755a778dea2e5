package includecheck

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// DocumentError records a document that could not be read or checked.
type DocumentError struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// Report aggregates a scan of one corpus.
type Report struct {
	Root    string `json:"root" yaml:"root"`
	Checked int    `json:"checked" yaml:"checked"`
	Valid   int    `json:"valid" yaml:"valid"`
	Invalid int    `json:"invalid" yaml:"invalid"`
	// Failures holds the invalid results in discovery order.
	Failures       []Result        `json:"failures" yaml:"failures"`
	ValidDocuments []string        `json:"valid_documents" yaml:"valid_documents"`
	Errors         []DocumentError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// OK reports whether every checked document is valid and nothing failed to read.
func (r *Report) OK() bool {
	return r.Invalid == 0 && len(r.Errors) == 0
}

func (r *Report) add(res Result) {
	r.Checked++
	if res.Valid {
		r.Valid++
		r.ValidDocuments = append(r.ValidDocuments, res.Path)
		return
	}
	r.Invalid++
	r.Failures = append(r.Failures, res)
}

// Write renders the report as text, json or yaml.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case "", "text":
		return r.WriteText(w)
	case "json":
		return r.WriteJSON(w)
	case "yaml":
		return r.WriteYAML(w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteText renders the human readable report.
func (r *Report) WriteText(w io.Writer) error {
	p := &printer{w: w}
	p.printf("Include order check: %s\n", r.Root)
	p.printf("Checked: %d  Valid: %d  Invalid: %d\n", r.Checked, r.Valid, r.Invalid)

	if len(r.Failures) > 0 {
		p.printf("\nInvalid documents:\n")
		for _, res := range r.Failures {
			p.printf("  - %s\n", res.Path)
			for _, issue := range res.Issues() {
				p.printf("      %s\n", issue)
			}
		}
	}
	if len(r.Errors) > 0 {
		p.printf("\nUnreadable documents:\n")
		for _, e := range r.Errors {
			p.printf("  - %s: %s\n", e.Path, e.Error)
		}
	}
	if len(r.ValidDocuments) > 0 {
		p.printf("\nValid documents:\n")
		for _, doc := range r.ValidDocuments {
			p.printf("  - %s\n", doc)
		}
	}
	return p.err
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML renders the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
