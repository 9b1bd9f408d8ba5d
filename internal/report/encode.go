package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ternarybob/fundscope/internal/market"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Write
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatPDF      = "pdf"
)

// Formats lists every supported output format
func Formats() []string {
	return []string{FormatText, FormatMarkdown, FormatJSON, FormatYAML, FormatPDF}
}

// WriteJSON writes results as indented JSON. A single result is written as an object.
func WriteJSON(w io.Writer, results ...*market.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

// WriteYAML writes results as YAML documents
func WriteYAML(w io.Writer, results ...*market.AnalysisResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
	}
	return enc.Close()
}

// Write renders results in the named format
func Write(w io.Writer, format string, results ...*market.AnalysisResult) error {
	switch format {
	case FormatText, "":
		for _, r := range results {
			if err := WriteText(w, r); err != nil {
				return err
			}
		}
		return nil
	case FormatMarkdown, "md":
		for i, r := range results {
			if i > 0 {
				if _, err := io.WriteString(w, "\n---\n\n"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, Markdown(r)); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		return WriteJSON(w, results...)
	case FormatYAML, "yml":
		return WriteYAML(w, results...)
	case FormatPDF:
		data, err := PDF(results...)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
