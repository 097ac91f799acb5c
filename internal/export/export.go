// Package export renders the question collection as JSON, CSV or Markdown and parses
// CSV files back into questions.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/benvon/interview-tracker/internal/models"
)

// Format is an export file format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.New("format must be json, csv or markdown")

// ParseFormat maps a user-supplied name to a Format. Empty defaults to JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/json"
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// FileName returns the download name for an export taken at t.
func (f Format) FileName(t time.Time) string {
	return fmt.Sprintf("interview_questions_%s.%s", t.Format("2006-01-02"), f.Extension())
}

// Write renders questions in format f. categories orders the Markdown sections.
func Write(w io.Writer, f Format, questions []models.Question, categories []string) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, questions)
	case FormatCSV:
		return WriteCSV(w, questions)
	case FormatMarkdown:
		return WriteMarkdown(w, questions, categories)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

// WriteJSON writes the full-fidelity JSON array.
func WriteJSON(w io.Writer, questions []models.Question) error {
	if questions == nil {
		questions = []models.Question{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(questions); err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}
	return nil
}
