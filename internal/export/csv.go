package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/store"
)

// ErrInvalidCSV is returned when a CSV import cannot be read. It wraps
// store.ErrInvalidFormat.
var ErrInvalidCSV = fmt.Errorf("%w: unreadable CSV file", store.ErrInvalidFormat)

// CSVHeader is the column order written by WriteCSV and expected by ParseCSV.
var CSVHeader = []string{
	"id", "text", "answer", "category", "companyTag",
	"createdAt", "updatedAt", "isAiGenerated", "sources",
}

// WriteCSV writes one row per question. Source URIs are joined with newlines.
func WriteCSV(w io.Writer, questions []models.Question) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, q := range questions {
		uris := make([]string, 0, len(q.Sources))
		for _, s := range q.Sources {
			if s.URI != "" {
				uris = append(uris, s.URI)
			}
		}
		row := []string{
			q.ID,
			q.Text,
			q.Answer,
			q.Category,
			q.CompanyTag,
			strconv.FormatInt(q.CreatedAt, 10),
			strconv.FormatInt(q.UpdatedAt, 10),
			strconv.FormatBool(q.IsAIGenerated),
			strings.Join(uris, "\n"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseCSV reads questions from a CSV file with a header row. Columns are matched by
// header name; id and text are required. Rows are returned as-is and validated by the
// merge.
func ParseCSV(r io.Reader) ([]models.Question, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"id", "text"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing %q column", ErrInvalidCSV, required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	questions := []models.Question{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
		}

		q := models.Question{
			ID:         field(row, "id"),
			Text:       field(row, "text"),
			Answer:     field(row, "answer"),
			Category:   field(row, "category"),
			CompanyTag: field(row, "companyTag"),
			Sources:    []models.Source{},
		}
		q.CreatedAt, _ = strconv.ParseInt(field(row, "createdAt"), 10, 64)
		q.UpdatedAt, _ = strconv.ParseInt(field(row, "updatedAt"), 10, 64)
		q.IsAIGenerated, _ = strconv.ParseBool(field(row, "isAiGenerated"))
		for _, uri := range strings.Split(field(row, "sources"), "\n") {
			if uri = strings.TrimSpace(uri); uri != "" {
				q.Sources = append(q.Sources, models.Source{URI: uri})
			}
		}
		questions = append(questions, q)
	}
	return questions, nil
}
