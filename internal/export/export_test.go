package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/store"
)

func sampleQuestions() []models.Question {
	return []models.Question{
		{
			ID: "2", Text: "What is attention?", Answer: "Weighted sum.\nSecond line.", Category: "NLP",
			CompanyTag: "Acme", CreatedAt: 200, UpdatedAt: 250, IsAIGenerated: true,
			Sources: []models.Source{{URI: "https://a.example", Title: "A"}, {URI: "https://b.example"}},
		},
		{
			ID: "1", Text: "Reverse a list, in place", Answer: "Two pointers, \"swap\"", Category: "Algorithm",
			CreatedAt: 100, UpdatedAt: 100, Sources: []models.Source{},
		},
		{
			ID: "3", Text: "Draw a B-tree", Category: "Quantum", Drawing: "data:image/png;base64,AAAA",
			CreatedAt: 50, UpdatedAt: 50, Sources: []models.Source{},
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatJSON},
		{in: "JSON", want: FormatJSON},
		{in: "csv", want: FormatCSV},
		{in: "md", want: FormatMarkdown},
		{in: "markdown", want: FormatMarkdown},
		{in: "xlsx", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("error = %v, want ErrUnknownFormat", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestFormat_FileName(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	if got := FormatMarkdown.FileName(at); got != "interview_questions_2024-05-01.md" {
		t.Errorf("FileName = %q", got)
	}
	if got := FormatCSV.ContentType(); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("ContentType = %q", got)
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleQuestions()); err != nil {
		t.Fatal(err)
	}
	var got []models.Question
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, sampleQuestions()) {
		t.Errorf("JSON round trip mismatch: %+v", got)
	}
}

func TestWriteJSON_EmptyIsArray(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("WriteJSON(nil) = %q, want []", buf.String())
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleQuestions()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), strings.Join(CSVHeader, ",")+"\n") {
		t.Errorf("unexpected header: %q", strings.SplitN(buf.String(), "\n", 2)[0])
	}

	got, err := ParseCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("parsed %d rows, want 3", len(got))
	}

	first := got[0]
	if first.Answer != "Weighted sum.\nSecond line." || !first.IsAIGenerated || first.CompanyTag != "Acme" {
		t.Errorf("first row = %+v", first)
	}
	wantSources := []models.Source{{URI: "https://a.example"}, {URI: "https://b.example"}}
	if !reflect.DeepEqual(first.Sources, wantSources) {
		t.Errorf("sources = %+v, want %+v", first.Sources, wantSources)
	}
	if got[1].Answer != `Two pointers, "swap"` || got[1].CreatedAt != 100 {
		t.Errorf("second row = %+v", got[1])
	}
}

func TestParseCSV_ColumnsByName(t *testing.T) {
	t.Parallel()

	in := "\ufefftext,id,category\nWhat is a heap?,h1,Data Structures\n"
	got, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "h1" || got[0].Text != "What is a heap?" || got[0].Category != "Data Structures" {
		t.Errorf("ParseCSV = %+v", got)
	}
}

func TestParseCSV_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"empty":            "",
		"missing id":       "text,answer\nq,a\n",
		"unbalanced quote": "id,text\n\"a,b\n",
	}
	for name, in := range tests {
		in := in
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseCSV(strings.NewReader(in))
			if !errors.Is(err, ErrInvalidCSV) || !errors.Is(err, store.ErrInvalidFormat) {
				t.Errorf("ParseCSV error = %v, want ErrInvalidCSV wrapping ErrInvalidFormat", err)
			}
		})
	}
}

func TestWriteMarkdown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	categories := []string{"Algorithm", "NLP", "Other"}
	if err := WriteMarkdown(&buf, sampleQuestions(), categories); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	algo := strings.Index(out, "## Algorithm")
	nlp := strings.Index(out, "## NLP")
	quantum := strings.Index(out, "## Quantum")
	if algo < 0 || nlp < 0 || quantum < 0 || !(algo < nlp && nlp < quantum) {
		t.Errorf("sections out of order:\n%s", out)
	}
	if strings.Contains(out, "## Other") {
		t.Error("empty category section should be omitted")
	}

	for _, want := range []string{
		"### What is attention?",
		"*Company: Acme*",
		"**Answer** (AI generated):",
		"> Weighted sum.\n> Second line.",
		"- [A](https://a.example)",
		"- [https://b.example](https://b.example)",
		"![Answer drawing](data:image/png;base64,AAAA)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestWrite_Dispatch(t *testing.T) {
	t.Parallel()

	for _, f := range []Format{FormatJSON, FormatCSV, FormatMarkdown} {
		var buf bytes.Buffer
		if err := Write(&buf, f, sampleQuestions(), models.DefaultCategories); err != nil {
			t.Errorf("Write(%s): %v", f, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Write(%s) produced no output", f)
		}
	}
	if err := Write(&bytes.Buffer{}, Format("pdf"), nil, nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Write(pdf) = %v, want ErrUnknownFormat", err)
	}
}
