package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/store"
)

func TestImport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		contentType  string
		body         string
		wantStatus   int
		wantImported int
		wantSkipped  int
		wantTotal    int
	}{
		{
			name:         "json array",
			contentType:  "application/json",
			body:         `[{"id":"a","text":"First","createdAt":1000},{"id":"b","text":"Second","createdAt":2000},{"id":"","text":"no id"}]`,
			wantStatus:   http.StatusOK,
			wantImported: 2,
			wantSkipped:  1,
			wantTotal:    3,
		},
		{
			name:        "json object is rejected",
			contentType: "application/json",
			body:        `{"id":"a","text":"First"}`,
			wantStatus:  http.StatusBadRequest,
			wantTotal:   1,
		},
		{
			name:        "not json",
			contentType: "application/json",
			body:        `hello`,
			wantStatus:  http.StatusBadRequest,
			wantTotal:   1,
		},
		{
			name:         "empty array leaves store untouched",
			contentType:  "application/json",
			body:         `[]`,
			wantStatus:   http.StatusOK,
			wantImported: 0,
			wantTotal:    1,
		},
		{
			name:         "csv",
			contentType:  "text/csv; charset=utf-8",
			body:         "id,text,answer,category,companyTag,createdAt,updatedAt,isAiGenerated,sources\nc1,Explain TCP,,Other,,3000,3000,false,\n",
			wantStatus:   http.StatusOK,
			wantImported: 1,
			wantTotal:    2,
		},
		{
			name:        "csv without text column",
			contentType: "text/csv",
			body:        "id,answer\nc1,x\n",
			wantStatus:  http.StatusBadRequest,
			wantTotal:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := newTestAPI(t)
			api.seed(t, models.Question{ID: "existing", Text: "Keep me"})

			rr := api.doRaw(t, http.MethodPost, "/api/v1/import", tt.contentType, []byte(tt.body))
			expectStatus(t, rr, tt.wantStatus)

			if tt.wantStatus == http.StatusOK {
				var result store.ImportResult
				decodeEnvelope(t, rr, &result)
				if result.Imported != tt.wantImported || result.Skipped != tt.wantSkipped {
					t.Errorf("Expected imported=%d skipped=%d, got %+v", tt.wantImported, tt.wantSkipped, result)
				}
			} else {
				env := decodeEnvelope(t, rr, nil)
				if !strings.Contains(env.Message, "Export") {
					t.Errorf("Expected actionable message, got %q", env.Message)
				}
			}

			all, err := api.questions.GetAll(context.Background())
			if err != nil {
				t.Fatalf("GetAll: %v", err)
			}
			if len(all) != tt.wantTotal {
				t.Errorf("Expected %d questions after import, got %d", tt.wantTotal, len(all))
			}
		})
	}
}

func TestExport(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	api.seed(t, models.Question{ID: "q1", Text: "Explain BFS", Answer: "Level order.", Category: "Algorithm"})
	api.seed(t, models.Question{ID: "q2", Text: "Explain Transformers", Category: "NLP"})

	tests := []struct {
		format      string
		wantType    string
		wantExt     string
		wantContent string
	}{
		{format: "", wantType: "application/json", wantExt: ".json", wantContent: `"id": "q2"`},
		{format: "csv", wantType: "text/csv; charset=utf-8", wantExt: ".csv", wantContent: "q1,Explain BFS"},
		{format: "markdown", wantType: "text/markdown; charset=utf-8", wantExt: ".md", wantContent: "## Algorithm"},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			t.Parallel()

			rr := api.do(t, http.MethodGet, "/api/v1/export?format="+tt.format, nil)
			expectStatus(t, rr, http.StatusOK)

			if got := rr.Header().Get("Content-Type"); got != tt.wantType {
				t.Errorf("Expected Content-Type %q, got %q", tt.wantType, got)
			}
			disposition := rr.Header().Get("Content-Disposition")
			if !strings.HasPrefix(disposition, "attachment;") || !strings.Contains(disposition, tt.wantExt) {
				t.Errorf("Unexpected Content-Disposition %q", disposition)
			}
			if !strings.Contains(rr.Body.String(), tt.wantContent) {
				t.Errorf("Expected body to contain %q, got:\n%s", tt.wantContent, rr.Body.String())
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		rr := api.do(t, http.MethodGet, "/api/v1/export?format=pdf", nil)
		expectStatus(t, rr, http.StatusBadRequest)
	})
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	source := newTestAPI(t)
	source.seed(t, models.Question{
		ID:       "q1",
		Text:     "Explain consensus",
		Answer:   "Agreement among replicas.",
		Category: "System Design",
		Sources:  []models.Source{{URI: "https://raft.github.io", Title: "Raft"}},
	})
	rr := source.do(t, http.MethodGet, "/api/v1/export?format=json", nil)
	expectStatus(t, rr, http.StatusOK)
	exported := rr.Body.Bytes()

	target := newTestAPI(t)
	rr = target.doRaw(t, http.MethodPost, "/api/v1/import", "application/json", exported)
	expectStatus(t, rr, http.StatusOK)

	want, _ := source.questions.ExportAll(context.Background())
	got, _ := target.questions.ExportAll(context.Background())
	wantJSON, _ := json.Marshal(want)
	gotJSON, _ := json.Marshal(got)
	if string(wantJSON) != string(gotJSON) {
		t.Errorf("Expected round trip to preserve records\nwant %s\ngot  %s", wantJSON, gotJSON)
	}
}
