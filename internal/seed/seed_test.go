package seed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/storage"
	"github.com/benvon/interview-tracker/internal/store"
)

const seedBody = `[{"id":"s1","text":"Seeded?","category":"Other","createdAt":10},{"id":"s2","text":"Also seeded?","createdAt":20}]`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoader_Directory(t *testing.T) {
	t.Parallel()

	got, ok := NewLoader(writeSeed(t, seedBody), nil).LoadProjectSeed(context.Background())
	if !ok || len(got) != 2 || got[0].ID != "s1" {
		t.Errorf("LoadProjectSeed = %+v, %v", got, ok)
	}
}

func TestLoader_Absent(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"not an array": writeSeed(t, `{"id":"s1"}`),
		"null":         writeSeed(t, `null`),
		"not json":     writeSeed(t, `<html>`),
		"missing file": t.TempDir(),
		"empty source": "",
	}
	for name, source := range tests {
		source := source
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got, ok := NewLoader(source, nil).LoadProjectSeed(context.Background()); ok {
				t.Errorf("Expected absence, got %+v", got)
			}
		})
	}
}

func TestLoader_HTTP(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/public/" + FileName:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(seedBody))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	got, ok := NewLoader(srv.URL+"/public", nil).LoadProjectSeed(context.Background())
	if !ok || len(got) != 2 {
		t.Errorf("LoadProjectSeed = %+v, %v", got, ok)
	}

	if _, ok := NewLoader(srv.URL+"/missing/", nil).LoadProjectSeed(context.Background()); ok {
		t.Error("Expected 404 to be reported as absence")
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "", want: PolicyMergeIfEmpty},
		{in: "if_empty", want: PolicyMergeIfEmpty},
		{in: "ALWAYS", want: PolicyAlwaysMerge},
		{in: "sometimes", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestApply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name         string
		policy       Policy
		existing     bool
		wantImported int
		wantCount    int
	}{
		{name: "if empty on empty store", policy: PolicyMergeIfEmpty, wantImported: 2, wantCount: 2},
		{name: "if empty on populated store", policy: PolicyMergeIfEmpty, existing: true, wantImported: 0, wantCount: 1},
		{name: "always on populated store", policy: PolicyAlwaysMerge, existing: true, wantImported: 2, wantCount: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			questions := store.NewQuestionStore(storage.NewMemory(), nil)
			if tt.existing {
				if _, err := questions.Save(ctx, models.Question{ID: "local", Text: "mine"}); err != nil {
					t.Fatal(err)
				}
			}

			result, err := Apply(ctx, NewLoader(writeSeed(t, seedBody), nil), questions, tt.policy)
			if err != nil {
				t.Fatal(err)
			}
			if result.Imported != tt.wantImported {
				t.Errorf("imported = %d, want %d", result.Imported, tt.wantImported)
			}
			all, _ := questions.GetAll(ctx)
			if len(all) != tt.wantCount {
				t.Errorf("store has %d questions, want %d", len(all), tt.wantCount)
			}
		})
	}
}

func TestApply_DeletedSeedNotResurrected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	questions := store.NewQuestionStore(storage.NewMemory(), nil)
	loader := NewLoader(writeSeed(t, seedBody), nil)

	if _, err := Apply(ctx, loader, questions, PolicyMergeIfEmpty); err != nil {
		t.Fatal(err)
	}
	if err := questions.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := Apply(ctx, loader, questions, PolicyMergeIfEmpty); err != nil {
		t.Fatal(err)
	}
	if _, err := questions.Get(ctx, "s1"); !store.IsNotFound(err) {
		t.Error("Expected deleted seed record to stay deleted")
	}
}
