package models

import (
	"testing"
	"time"
)

func TestQuestion_HasIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		q    Question
		want bool
	}{
		{"id and text", Question{ID: "a", Text: "What is a heap?"}, true},
		{"missing id", Question{Text: "What is a heap?"}, false},
		{"missing text", Question{ID: "a"}, false},
		{"whitespace text", Question{ID: "a", Text: "   "}, false},
		{"whitespace id", Question{ID: " ", Text: "Q"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.q.HasIdentity(); got != tt.want {
				t.Errorf("HasIdentity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuestion_CloneDoesNotShareSources(t *testing.T) {
	t.Parallel()

	original := Question{ID: "a", Text: "Q", Sources: []Source{{URI: "https://a.example", Title: "A"}}}
	clone := original.Clone()
	clone.Sources[0].URI = "https://b.example"

	if original.Sources[0].URI != "https://a.example" {
		t.Errorf("Expected original source to be untouched, got %s", original.Sources[0].URI)
	}
}

func TestMillisToTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	got := MillisToTime(ts.UnixMilli(), time.UTC)
	if !got.Equal(ts) {
		t.Errorf("MillisToTime() = %v, want %v", got, ts)
	}
}

func TestDefaultCategoryList_ContainsOther(t *testing.T) {
	t.Parallel()

	list := DefaultCategoryList()
	if !ContainsCategory(list, CategoryOther) {
		t.Fatal("Expected default categories to contain Other")
	}

	list[0] = "mutated"
	if DefaultCategories[0] == "mutated" {
		t.Error("Expected DefaultCategoryList to return a copy")
	}
}
