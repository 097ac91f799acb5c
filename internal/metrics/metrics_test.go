package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Observe(t *testing.T) {
	t.Parallel()
	c := NewCollector()

	c.ObserveStoreChange("import", 3)
	c.ObserveStoreChange("save", 1)
	c.ObserveStoreChange("migrate", 0)
	if got := testutil.ToFloat64(c.StoreChanges.WithLabelValues("import")); got != 3 {
		t.Errorf("import changes = %v", got)
	}
	if got := testutil.CollectAndCount(c.StoreChanges); got != 2 {
		t.Errorf("Expected zero-count ops to be skipped, got %d series", got)
	}

	c.ObserveAI("answer", "success", 2*time.Second)
	c.ObserveAI("chat", "degraded", time.Second)
	if got := testutil.ToFloat64(c.AIRequests.WithLabelValues("chat", "degraded")); got != 1 {
		t.Errorf("degraded chats = %v", got)
	}

	c.ObserveJob("mirror_sync", "success", 10*time.Millisecond)
	c.ObserveJob("mirror_sync", "deferred", 0)
	if got := testutil.ToFloat64(c.Jobs.WithLabelValues("mirror_sync", "success")); got != 1 {
		t.Errorf("mirror jobs = %v", got)
	}
	if got := testutil.CollectAndCount(c.JobDuration); got != 1 {
		t.Errorf("Expected one duration series, got %d", got)
	}
}

func TestMiddleware_LabelsRouteTemplate(t *testing.T) {
	t.Parallel()
	c := NewCollector()

	r := mux.NewRouter()
	r.Use(Middleware(c))
	r.HandleFunc("/api/v1/questions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/questions/"+id, nil))
	}

	got := testutil.ToFloat64(c.HTTPRequests.WithLabelValues(http.MethodGet, "/api/v1/questions/{id}", "404"))
	if got != 2 {
		t.Errorf("Expected 2 requests on the template label, got %v", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	t.Parallel()
	c := NewCollector()
	c.ObserveStoreChange("save", 1)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	for _, want := range []string{"interview_tracker_question_changes_total", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("Expected %s in exposition", want)
		}
	}
}
