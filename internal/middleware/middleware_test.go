package middleware

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/benvon/interview-tracker/internal/request"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = request.ID(r)
	}))

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated", incoming: ""},
		{name: "client supplied", incoming: "abc-123", keep: true},
		{name: "too long", incoming: strings.Repeat("x", 200)},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.incoming != "" {
			req.Header.Set("X-Request-ID", tt.incoming)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if seen == "" || w.Header().Get("X-Request-ID") != seen {
			t.Errorf("%s: header %q, context %q", tt.name, w.Header().Get("X-Request-ID"), seen)
		}
		if tt.keep != (seen == tt.incoming) {
			t.Errorf("%s: keep=%v but got %q", tt.name, tt.keep, seen)
		}
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		allowed     []string
		method      string
		contentType string
		body        string
		wantStatus  int
	}{
		{name: "GET passes", method: "GET", wantStatus: http.StatusOK},
		{name: "JSON with charset", method: "POST", contentType: "application/json; charset=utf-8", body: "{}", wantStatus: http.StatusOK},
		{name: "missing header with body", method: "POST", body: "{}", wantStatus: http.StatusBadRequest},
		{name: "bodyless POST", method: "POST", wantStatus: http.StatusOK},
		{name: "CSV rejected by default", method: "POST", contentType: "text/csv", body: "a", wantStatus: http.StatusUnsupportedMediaType},
		{name: "CSV allowed", allowed: []string{MediaTypeJSON, MediaTypeCSV}, method: "PUT", contentType: "text/csv", body: "a", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, "/api/v1/import", strings.NewReader(tt.body))
			if tt.body == "" {
				req.ContentLength = 0
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			ContentType(tt.allowed...)(okHandler()).ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	t.Parallel()

	got := AllowedOrigins(" https://app.example.com, ,http://localhost:3000,https://app.example.com ")
	want := []string{"http://localhost:3000", "https://app.example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AllowedOrigins = %v, want %v", got, want)
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	h := CORS("https://app.example.com", nil)(okHandler())

	preflight := httptest.NewRequest(http.MethodOptions, "/api/v1/questions", nil)
	preflight.Header.Set("Origin", "https://app.example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, preflight)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Expected allowed origin on preflight, got %q", got)
	}

	blocked := httptest.NewRequest(http.MethodGet, "/api/v1/questions", nil)
	blocked.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, blocked)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Expected no CORS header for unknown origin, got %q", got)
	}
}

func TestRateLimit_Memory(t *testing.T) {
	t.Parallel()

	mw, err := RateLimit("2-M", nil, "test")
	if err != nil {
		t.Fatal(err)
	}
	h := mw(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/v1/ai/answer", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if !reflect.DeepEqual(codes, []int{200, 200, 429}) {
		t.Errorf("Expected third request to be limited, got %v", codes)
	}

	other := httptest.NewRequest("POST", "/api/v1/ai/answer", nil)
	other.Header.Set("X-Forwarded-For", "198.51.100.1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, other)
	if w.Code != http.StatusOK {
		t.Errorf("Expected separate budget per client, got %d", w.Code)
	}
}

func TestRateLimit_InvalidRate(t *testing.T) {
	t.Parallel()
	if _, err := RateLimit("lots", nil, ""); err == nil {
		t.Error("Expected error for malformed rate")
	}
}

func TestMaxRequestSize(t *testing.T) {
	t.Parallel()

	h := MaxRequestSize(8)(okHandler())
	req := httptest.NewRequest("POST", "/", strings.NewReader("0123456789"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	SecurityHeaders(true)(okHandler()).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("missing headers: %v", w.Header())
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("Expected no HSTS over plain HTTP")
	}
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
			w.WriteHeader(http.StatusOK)
		}
	})
	w := httptest.NewRecorder()
	Timeout(20*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 on timeout, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Request Timeout") {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}
