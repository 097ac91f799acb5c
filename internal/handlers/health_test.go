package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHealthChecker(t *testing.T) {
	t.Parallel()

	healthy := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		mode       string
		checks     map[string]HealthCheck
		wantStatus int
		wantHealth string
		wantChecks map[string]string
	}{
		{
			name:       "basic mode skips checks",
			checks:     map[string]HealthCheck{"storage": failing},
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
		},
		{
			name:       "extended mode all healthy",
			mode:       "extended",
			checks:     map[string]HealthCheck{"storage": healthy, "queue": healthy},
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
			wantChecks: map[string]string{"storage": "healthy", "queue": "healthy"},
		},
		{
			name:       "extended mode with failing dependency",
			mode:       "extended",
			checks:     map[string]HealthCheck{"storage": healthy, "queue": failing},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
			wantChecks: map[string]string{"storage": "healthy", "queue": "unhealthy: connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthChecker()
			for name, check := range tt.checks {
				h.AddCheck(name, check)
			}

			path := "/healthz"
			if tt.mode != "" {
				path += "?mode=" + tt.mode
			}
			rr := httptest.NewRecorder()
			h.HealthCheck(rr, httptest.NewRequest(http.MethodGet, path, nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != tt.wantHealth {
				t.Errorf("Expected status %s, got %s", tt.wantHealth, resp.Status)
			}
			if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
				t.Errorf("Timestamp '%s' is not valid RFC3339: %v", resp.Timestamp, err)
			}
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Fatalf("Expected %d checks, got %v", len(tt.wantChecks), resp.Checks)
			}
			for name, want := range tt.wantChecks {
				if resp.Checks[name] != want {
					t.Errorf("Expected check[%s] = %s, got %s", name, want, resp.Checks[name])
				}
			}
		})
	}
}

func TestHealthCheckTimeout(t *testing.T) {
	t.Parallel()

	h := NewHealthChecker()
	h.timeout = 10 * time.Millisecond
	h.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	rr := httptest.NewRecorder()
	h.HealthCheck(rr, httptest.NewRequest(http.MethodGet, "/healthz?mode=extended", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "deadline exceeded") {
		t.Errorf("Expected deadline error in body, got %s", rr.Body.String())
	}
}

func TestVersionHandler(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	VersionHandler(VersionInfo{Version: "1.2.3", Commit: "abc123"})(rr, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	decodeEnvelope(t, rr, &info)
	if info.Version != "1.2.3" || info.Commit != "abc123" {
		t.Errorf("Unexpected version info %+v", info)
	}
}
