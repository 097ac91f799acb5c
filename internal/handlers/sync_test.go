package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/benvon/interview-tracker/internal/mirror"
	"github.com/benvon/interview-tracker/internal/queue"
)

func TestSyncLifecycle(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t)
	dir := filepath.Join(t.TempDir(), "mirror")

	rr := api.do(t, http.MethodGet, "/api/v1/sync", nil)
	expectStatus(t, rr, http.StatusOK)
	var status SyncStatusResponse
	decodeEnvelope(t, rr, &status)
	if status.State != mirror.StateUnattached {
		t.Errorf("Expected unattached session, got %s", status.State)
	}

	rr = api.do(t, http.MethodPut, "/api/v1/sync", map[string]string{"directory": dir})
	expectStatus(t, rr, http.StatusOK)
	decodeEnvelope(t, rr, &status)
	if status.State != mirror.StateAttached || !status.Scheduled {
		t.Errorf("Expected attached session with a scheduled write, got %+v", status)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Expected mirror directory to be created: %v", err)
	}

	jobs := api.jobs.enqueued()
	if len(jobs) != 1 || jobs[0].Type != queue.JobTypeMirrorSync || jobs[0].MetadataString(queue.MetaDirectory) != dir {
		t.Errorf("Unexpected jobs %+v", jobs)
	}

	rr = api.do(t, http.MethodDelete, "/api/v1/sync", nil)
	expectStatus(t, rr, http.StatusOK)
	decodeEnvelope(t, rr, &status)
	if status.State != mirror.StateUnattached || status.Directory != dir {
		t.Errorf("Expected detached session remembering %s, got %+v", dir, status)
	}
}

func TestSyncAttachErrors(t *testing.T) {
	t.Parallel()

	t.Run("file instead of directory", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)
		file := filepath.Join(t.TempDir(), "questions.json")
		if err := os.WriteFile(file, []byte("[]"), 0o600); err != nil {
			t.Fatal(err)
		}
		rr := api.do(t, http.MethodPut, "/api/v1/sync", map[string]string{"directory": file})
		expectStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("missing directory field", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)
		rr := api.do(t, http.MethodPut, "/api/v1/sync", map[string]string{})
		expectStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("released session", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t)
		api.session.Release()
		rr := api.do(t, http.MethodPut, "/api/v1/sync", map[string]string{"directory": t.TempDir()})
		expectStatus(t, rr, http.StatusConflict)
	})
}
