package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/queue"
)

func TestSession_Lifecycle(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "mirror")
	s := NewSession()

	if s.State() != StateUnattached {
		t.Fatalf("initial state = %s", s.State())
	}
	if _, ok := s.Target(); ok {
		t.Error("unattached session should have no target")
	}

	if err := s.Acquire(dir); err != nil {
		t.Fatal(err)
	}
	if s.State() != StateAttached {
		t.Errorf("state after Acquire = %s", s.State())
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Expected Acquire to create %s", dir)
	}

	s.Detach()
	if s.State() != StateUnattached || s.Dir() != dir {
		t.Errorf("after Detach: state %s dir %q", s.State(), s.Dir())
	}

	if err := s.Acquire(dir); err != nil {
		t.Fatal(err)
	}
	s.Release()
	if s.State() != StateReleased {
		t.Errorf("state after Release = %s", s.State())
	}
	if err := s.Acquire(dir); !errors.Is(err, ErrReleased) {
		t.Errorf("Acquire after Release = %v, want ErrReleased", err)
	}
	s.Detach()
	if s.State() != StateReleased {
		t.Error("Detach must not leave the released state")
	}
}

func TestSession_AcquireInvalid(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewSession()
	for _, dir := range []string{"", file} {
		if err := s.Acquire(dir); !errors.Is(err, ErrInvalidDirectory) {
			t.Errorf("Acquire(%q) = %v, want ErrInvalidDirectory", dir, err)
		}
	}
	if s.State() != StateUnattached {
		t.Errorf("state = %s, want unattached", s.State())
	}
}

func TestWriter_Write(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	w := NewWriter()

	questions := []models.Question{{ID: "a", Text: "q", Sources: []models.Source{}}}
	if err := w.Write(context.Background(), dir, questions); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(context.Background(), dir, append(questions, models.Question{ID: "b", Text: "q2", Sources: []models.Source{}})); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	var got []models.Question
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("mirror holds %d questions, want 2", len(got))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected only the mirror file, found %d entries", len(entries))
	}
}

func TestWriter_WriteFailure(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "gone")

	err := NewWriter().Write(context.Background(), missing, nil)
	if !errors.Is(err, ErrSyncWrite) {
		t.Errorf("Write to missing dir = %v, want ErrSyncWrite", err)
	}
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

func (r *recordingQueue) Enqueue(_ context.Context, job *queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

func TestScheduler_Schedule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	session := NewSession()
	q := &recordingQueue{}
	s := NewScheduler(session, q, nil)

	if s.Schedule(ctx) {
		t.Error("Expected no job while unattached")
	}

	if err := session.Acquire(dir); err != nil {
		t.Fatal(err)
	}
	if !s.Schedule(ctx) {
		t.Fatal("Expected a job while attached")
	}
	if len(q.jobs) != 1 || q.jobs[0].Type != queue.JobTypeMirrorSync {
		t.Fatalf("jobs = %+v", q.jobs)
	}
	if got := q.jobs[0].MetadataString(queue.MetaDirectory); got != session.Dir() {
		t.Errorf("job directory = %q, want %q", got, session.Dir())
	}

	session.Release()
	if s.Schedule(ctx) {
		t.Error("Expected no job after release")
	}
}

func TestScheduler_QueueFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	session := NewSession()
	if err := session.Acquire(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	s := NewScheduler(session, &recordingQueue{err: queue.ErrQueueFull}, nil)

	if s.Schedule(context.Background()) {
		t.Error("Expected Schedule to report failure")
	}
}
