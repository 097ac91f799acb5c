package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/queue"
)

func TestBackfiller_ScheduleMissingAnswers(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	questions := newMockQuestions(
		models.Question{ID: "a", Text: "Unanswered A"},
		models.Question{ID: "b", Text: "Answered", Answer: "Yes"},
		models.Question{ID: "c", Text: "Unanswered C", Answer: "   "},
	)
	jobs := &mockEnqueuer{}
	b := NewBackfiller(jobs, questions, 10*time.Second, nil)
	b.now = func() time.Time { return now }

	n, err := b.ScheduleMissingAnswers(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || len(jobs.jobs) != 2 {
		t.Fatalf("Expected 2 scheduled jobs, got %d (%d enqueued)", n, len(jobs.jobs))
	}

	for i, want := range []struct {
		id    string
		delay time.Duration
	}{{"a", 0}, {"c", 10 * time.Second}} {
		job := jobs.jobs[i]
		if job.Type != queue.JobTypeAnswerGeneration || job.QuestionID != want.id {
			t.Errorf("job %d = %+v", i, job)
		}
		if !job.NotBefore.Equal(now.Add(want.delay)) {
			t.Errorf("job %d NotBefore = %v", i, job.NotBefore)
		}
		if !job.NotAfter.Equal(now.Add(want.delay).Add(24 * time.Hour)) {
			t.Errorf("job %d NotAfter = %v", i, job.NotAfter)
		}
	}
	if jobs.jobs[1].MetadataString(queue.MetaQuestionText) != "Unanswered C" {
		t.Error("Expected job to carry the question text")
	}
}

func TestBackfiller_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	broken := newMockQuestions()
	broken.getErr = errTransient
	if _, err := NewBackfiller(&mockEnqueuer{}, broken, 0, nil).ScheduleMissingAnswers(ctx); !errors.Is(err, errTransient) {
		t.Errorf("Expected read error, got %v", err)
	}

	full := &mockEnqueuer{err: queue.ErrQueueFull}
	n, err := NewBackfiller(full, newMockQuestions(models.Question{ID: "a", Text: "Q"}), 0, nil).ScheduleMissingAnswers(ctx)
	if err != nil || n != 0 {
		t.Errorf("Expected enqueue failures to be skipped, got n=%d err=%v", n, err)
	}
}
