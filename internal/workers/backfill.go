package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/queue"
)

// Backfiller schedules answer generation for questions that have no answer yet
type Backfiller struct {
	jobQueue  Enqueuer
	questions QuestionReader
	spacing   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewBackfiller creates a backfiller. Consecutive jobs are spaced apart so a large
// backlog does not burst the provider's rate limit.
func NewBackfiller(jobQueue Enqueuer, questions QuestionReader, spacing time.Duration, logger *zap.Logger) *Backfiller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backfiller{
		jobQueue:  jobQueue,
		questions: questions,
		spacing:   spacing,
		logger:    logger,
		now:       time.Now,
	}
}

// ScheduleMissingAnswers enqueues one answer_generation job per unanswered question and
// returns how many were enqueued
func (b *Backfiller) ScheduleMissingAnswers(ctx context.Context) (int, error) {
	questions, err := b.questions.ExportAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read questions: %w", err)
	}

	now := b.now()
	scheduled := 0
	for _, q := range questions {
		if strings.TrimSpace(q.Answer) != "" {
			continue
		}

		job := queue.NewAnswerGenerationJob(q.ID, q.Text)
		notBefore := now.Add(time.Duration(scheduled) * b.spacing)
		job.NotBefore = &notBefore
		// Set NotAfter to 1 day after scheduled time for garbage collection
		notAfter := notBefore.Add(24 * time.Hour)
		job.NotAfter = &notAfter

		if err := b.jobQueue.Enqueue(ctx, job); err != nil {
			b.logger.Warn("answer_backfill_enqueue_failed",
				zap.String("question_id", q.ID),
				zap.Error(err))
			// Continue with other questions
			continue
		}
		scheduled++
	}

	b.logger.Info("answer_backfill_scheduled",
		zap.Int("scheduled", scheduled),
		zap.Int("total", len(questions)))
	return scheduled, nil
}
