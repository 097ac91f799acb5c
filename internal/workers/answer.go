package workers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/queue"
	"github.com/benvon/interview-tracker/internal/services/ai"
	"github.com/benvon/interview-tracker/internal/store"
)

// AnswerGenerator produces a categorised answer for question text
type AnswerGenerator interface {
	Generate(ctx context.Context, questionText string) (*ai.GeneratedAnswer, error)
}

// QuestionUpdater reads and updates single questions
type QuestionUpdater interface {
	Get(ctx context.Context, id string) (*models.Question, error)
	Update(ctx context.Context, q models.Question) (*models.Question, error)
}

// AnswerProcessor handles answer_generation jobs
type AnswerProcessor struct {
	generator AnswerGenerator
	questions QuestionUpdater
	logger    *zap.Logger
}

// NewAnswerProcessor creates an answer processor
func NewAnswerProcessor(generator AnswerGenerator, questions QuestionUpdater, logger *zap.Logger) *AnswerProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerProcessor{generator: generator, questions: questions, logger: logger}
}

// Handle generates an answer and applies it to the question. The result is dropped when
// the question was deleted or its text edited since the job was enqueued.
func (a *AnswerProcessor) Handle(ctx context.Context, job *queue.Job) error {
	if job.QuestionID == "" {
		return Permanent(errors.New("question_id is required for answer generation job"))
	}

	q, ok, err := a.current(ctx, job.QuestionID, job.MetadataString(queue.MetaQuestionText))
	if err != nil || !ok {
		return err
	}

	ctx = ai.WithQuestionID(ctx, q.ID)
	generated, err := a.generator.Generate(ctx, q.Text)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyQuestion) || errors.Is(err, ai.ErrNotConfigured) {
			return Permanent(err)
		}
		return fmt.Errorf("failed to generate answer: %w", err)
	}

	// The question may have changed while the provider was answering
	latest, ok, err := a.current(ctx, q.ID, q.Text)
	if err != nil || !ok {
		return err
	}

	latest.Answer = generated.Answer
	latest.Category = generated.Category
	latest.Sources = generated.Sources
	latest.IsAIGenerated = true
	_, err = a.questions.Update(ctx, *latest)
	if store.IsNotFound(err) {
		a.logger.Info("answer_discarded", zap.String("question_id", latest.ID), zap.String("reason", "deleted"))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}

	a.logger.Info("answer_applied",
		zap.String("question_id", latest.ID),
		zap.String("category", latest.Category),
		zap.String("raw_category", generated.RawCategory),
		zap.Int("source_count", len(generated.Sources)))
	return nil
}

// current loads id and reports whether it still matches text. An empty text matches
// anything.
func (a *AnswerProcessor) current(ctx context.Context, id, text string) (*models.Question, bool, error) {
	q, err := a.questions.Get(ctx, id)
	if store.IsNotFound(err) {
		a.logger.Info("answer_discarded", zap.String("question_id", id), zap.String("reason", "deleted"))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load question: %w", err)
	}
	if text != "" && q.Text != text {
		a.logger.Info("answer_discarded", zap.String("question_id", id), zap.String("reason", "edited"))
		return nil, false, nil
	}
	return q, true, nil
}
