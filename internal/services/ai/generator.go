package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/models"
)

var (
	// ErrExternalService wraps every failure of the answer generator
	ErrExternalService = errors.New("AI service unavailable")
	// ErrNotConfigured is returned when no provider is configured
	ErrNotConfigured = errors.New("no AI provider configured")
	// ErrEmptyQuestion is returned for blank question text
	ErrEmptyQuestion = errors.New("question text is required")
)

// CategoryLister supplies the current category labels
type CategoryLister interface {
	GetAll(ctx context.Context) ([]string, error)
}

// GeneratedAnswer is a parsed, category-matched answer
type GeneratedAnswer struct {
	Answer      string          `json:"answer"`
	Category    string          `json:"category"`
	RawCategory string          `json:"rawCategory,omitempty"`
	Sources     []models.Source `json:"sources"`
}

// Generator produces categorised answers for questions
type Generator struct {
	provider   AIProvider
	categories CategoryLister
	logger     *zap.Logger
}

// NewGenerator creates a generator. provider may be nil, in which case every call
// fails with ErrExternalService.
func NewGenerator(provider AIProvider, categories CategoryLister, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{provider: provider, categories: categories, logger: logger}
}

// Configured reports whether a provider is available
func (g *Generator) Configured() bool {
	return g.provider != nil
}

// Generate answers questionText. Nothing is persisted; callers apply the result.
func (g *Generator) Generate(ctx context.Context, questionText string) (*GeneratedAnswer, error) {
	if strings.TrimSpace(questionText) == "" {
		return nil, ErrEmptyQuestion
	}
	if g.provider == nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalService, ErrNotConfigured)
	}

	labels := models.DefaultCategoryList()
	if g.categories != nil {
		stored, err := g.categories.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read categories: %w", err)
		}
		labels = stored
	}

	resp, err := g.provider.GenerateAnswer(ctx, AnswerRequest{QuestionText: questionText, Categories: labels})
	if err != nil {
		g.logger.Warn("answer_generation_failed",
			zap.String("question_preview", SanitizePrompt(questionText, false)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}

	raw, answer := ParseCategorizedAnswer(resp.Text)
	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: empty answer", ErrExternalService)
	}

	out := &GeneratedAnswer{
		Answer:   answer,
		Category: MatchCategory(raw, labels),
		Sources:  resp.Sources,
	}
	if out.Sources == nil {
		out.Sources = []models.Source{}
	}
	if !strings.EqualFold(out.Category, raw) {
		out.RawCategory = raw
	}
	return out, nil
}
