package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/storage"
)

// Change operations reported to the change handler.
const (
	OpSave    = "save"
	OpDelete  = "delete"
	OpImport  = "import"
	OpCascade = "cascade"
	OpMigrate = "migrate"
)

// ChangeEvent describes a persisted mutation of the question collection.
type ChangeEvent struct {
	Op    string
	Count int
}

// ChangeHandler is invoked after each persisted mutation.
type ChangeHandler func(ctx context.Context, event ChangeEvent)

// CategoryLister supplies the labels a saved question may reference.
type CategoryLister interface {
	GetAll(ctx context.Context) ([]string, error)
}

// ImportResult reports how many records a merge accepted and skipped.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// QuestionStore owns the persisted question collection.
type QuestionStore struct {
	kv         storage.KV
	logger     *zap.Logger
	mu         sync.Mutex
	onChange   ChangeHandler
	categories CategoryLister
	now        func() int64
}

// NewQuestionStore creates a question store over kv.
func NewQuestionStore(kv storage.KV, logger *zap.Logger) *QuestionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionStore{
		kv:     kv,
		logger: logger,
		now:    models.NowMillis,
	}
}

// SetChangeHandler registers the handler fired after each persisted mutation.
func (s *QuestionStore) SetChangeHandler(h ChangeHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = h
}

// SetCategorySource sets the label list used to validate categories on save.
func (s *QuestionStore) SetCategorySource(c CategoryLister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = c
}

// GetAll returns every question in stored order.
func (s *QuestionStore) GetAll(ctx context.Context) ([]models.Question, error) {
	s.mu.Lock()
	questions, migrated, err := s.load(ctx)
	handler := s.onChange
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if migrated {
		s.notify(ctx, handler, ChangeEvent{Op: OpMigrate, Count: len(questions)})
	}
	return questions, nil
}

// ExportAll returns the full collection for export.
func (s *QuestionStore) ExportAll(ctx context.Context) ([]models.Question, error) {
	return s.GetAll(ctx)
}

// Get returns the question with the given id.
func (s *QuestionStore) Get(ctx context.Context, id string) (*models.Question, error) {
	questions, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		if questions[i].ID == id {
			q := questions[i]
			return &q, nil
		}
	}
	return nil, ErrQuestionNotFound
}

// Save upserts q by id and returns the stored record.
func (s *QuestionStore) Save(ctx context.Context, q models.Question) (*models.Question, error) {
	return s.save(ctx, q, true)
}

// Update replaces the stored question with q's id. It returns ErrQuestionNotFound,
// and writes nothing, when that id is no longer stored.
func (s *QuestionStore) Update(ctx context.Context, q models.Question) (*models.Question, error) {
	return s.save(ctx, q, false)
}

func (s *QuestionStore) save(ctx context.Context, q models.Question, insert bool) (*models.Question, error) {
	if !q.HasIdentity() {
		return nil, ErrInvalidQuestion
	}

	// Category labels are read before taking the lock; the category store calls back
	// into ReassignCategory while holding its own lock.
	s.mu.Lock()
	lister := s.categories
	s.mu.Unlock()
	category, err := s.resolveCategory(ctx, lister, q.Category)
	if err != nil {
		return nil, err
	}
	q.Category = category

	s.mu.Lock()
	questions, _, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	now := s.now()
	saved := q.Clone()
	if saved.Sources == nil {
		saved.Sources = []models.Source{}
	}

	idx := indexOf(questions, q.ID)
	if idx < 0 && !insert {
		s.mu.Unlock()
		return nil, ErrQuestionNotFound
	}
	if idx >= 0 {
		prev := questions[idx]
		saved.CreatedAt = prev.CreatedAt
		saved.UpdatedAt = max(now, prev.UpdatedAt)
		questions[idx] = saved
	} else {
		if saved.CreatedAt == 0 {
			saved.CreatedAt = now
		}
		saved.UpdatedAt = max(now, saved.UpdatedAt)
		questions = append([]models.Question{saved}, questions...)
	}

	if err := s.persist(ctx, questions); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	handler := s.onChange
	s.mu.Unlock()

	s.logger.Info("question_saved",
		zap.String("question_id", saved.ID),
		zap.String("category", saved.Category),
		zap.Bool("created", idx < 0))
	s.notify(ctx, handler, ChangeEvent{Op: OpSave, Count: 1})

	return &saved, nil
}

// Delete removes the question with the given id. An unknown id is a no-op.
func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	questions, _, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	idx := indexOf(questions, id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	questions = append(questions[:idx], questions[idx+1:]...)

	if err := s.persist(ctx, questions); err != nil {
		s.mu.Unlock()
		return err
	}
	handler := s.onChange
	s.mu.Unlock()

	s.logger.Info("question_deleted", zap.String("question_id", id))
	s.notify(ctx, handler, ChangeEvent{Op: OpDelete, Count: 1})
	return nil
}

// ImportJSON decodes payload as a JSON array of questions and merges it.
func (s *QuestionStore) ImportJSON(ctx context.Context, payload []byte) (ImportResult, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(payload, &elements); err != nil || elements == nil {
		return ImportResult{}, ErrInvalidFormat
	}

	records := make([]models.Question, 0, len(elements))
	skipped := 0
	for _, el := range elements {
		var q models.Question
		if err := json.Unmarshal(el, &q); err != nil {
			skipped++
			continue
		}
		records = append(records, q)
	}

	result, err := s.ImportMerge(ctx, records)
	result.Skipped += skipped
	return result, err
}

// ImportMerge upserts every record carrying an id and text, then re-sorts the
// collection by createdAt descending. Nothing is written when no record is accepted.
func (s *QuestionStore) ImportMerge(ctx context.Context, records []models.Question) (ImportResult, error) {
	var result ImportResult
	accepted := make([]models.Question, 0, len(records))
	for _, r := range records {
		if !r.HasIdentity() {
			result.Skipped++
			continue
		}
		accepted = append(accepted, r.Clone())
	}
	if len(accepted) == 0 {
		return result, nil
	}

	s.mu.Lock()
	questions, _, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return ImportResult{}, err
	}

	for _, r := range accepted {
		if r.Sources == nil {
			r.Sources = []models.Source{}
		}
		if idx := indexOf(questions, r.ID); idx >= 0 {
			questions[idx] = r
		} else {
			questions = append(questions, r)
		}
		result.Imported++
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].CreatedAt > questions[j].CreatedAt
	})

	if err := s.persist(ctx, questions); err != nil {
		s.mu.Unlock()
		return ImportResult{}, err
	}
	handler := s.onChange
	s.mu.Unlock()

	s.logger.Info("questions_imported",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	s.notify(ctx, handler, ChangeEvent{Op: OpImport, Count: result.Imported})

	return result, nil
}

// ReassignCategory rewrites the category of every question labelled from to to. It
// returns the number of changed records and writes only when that is non-zero.
func (s *QuestionStore) ReassignCategory(ctx context.Context, from, to string) (int, error) {
	if from == to {
		return 0, nil
	}

	s.mu.Lock()
	questions, _, err := s.load(ctx)
	if err != nil {
		s.mu.Unlock()
		return 0, err
	}

	changed := 0
	for i := range questions {
		if questions[i].Category == from {
			questions[i].Category = to
			changed++
		}
	}
	if changed == 0 {
		s.mu.Unlock()
		return 0, nil
	}

	if err := s.persist(ctx, questions); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	handler := s.onChange
	s.mu.Unlock()

	s.logger.Info("question_categories_reassigned",
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("count", changed))
	s.notify(ctx, handler, ChangeEvent{Op: OpCascade, Count: changed})

	return changed, nil
}

// load reads the canonical collection, falling back to the legacy keys when it is
// absent. The second result reports whether a legacy migration was persisted.
// Callers must hold s.mu.
func (s *QuestionStore) load(ctx context.Context) ([]models.Question, bool, error) {
	raw, ok, err := s.kv.Get(ctx, QuestionsKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read questions: %w", err)
	}
	if ok {
		questions, err := decodeQuestions(raw)
		if err != nil {
			s.logger.Warn("stored_questions_unreadable",
				zap.String("key", QuestionsKey),
				zap.Error(err))
			return []models.Question{}, false, nil
		}
		return questions, false, nil
	}

	candidates := make([][]byte, 0, len(LegacyQuestionKeys))
	for _, key := range LegacyQuestionKeys {
		raw, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read legacy key %s: %w", key, err)
		}
		if !ok {
			raw = nil
		}
		candidates = append(candidates, raw)
	}

	recovered, found := RecoverFromLegacy(candidates)
	if !found {
		return []models.Question{}, false, nil
	}

	if err := s.persist(ctx, recovered); err != nil {
		return nil, false, err
	}
	s.logger.Info("legacy_questions_recovered", zap.Int("count", len(recovered)))
	return recovered, true, nil
}

// persist writes the full collection under the canonical key. Callers must hold s.mu.
func (s *QuestionStore) persist(ctx context.Context, questions []models.Question) error {
	if questions == nil {
		questions = []models.Question{}
	}
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}
	if err := s.kv.Set(ctx, QuestionsKey, data); err != nil {
		return fmt.Errorf("failed to write questions: %w", err)
	}
	return nil
}

func (s *QuestionStore) resolveCategory(ctx context.Context, lister CategoryLister, label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.CategoryOther, nil
	}
	if lister == nil {
		return label, nil
	}
	labels, err := lister.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read categories: %w", err)
	}
	if !models.ContainsCategory(labels, label) {
		s.logger.Debug("unknown_category_coerced", zap.String("category", label))
		return models.CategoryOther, nil
	}
	return label, nil
}

func (s *QuestionStore) notify(ctx context.Context, h ChangeHandler, event ChangeEvent) {
	if h == nil {
		return
	}
	h(ctx, event)
}

func indexOf(questions []models.Question, id string) int {
	for i := range questions {
		if questions[i].ID == id {
			return i
		}
	}
	return -1
}

// IsNotFound reports whether err means the question does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuestionNotFound)
}
