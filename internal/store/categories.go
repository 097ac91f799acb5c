package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/storage"
)

// CategoryReassigner rewrites question categories when a label is renamed or removed.
type CategoryReassigner interface {
	ReassignCategory(ctx context.Context, from, to string) (int, error)
}

// CategoryStore owns the ordered category label list.
type CategoryStore struct {
	kv        storage.KV
	questions CategoryReassigner
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewCategoryStore creates a category store. questions receives rename and remove
// cascades and may be nil.
func NewCategoryStore(kv storage.KV, questions CategoryReassigner, logger *zap.Logger) *CategoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryStore{kv: kv, questions: questions, logger: logger}
}

// GetAll returns the stored labels, or the defaults when none are stored.
func (s *CategoryStore) GetAll(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Add appends label after trimming it.
func (s *CategoryStore) Add(ctx context.Context, label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrEmptyCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	labels, err := s.load(ctx)
	if err != nil {
		return err
	}
	if models.ContainsCategory(labels, label) {
		return ErrCategoryExists
	}

	if err := s.persist(ctx, append(labels, label)); err != nil {
		return err
	}
	s.logger.Info("category_added", zap.String("category", label))
	return nil
}

// Rename replaces oldLabel with newLabel in place and cascades the change to questions.
// Missing oldLabel, empty newLabel and identical labels are no-ops. When newLabel is
// already present the two entries merge at newLabel's position.
func (s *CategoryStore) Rename(ctx context.Context, oldLabel, newLabel string) error {
	newLabel = strings.TrimSpace(newLabel)
	if newLabel == "" || newLabel == oldLabel {
		return nil
	}
	if oldLabel == models.CategoryOther {
		return ErrProtectedCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	labels, err := s.load(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, l := range labels {
		if l == oldLabel {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	var updated []string
	if models.ContainsCategory(labels, newLabel) {
		updated = append(updated, labels[:idx]...)
		updated = append(updated, labels[idx+1:]...)
	} else {
		updated = append(updated, labels...)
		updated[idx] = newLabel
	}

	moved, err := s.commit(ctx, labels, updated, oldLabel, newLabel)
	if err != nil {
		return err
	}
	s.logger.Info("category_renamed",
		zap.String("from", oldLabel),
		zap.String("to", newLabel),
		zap.Int("questions_updated", moved))
	return nil
}

// Remove deletes label and moves its questions to Other. A missing label is a no-op.
func (s *CategoryStore) Remove(ctx context.Context, label string) error {
	if label == models.CategoryOther {
		return ErrProtectedCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	labels, err := s.load(ctx)
	if err != nil {
		return err
	}
	if !models.ContainsCategory(labels, label) {
		return nil
	}

	updated := make([]string, 0, len(labels)-1)
	for _, l := range labels {
		if l != label {
			updated = append(updated, l)
		}
	}
	moved, err := s.commit(ctx, labels, updated, label, models.CategoryOther)
	if err != nil {
		return err
	}
	s.logger.Info("category_removed",
		zap.String("category", label),
		zap.Int("questions_updated", moved))
	return nil
}

// commit persists updated and moves questions from one label to another. When the move
// fails the previous list is written back so labels and questions stay consistent.
// Callers must hold s.mu.
func (s *CategoryStore) commit(ctx context.Context, previous, updated []string, from, to string) (int, error) {
	if err := s.persist(ctx, updated); err != nil {
		return 0, err
	}
	moved, err := s.cascade(ctx, from, to)
	if err == nil {
		return moved, nil
	}
	if rerr := s.persist(ctx, previous); rerr != nil {
		s.logger.Error("category_restore_failed",
			zap.String("from", from),
			zap.Error(rerr))
		return 0, errors.Join(err, rerr)
	}
	s.logger.Warn("category_change_rolled_back",
		zap.String("from", from),
		zap.String("to", to),
		zap.Error(err))
	return 0, err
}

func (s *CategoryStore) cascade(ctx context.Context, from, to string) (int, error) {
	if s.questions == nil {
		return 0, nil
	}
	n, err := s.questions.ReassignCategory(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign questions from %s: %w", from, err)
	}
	return n, nil
}

// load returns the stored list with Other guaranteed present. Callers must hold s.mu.
func (s *CategoryStore) load(ctx context.Context) ([]string, error) {
	raw, ok, err := s.kv.Get(ctx, CategoriesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	if !ok {
		return models.DefaultCategoryList(), nil
	}

	var labels []string
	if err := json.Unmarshal(raw, &labels); err != nil || labels == nil {
		s.logger.Warn("stored_categories_unreadable",
			zap.String("key", CategoriesKey),
			zap.Error(ErrStorageRead))
		return models.DefaultCategoryList(), nil
	}
	if !models.ContainsCategory(labels, models.CategoryOther) {
		labels = append(labels, models.CategoryOther)
	}
	return labels, nil
}

func (s *CategoryStore) persist(ctx context.Context, labels []string) error {
	data, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	if err := s.kv.Set(ctx, CategoriesKey, data); err != nil {
		return fmt.Errorf("failed to write categories: %w", err)
	}
	return nil
}
