// Package app wires configuration into the stores, AI provider, job queue and
// processor shared by the server, worker and CLI binaries.
package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/config"
	"github.com/benvon/interview-tracker/internal/storage"
	"github.com/benvon/interview-tracker/internal/store"
)

// Stores bundles the persistence medium with the stores built over it
type Stores struct {
	KV         storage.Store
	Questions  *store.QuestionStore
	Categories *store.CategoryStore
}

// OpenStores opens the configured backend and builds the question and category
// stores over it. Close must be called on shutdown.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	kv, err := storage.Open(ctx, storage.Options{
		Backend:     cfg.StorageBackend,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisURL:    cfg.RedisURL,
		RedisPrefix: cfg.RedisKeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}
	return NewStores(kv, logger), nil
}

// NewStores builds the stores over an already opened backend
func NewStores(kv storage.Store, logger *zap.Logger) *Stores {
	questions := store.NewQuestionStore(kv, logger)
	categories := store.NewCategoryStore(kv, questions, logger)
	questions.SetCategorySource(categories)
	return &Stores{KV: kv, Questions: questions, Categories: categories}
}

// Ping checks the backend when it supports liveness checks
func (s *Stores) Ping(ctx context.Context) error {
	if p, ok := s.KV.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// RedisClient returns the backend's Redis client when storage runs on Redis
func (s *Stores) RedisClient() *redis.Client {
	if r, ok := s.KV.(*storage.Redis); ok {
		return r.Client()
	}
	return nil
}

// Close releases the backend
func (s *Stores) Close() error {
	return s.KV.Close()
}
