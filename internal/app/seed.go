package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/seed"
	"github.com/benvon/interview-tracker/internal/store"
)

// ApplySeed merges the project seed from source into the question store. An empty
// policy falls back to if_empty.
func ApplySeed(ctx context.Context, stores *Stores, source, policy string, logger *zap.Logger) (store.ImportResult, error) {
	p, err := seed.ParsePolicy(policy)
	if err != nil {
		return store.ImportResult{}, err
	}

	result, err := seed.Apply(ctx, seed.NewLoader(source, logger), stores.Questions, p)
	if err != nil {
		return store.ImportResult{}, err
	}

	logger.Info("seed_applied",
		zap.String("policy", string(p)),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
