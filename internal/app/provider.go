package app

import (
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/config"
	"github.com/benvon/interview-tracker/internal/services/ai"
)

// NewAIProvider creates the configured provider wrapped in a circuit breaker. It
// returns nil without error when AI is disabled.
func NewAIProvider(cfg *config.Config, logger *zap.Logger, debugMode bool) (ai.AIProvider, error) {
	if !cfg.AIEnabled() {
		return nil, nil
	}

	provider, err := ai.DefaultRegistry(logger, debugMode).GetProvider(cfg.AIProvider, cfg.ProviderConfig())
	if err != nil {
		return nil, err
	}

	return ai.NewBreakerProvider(provider, ai.DefaultBreakerConfig(cfg.AIProvider), logger), nil
}
