package ai

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig tunes the circuit breaker around a provider
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns settings suited to a remote LLM API
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      2,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// BreakerProvider wraps an AIProvider in a circuit breaker so a failing upstream is not
// hammered by every request
type BreakerProvider struct {
	next AIProvider
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps next
func NewBreakerProvider(next AIProvider, cfg BreakerConfig, logger *zap.Logger) *BreakerProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("ai_circuit_breaker_state_changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellations say nothing about upstream health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerProvider{next: next, cb: cb}
}

// GenerateAnswer calls the wrapped provider unless the breaker is open
func (b *BreakerProvider) GenerateAnswer(ctx context.Context, req AnswerRequest) (*AnswerResponse, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.GenerateAnswer(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return out.(*AnswerResponse), nil
}

// Chat calls the wrapped provider unless the breaker is open
func (b *BreakerProvider) Chat(ctx context.Context, messages []ChatMessage) (*ChatResponse, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.Chat(ctx, messages)
	})
	if err != nil {
		return nil, err
	}
	return out.(*ChatResponse), nil
}

// State returns the breaker state name
func (b *BreakerProvider) State() string {
	return b.cb.State().String()
}
