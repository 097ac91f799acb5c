package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/config"
	"github.com/benvon/interview-tracker/internal/queue"
)

// Broker connection retry schedule; RabbitMQ often starts after the API.
const (
	brokerMaxRetries   = 10
	brokerInitialDelay = 2 * time.Second
	brokerMaxDelay     = 30 * time.Second
)

// dialBroker is replaced in tests
var dialBroker = func(url string, logger *zap.Logger) (queue.JobQueue, error) {
	return queue.NewRabbitMQQueue(url, logger)
}

// ConnectQueue returns a RabbitMQ queue when RABBITMQ_URL is set, retrying with
// exponential backoff, and the bounded in-process queue otherwise.
func ConnectQueue(ctx context.Context, cfg *config.Config, logger *zap.Logger) (queue.JobQueue, error) {
	if !cfg.UseBroker() {
		logger.Info("using_in_process_queue", zap.Int("size", cfg.QueueSize))
		return queue.NewMemoryQueue(cfg.QueueSize), nil
	}

	var lastErr error
	for attempt := 0; attempt < brokerMaxRetries; attempt++ {
		q, err := dialBroker(cfg.RabbitMQURL, logger)
		if err == nil {
			logger.Info("connected_to_rabbitmq")
			return q, nil
		}
		lastErr = err

		delay := backoffDelay(attempt)
		logger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", brokerMaxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("failed to connect to rabbitmq after %d attempts: %w", brokerMaxRetries, lastErr)
}

func backoffDelay(attempt int) time.Duration {
	delay := brokerInitialDelay * time.Duration(1<<uint(attempt))
	if delay > brokerMaxDelay {
		delay = brokerMaxDelay
	}
	return delay
}
