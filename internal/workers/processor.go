package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/queue"
	"github.com/benvon/interview-tracker/internal/services/ai"
)

// Job outcomes reported to the observer
const (
	OutcomeSuccess      = "success"
	OutcomeRetried      = "retried"
	OutcomeDeadLettered = "dead_lettered"
	OutcomeDeferred     = "deferred"
)

// Handler processes one job type
type Handler interface {
	Handle(ctx context.Context, job *queue.Job) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, job *queue.Job) error

// Handle calls f
func (f HandlerFunc) Handle(ctx context.Context, job *queue.Job) error {
	return f(ctx, job)
}

// Enqueuer re-enqueues delayed retries
type Enqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// JobObserver records job outcomes, typically as metrics
type JobObserver interface {
	ObserveJob(jobType, outcome string, elapsed time.Duration)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying; the job goes straight to the DLQ
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Processor dispatches queued jobs to their handlers and applies the retry policy
type Processor struct {
	handlers map[queue.JobType]Handler
	requeue  Enqueuer
	observer JobObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewProcessor creates a processor. requeue is used for delayed retries and may be nil,
// in which case failed jobs are nacked back to the queue.
func NewProcessor(requeue Enqueuer, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		handlers: make(map[queue.JobType]Handler),
		requeue:  requeue,
		logger:   logger,
		now:      time.Now,
	}
}

// Register sets the handler for a job type
func (p *Processor) Register(jobType queue.JobType, h Handler) {
	p.handlers[jobType] = h
}

// SetObserver sets the outcome observer
func (p *Processor) SetObserver(o JobObserver) {
	p.observer = o
}

// ProcessJob processes a job based on its type
func (p *Processor) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	if job == nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			p.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return errors.New("message carries no job")
	}

	if job.IsExpired() {
		p.deadLetter(msg, job)
		p.observe(job, OutcomeDeadLettered, 0)
		return fmt.Errorf("job %s expired at %v", job.ID, job.NotAfter)
	}

	// Delivered early (broker without delayed exchange); put it back until due
	if !job.ShouldProcess() {
		return p.deferJob(ctx, msg, job)
	}

	handler, ok := p.handlers[job.Type]
	if !ok {
		p.deadLetter(msg, job)
		p.observe(job, OutcomeDeadLettered, 0)
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	start := p.now()
	if err := handler.Handle(ctx, job); err != nil {
		return p.handleJobError(ctx, msg, job, err, p.now().Sub(start))
	}
	p.observe(job, OutcomeSuccess, p.now().Sub(start))

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	return nil
}

func (p *Processor) deferJob(ctx context.Context, msg queue.MessageInterface, job *queue.Job) error {
	p.logger.Debug("job_not_ready",
		zap.String("job_id", job.ID.String()),
		zap.Timep("not_before", job.NotBefore))

	if p.requeue != nil {
		if err := p.requeue.Enqueue(ctx, job); err == nil {
			if ackErr := msg.Ack(); ackErr != nil {
				p.logger.Warn("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
			}
			p.observe(job, OutcomeDeferred, 0)
			return nil
		}
	}
	if nackErr := msg.Nack(true); nackErr != nil {
		return fmt.Errorf("failed to return early job: %w", nackErr)
	}
	p.observe(job, OutcomeDeferred, 0)
	return nil
}

// handleJobError retries with a delay chosen from the error class, or dead-letters the
// job once its retries are spent
func (p *Processor) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error, elapsed time.Duration) error {
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.Error(err),
	}

	if IsPermanent(err) || !job.CanRetry() {
		p.logger.Error("job_failed", fields...)
		p.deadLetter(msg, job)
		p.observe(job, OutcomeDeadLettered, elapsed)
		return fmt.Errorf("job failed (no retry): %w", err)
	}

	switch {
	case ai.IsQuotaError(err):
		p.logger.Warn("job_quota_exceeded", fields...)
	case ai.IsRateLimitError(err):
		p.logger.Warn("job_rate_limited", fields...)
	default:
		p.logger.Warn("job_failed_will_retry", fields...)
	}

	delay := ai.GetRetryDelay(err, job.RetryCount)
	notBefore := p.now().Add(delay)
	retry := *job
	retry.RetryCount = job.RetryCount + 1
	retry.NotBefore = &notBefore
	p.observe(job, OutcomeRetried, elapsed)

	if p.requeue != nil {
		enqueueErr := p.requeue.Enqueue(ctx, &retry)
		if enqueueErr == nil {
			if ackErr := msg.Ack(); ackErr != nil {
				p.logger.Warn("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
			}
			p.logger.Info("job_rescheduled",
				zap.String("job_id", job.ID.String()),
				zap.Time("not_before", notBefore),
				zap.Duration("delay", delay))
			return nil
		}
		p.logger.Warn("job_reschedule_failed", zap.String("job_id", job.ID.String()), zap.Error(enqueueErr))
	}

	// Fallback: immediate redelivery
	job.IncrementRetry()
	if nackErr := msg.Nack(true); nackErr != nil {
		p.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (will retry): %w", err)
}

func (p *Processor) deadLetter(msg queue.MessageInterface, job *queue.Job) {
	if nackErr := msg.Nack(false); nackErr != nil {
		p.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
	}
}

func (p *Processor) observe(job *queue.Job, outcome string, elapsed time.Duration) {
	if p.observer != nil {
		p.observer.ObserveJob(string(job.Type), outcome, elapsed)
	}
}

// Run consumes q until ctx is cancelled or the queue closes
func (p *Processor) Run(ctx context.Context, q queue.JobQueue, prefetch int) error {
	msgChan, errChan, err := q.Consume(ctx, prefetch)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	p.logger.Info("worker_started", zap.Int("prefetch", prefetch))
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			p.logger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgChan:
			if !ok {
				p.logger.Info("message_channel_closed")
				return nil
			}
			if err := p.ProcessJob(ctx, msg); err != nil {
				fields := []zap.Field{zap.Error(err)}
				if job := msg.GetJob(); job != nil {
					fields = append(fields,
						zap.String("job_id", job.ID.String()),
						zap.String("job_type", string(job.Type)))
				}
				p.logger.Error("job_processing_failed", fields...)
			}
		}
	}
}
