package mirror

import (
	"context"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/queue"
)

// Enqueuer is the subset of queue.JobQueue the scheduler needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// Scheduler enqueues mirror sync jobs while the session is attached.
type Scheduler struct {
	session *Session
	queue   Enqueuer
	logger  *zap.Logger
}

// NewScheduler creates a scheduler for session.
func NewScheduler(session *Session, q Enqueuer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{session: session, queue: q, logger: logger}
}

// Schedule enqueues a sync of the attached directory. It reports whether a job was
// enqueued; failures are logged and swallowed.
func (s *Scheduler) Schedule(ctx context.Context) bool {
	dir, attached := s.session.Target()
	if !attached || s.queue == nil {
		return false
	}

	// Detach from request cancellation; the canonical write already succeeded.
	if err := s.queue.Enqueue(context.WithoutCancel(ctx), queue.NewMirrorSyncJob(dir)); err != nil {
		s.logger.Warn("mirror_sync_schedule_failed",
			zap.String("directory", dir),
			zap.NamedError("sync_error", ErrSyncWrite),
			zap.Error(err))
		return false
	}
	return true
}
