package workers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/mirror"
	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/queue"
)

// QuestionReader reads the full question collection
type QuestionReader interface {
	ExportAll(ctx context.Context) ([]models.Question, error)
}

// MirrorProcessor handles mirror_sync jobs
type MirrorProcessor struct {
	questions QuestionReader
	writer    *mirror.Writer
	session   *mirror.Session
	logger    *zap.Logger
}

// NewMirrorProcessor creates a mirror processor. When session is non-nil, jobs for a
// directory the session is no longer attached to are skipped.
func NewMirrorProcessor(questions QuestionReader, session *mirror.Session, logger *zap.Logger) *MirrorProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MirrorProcessor{
		questions: questions,
		writer:    mirror.NewWriter(),
		session:   session,
		logger:    logger,
	}
}

// Handle writes the current collection to the job's directory. Write failures are
// logged and the job is considered done.
func (m *MirrorProcessor) Handle(ctx context.Context, job *queue.Job) error {
	dir := job.MetadataString(queue.MetaDirectory)
	if dir == "" {
		return Permanent(errors.New("mirror sync job has no directory"))
	}

	if m.session != nil {
		target, attached := m.session.Target()
		if !attached || target != dir {
			m.logger.Debug("mirror_sync_skipped",
				zap.String("directory", dir),
				zap.String("state", string(m.session.State())))
			return nil
		}
	}

	questions, err := m.questions.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to read questions: %w", err)
	}

	if err := m.writer.Write(ctx, dir, questions); err != nil {
		m.logger.Warn("mirror_sync_failed",
			zap.String("directory", dir),
			zap.Error(err))
		return nil
	}

	m.logger.Debug("mirror_synced",
		zap.String("directory", dir),
		zap.Int("count", len(questions)))
	return nil
}
