package app

import (
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/mirror"
	"github.com/benvon/interview-tracker/internal/queue"
	"github.com/benvon/interview-tracker/internal/services/ai"
	"github.com/benvon/interview-tracker/internal/workers"
)

// ProcessorDeps are the collaborators of the job processor. Session is nil in the
// standalone worker, which writes whatever directory a job names.
type ProcessorDeps struct {
	Stores    *Stores
	Generator *ai.Generator
	Session   *mirror.Session
	Requeue   workers.Enqueuer
	Observer  workers.JobObserver
}

// NewProcessor builds a processor with the mirror and answer handlers registered
func NewProcessor(deps ProcessorDeps, logger *zap.Logger) *workers.Processor {
	p := workers.NewProcessor(deps.Requeue, logger)
	p.Register(queue.JobTypeMirrorSync, workers.NewMirrorProcessor(deps.Stores.Questions, deps.Session, logger))

	generator := deps.Generator
	if generator == nil {
		generator = ai.NewGenerator(nil, deps.Stores.Categories, logger)
	}
	p.Register(queue.JobTypeAnswerGeneration, workers.NewAnswerProcessor(generator, deps.Stores.Questions, logger))

	if deps.Observer != nil {
		p.SetObserver(deps.Observer)
	}
	return p
}
