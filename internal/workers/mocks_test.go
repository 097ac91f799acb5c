package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/queue"
	"github.com/benvon/interview-tracker/internal/services/ai"
	"github.com/benvon/interview-tracker/internal/store"
)

// mockMessage is a mock implementation of queue.MessageInterface
type mockMessage struct {
	job      *queue.Job
	acked    bool
	nacked   bool
	requeued bool
	ackErr   error
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return m.ackErr
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeued = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

// mockEnqueuer records enqueued jobs
type mockEnqueuer struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

func (m *mockEnqueuer) Enqueue(_ context.Context, job *queue.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

// mockObserver records outcomes
type mockObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *mockObserver) ObserveJob(_, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

// mockGenerator is a mock implementation of AnswerGenerator
type mockGenerator struct {
	generateFunc func(ctx context.Context, text string) (*ai.GeneratedAnswer, error)
	calls        int
}

func (m *mockGenerator) Generate(ctx context.Context, text string) (*ai.GeneratedAnswer, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, text)
	}
	return &ai.GeneratedAnswer{
		Answer:   "Generated for " + text,
		Category: "NLP",
		Sources:  []models.Source{{URI: "https://example.com"}},
	}, nil
}

// mockQuestions is an in-memory QuestionReader and QuestionUpdater
type mockQuestions struct {
	mu        sync.Mutex
	questions map[string]models.Question
	order     []string
	getErr    error
	saved     []models.Question
}

func newMockQuestions(qs ...models.Question) *mockQuestions {
	m := &mockQuestions{questions: make(map[string]models.Question)}
	for _, q := range qs {
		m.questions[q.ID] = q
		m.order = append(m.order, q.ID)
	}
	return m
}

func (m *mockQuestions) ExportAll(context.Context) ([]models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make([]models.Question, 0, len(m.order))
	for _, id := range m.order {
		if q, ok := m.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *mockQuestions) Get(_ context.Context, id string) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	q, ok := m.questions[id]
	if !ok {
		return nil, store.ErrQuestionNotFound
	}
	return &q, nil
}

func (m *mockQuestions) Update(_ context.Context, q models.Question) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[q.ID]; !ok {
		return nil, store.ErrQuestionNotFound
	}
	m.questions[q.ID] = q
	m.saved = append(m.saved, q)
	return &q, nil
}

func (m *mockQuestions) set(q models.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = q
}

func (m *mockQuestions) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.questions, id)
}

var errTransient = errors.New("connection reset")
