package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/benvon/interview-tracker/internal/mirror"
	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/queue"
	"github.com/benvon/interview-tracker/internal/services/ai"
	"github.com/benvon/interview-tracker/internal/storage"
	"github.com/benvon/interview-tracker/internal/store"
)

// stubProvider answers with canned text or fails with err
type stubProvider struct {
	mu     sync.Mutex
	answer string
	reply  string
	err    error
}

func (p *stubProvider) GenerateAnswer(_ context.Context, _ ai.AnswerRequest) (*ai.AnswerResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &ai.AnswerResponse{
		Text:    p.answer,
		Sources: []models.Source{{URI: "https://go.dev/ref/mem", Title: "The Go Memory Model"}},
	}, nil
}

func (p *stubProvider) Chat(_ context.Context, _ []ai.ChatMessage) (*ai.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return &ai.ChatResponse{Message: p.reply}, nil
}

func (p *stubProvider) fail(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

// recordingEnqueuer captures enqueued jobs
type recordingEnqueuer struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, job *queue.Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.jobs = append(e.jobs, job)
	return nil
}

func (e *recordingEnqueuer) enqueued() []*queue.Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*queue.Job(nil), e.jobs...)
}

// recordingObserver captures AI observations
type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) ObserveAI(kind, outcome string, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, kind+":"+outcome)
	o.mu.Unlock()
}

func (o *recordingObserver) observed() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.outcomes...)
}

// testAPI wires every handler over in-memory stores
type testAPI struct {
	router     *mux.Router
	questions  *store.QuestionStore
	categories *store.CategoryStore
	jobs       *recordingEnqueuer
	provider   *stubProvider
	observer   *recordingObserver
	session    *mirror.Session
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	kv := storage.NewMemory()
	questions := store.NewQuestionStore(kv, nil)
	categories := store.NewCategoryStore(kv, questions, nil)
	questions.SetCategorySource(categories)

	api := &testAPI{
		questions:  questions,
		categories: categories,
		jobs:       &recordingEnqueuer{},
		provider:   &stubProvider{answer: "[System Design] Shard by key with consistent hashing.", reply: "Consider sync.RWMutex."},
		observer:   &recordingObserver{},
		session:    mirror.NewSession(),
	}

	generator := ai.NewGenerator(api.provider, categories, nil)
	chat := ai.NewChatService(api.provider, nil)

	r := mux.NewRouter()
	v1 := r.PathPrefix("/api/v1").Subrouter()
	NewQuestionHandler(questions, categories, api.jobs, nil).RegisterRoutes(v1.PathPrefix("/questions").Subrouter())
	NewCategoryHandler(categories, nil).RegisterRoutes(v1.PathPrefix("/categories").Subrouter())
	NewAIHandler(generator, chat, api.observer, nil).RegisterRoutes(v1.PathPrefix("/ai").Subrouter())
	NewTransferHandler(questions, categories, nil).RegisterRoutes(v1)
	NewSyncHandler(api.session, mirror.NewScheduler(api.session, api.jobs, nil), nil).RegisterRoutes(v1)
	api.router = r

	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := newTestRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) doRaw(t *testing.T, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *testAPI) seed(t *testing.T, q models.Question) *models.Question {
	t.Helper()
	saved, err := a.questions.Save(context.Background(), q)
	if err != nil {
		t.Fatalf("Failed to seed question: %v", err)
	}
	return saved
}

// envelope is the decoded response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode response: %v (status %d)", err, rr.Code)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("Failed to decode data: %v", err)
		}
	}
	return env
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

var errProviderDown = errors.New("provider unavailable")

// Compile-time checks that the stores satisfy the handler interfaces
var (
	_ QuestionRepository = (*store.QuestionStore)(nil)
	_ QuestionTransfer   = (*store.QuestionStore)(nil)
	_ CategoryRepository = (*store.CategoryStore)(nil)
	_ AnswerGenerator    = (*ai.Generator)(nil)
	_ ChatSessions       = (*ai.ChatService)(nil)
)

var _ http.Handler = (*mux.Router)(nil)

func newRecorderFor(h http.HandlerFunc, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(method, path, nil))
	return rr
}
