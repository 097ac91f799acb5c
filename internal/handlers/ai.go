package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/services/ai"
	"github.com/benvon/interview-tracker/internal/telemetry"
	"github.com/benvon/interview-tracker/internal/validation"
)

// AI call outcomes reported to the observer
const (
	AIOutcomeSuccess  = "success"
	AIOutcomeError    = "error"
	AIOutcomeDegraded = "degraded"
)

// AnswerGenerator produces a categorised answer without persisting it
type AnswerGenerator interface {
	Generate(ctx context.Context, questionText string) (*ai.GeneratedAnswer, error)
}

// ChatSessions manages refinement conversations
type ChatSessions interface {
	CreateSession(questionText, currentAnswer string) *ai.ChatSession
	Send(ctx context.Context, id, message string) (*ai.ChatReply, error)
	CloseSession(id string)
}

// AIObserver records AI call outcomes and latency
type AIObserver interface {
	ObserveAI(kind, outcome string, elapsed time.Duration)
}

// AIHandler handles answer generation and chat requests
type AIHandler struct {
	generator AnswerGenerator
	chat      ChatSessions
	observer  AIObserver
	logger    *zap.Logger
}

// NewAIHandler creates a new AI handler. observer may be nil.
func NewAIHandler(generator AnswerGenerator, chat ChatSessions, observer AIObserver, logger *zap.Logger) *AIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIHandler{generator: generator, chat: chat, observer: observer, logger: logger}
}

// RegisterRoutes registers AI routes
// The router should already have the /ai prefix
func (h *AIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/answer", h.GenerateAnswer).Methods("POST")
	r.HandleFunc("/chat", h.StartChat).Methods("POST")
	r.HandleFunc("/chat/{id}/messages", h.SendMessage).Methods("POST")
	r.HandleFunc("/chat/{id}", h.CloseChat).Methods("DELETE")
}

// AnswerRequest asks for an answer to a question
type AnswerRequest struct {
	Question string `json:"question" validate:"required,not_blank,max=4000"`
}

// StartChatRequest opens a chat about a question and its current answer
type StartChatRequest struct {
	Question string `json:"question" validate:"required,not_blank,max=4000"`
	Answer   string `json:"answer"`
}

// ChatMessageRequest represents a chat message request
type ChatMessageRequest struct {
	Message string `json:"message" validate:"required,not_blank,max=4000"`
}

// ChatSessionResponse describes a newly opened chat
type ChatSessionResponse struct {
	ID           string    `json:"id"`
	QuestionText string    `json:"questionText"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GenerateAnswer answers a question synchronously. Nothing is saved.
func (h *AIHandler) GenerateAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, span := telemetry.StartSpan(r.Context(), "ai.generate_answer",
		attribute.Int("question.length", len(req.Question)))
	start := time.Now()
	answer, err := h.generator.Generate(ctx, validation.SanitizeText(req.Question))
	telemetry.EndSpan(span, err)
	if err != nil {
		h.observe("answer", AIOutcomeError, start)
		respondStoreError(w, h.logger, "generate_answer", err)
		return
	}
	h.observe("answer", AIOutcomeSuccess, start)

	respondJSON(w, http.StatusOK, answer)
}

// StartChat opens a chat session
func (h *AIHandler) StartChat(w http.ResponseWriter, r *http.Request) {
	var req StartChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session := h.chat.CreateSession(validation.SanitizeText(req.Question), req.Answer)
	h.logger.Debug("chat_session_started", zap.String("session_id", session.ID))

	respondJSON(w, http.StatusCreated, ChatSessionResponse{
		ID:           session.ID,
		QuestionText: session.QuestionText,
		CreatedAt:    session.CreatedAt,
	})
}

// SendMessage sends a message in the chat session. Provider failures come back as a
// degraded reply with status 200.
func (h *AIHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := mux.Vars(r)["id"]
	ctx, span := telemetry.StartSpan(r.Context(), "ai.chat", attribute.String("chat.session_id", id))
	start := time.Now()
	reply, err := h.chat.Send(ctx, id, req.Message)
	telemetry.EndSpan(span, err)
	if err != nil {
		respondStoreError(w, h.logger, "send_chat_message", err)
		return
	}

	outcome := AIOutcomeSuccess
	if reply.Degraded {
		outcome = AIOutcomeDegraded
	}
	h.observe("chat", outcome, start)

	respondJSON(w, http.StatusOK, reply)
}

// CloseChat discards a chat session. Late replies for it are dropped.
func (h *AIHandler) CloseChat(w http.ResponseWriter, r *http.Request) {
	h.chat.CloseSession(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (h *AIHandler) observe(kind, outcome string, start time.Time) {
	if h.observer != nil {
		h.observer.ObserveAI(kind, outcome, time.Since(start))
	}
}
