package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/filter"
	"github.com/benvon/interview-tracker/internal/logger"
	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/queue"
	"github.com/benvon/interview-tracker/internal/validation"
)

// QuestionRepository is the part of the question store the handlers use
type QuestionRepository interface {
	GetAll(ctx context.Context) ([]models.Question, error)
	Get(ctx context.Context, id string) (*models.Question, error)
	Save(ctx context.Context, q models.Question) (*models.Question, error)
	Update(ctx context.Context, q models.Question) (*models.Question, error)
	Delete(ctx context.Context, id string) error
}

// CategoryLister supplies the current category labels
type CategoryLister interface {
	GetAll(ctx context.Context) ([]string, error)
}

// JobEnqueuer accepts background jobs
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// QuestionHandler handles question-related requests
type QuestionHandler struct {
	questions  QuestionRepository
	categories CategoryLister
	jobs       JobEnqueuer
	logger     *zap.Logger
	now        func() time.Time
}

// NewQuestionHandler creates a new question handler. jobs may be nil, in which case
// asynchronous answer generation is unavailable.
func NewQuestionHandler(questions QuestionRepository, categories CategoryLister, jobs JobEnqueuer, log *zap.Logger) *QuestionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuestionHandler{
		questions:  questions,
		categories: categories,
		jobs:       jobs,
		logger:     log,
		now:        time.Now,
	}
}

// RegisterRoutes registers question routes on the given router
// The router should already have the /questions prefix
func (h *QuestionHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListQuestions).Methods("GET")
	r.HandleFunc("", h.CreateQuestion).Methods("POST")
	r.HandleFunc("/{id}", h.GetQuestion).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateQuestion).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteQuestion).Methods("DELETE")
	r.HandleFunc("/{id}/generate", h.GenerateAnswer).Methods("POST")
}

// CreateQuestionRequest represents a create question request
type CreateQuestionRequest struct {
	Text           string `json:"text" validate:"required,not_blank,max=4000"`
	Answer         string `json:"answer"`
	Category       string `json:"category" validate:"category_label"`
	CompanyTag     string `json:"companyTag" validate:"max=100"`
	Drawing        string `json:"drawing"`
	GenerateAnswer bool   `json:"generateAnswer"`
}

// UpdateQuestionRequest represents a full or partial question update
type UpdateQuestionRequest struct {
	Text          *string          `json:"text,omitempty"`
	Answer        *string          `json:"answer,omitempty"`
	Category      *string          `json:"category,omitempty"`
	CompanyTag    *string          `json:"companyTag,omitempty"`
	Drawing       *string          `json:"drawing,omitempty"`
	IsAIGenerated *bool            `json:"isAiGenerated,omitempty"`
	Sources       *[]models.Source `json:"sources,omitempty"`
}

// ListQuestionsResponse represents a filtered question listing
type ListQuestionsResponse struct {
	Questions []models.Question `json:"questions"`
	Total     int               `json:"total"`
	Matched   int               `json:"matched"`
}

// GenerateAnswerResponse acknowledges an enqueued answer job
type GenerateAnswerResponse struct {
	JobID      string `json:"jobId"`
	QuestionID string `json:"questionId"`
}

// ListQuestions lists questions matching the category, q and date query parameters
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	date, err := filter.ParseDateFilter(query.Get("date"))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	all, err := h.questions.GetAll(ctx)
	if err != nil {
		respondStoreError(w, h.logger, "list_questions", err)
		return
	}
	known, err := h.categories.GetAll(ctx)
	if err != nil {
		respondStoreError(w, h.logger, "list_categories", err)
		return
	}

	matched := filter.Apply(all, filter.Criteria{
		Category:        query.Get("category"),
		Search:          query.Get("q"),
		Date:            date,
		KnownCategories: known,
	}, h.now())
	if matched == nil {
		matched = []models.Question{}
	}

	respondJSON(w, http.StatusOK, ListQuestionsResponse{
		Questions: matched,
		Total:     len(all),
		Matched:   len(matched),
	})
}

// CreateQuestion creates a question with a server-assigned id
func (h *QuestionHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Text = validation.SanitizeText(req.Text)
	if err := validation.ValidateQuestionText(req.Text); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	ctx := r.Context()
	saved, err := h.questions.Save(ctx, models.Question{
		ID:         uuid.NewString(),
		Text:       req.Text,
		Answer:     req.Answer,
		Category:   validation.SanitizeLabel(req.Category),
		CompanyTag: validation.SanitizeText(req.CompanyTag),
		Drawing:    req.Drawing,
		Sources:    []models.Source{},
	})
	if err != nil {
		respondStoreError(w, h.logger, "create_question", err)
		return
	}

	if req.GenerateAnswer && saved.Answer == "" {
		h.enqueueAnswer(ctx, saved)
	}

	respondJSON(w, http.StatusCreated, saved)
}

// GetQuestion returns a single question
func (h *QuestionHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.questions.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, h.logger, "get_question", err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

// UpdateQuestion applies the supplied fields to an existing question
func (h *QuestionHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	existing, err := h.questions.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, h.logger, "update_question", err)
		return
	}

	updated := existing.Clone()
	if req.Text != nil {
		text := validation.SanitizeText(*req.Text)
		if err := validation.ValidateQuestionText(text); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		updated.Text = text
	}
	if req.Answer != nil {
		updated.Answer = *req.Answer
		// A hand-edited answer is no longer the model's unless the client says so
		if req.IsAIGenerated == nil {
			updated.IsAIGenerated = false
		}
	}
	if req.Category != nil {
		if *req.Category != "" {
			if err := validation.ValidateCategoryLabel(*req.Category); err != nil {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
				return
			}
		}
		updated.Category = validation.SanitizeLabel(*req.Category)
	}
	if req.CompanyTag != nil {
		updated.CompanyTag = validation.SanitizeText(*req.CompanyTag)
	}
	if req.Drawing != nil {
		updated.Drawing = *req.Drawing
	}
	if req.IsAIGenerated != nil {
		updated.IsAIGenerated = *req.IsAIGenerated
	}
	if req.Sources != nil {
		updated.Sources = *req.Sources
	}

	saved, err := h.questions.Update(ctx, updated)
	if err != nil {
		respondStoreError(w, h.logger, "update_question", err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// DeleteQuestion removes a question. Deleting an unknown id succeeds.
func (h *QuestionHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.questions.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondStoreError(w, h.logger, "delete_question", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateAnswer enqueues background answer generation for a question
func (h *QuestionHandler) GenerateAnswer(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Background answer generation is not available")
		return
	}

	ctx := r.Context()
	q, err := h.questions.Get(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondStoreError(w, h.logger, "generate_answer", err)
		return
	}

	job := h.enqueueAnswer(ctx, q)
	if job == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to queue answer generation")
		return
	}
	respondJSON(w, http.StatusAccepted, GenerateAnswerResponse{
		JobID:      job.ID.String(),
		QuestionID: q.ID,
	})
}

func (h *QuestionHandler) enqueueAnswer(ctx context.Context, q *models.Question) *queue.Job {
	if h.jobs == nil {
		return nil
	}
	job := queue.NewAnswerGenerationJob(q.ID, q.Text)
	if err := h.jobs.Enqueue(ctx, job); err != nil {
		h.logger.Warn("answer_job_enqueue_failed",
			zap.String("question_id", logger.SanitizeID(q.ID)),
			zap.Error(err))
		return nil
	}
	h.logger.Debug("answer_job_enqueued",
		zap.String("question_id", logger.SanitizeID(q.ID)),
		zap.String("job_id", job.ID.String()))
	return job
}
