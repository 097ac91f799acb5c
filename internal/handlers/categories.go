package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/logger"
	"github.com/benvon/interview-tracker/internal/validation"
)

// CategoryRepository is the category store as seen by the handlers
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]string, error)
	Add(ctx context.Context, label string) error
	Rename(ctx context.Context, oldLabel, newLabel string) error
	Remove(ctx context.Context, label string) error
}

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categories CategoryRepository
	logger     *zap.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories CategoryRepository, log *zap.Logger) *CategoryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CategoryHandler{categories: categories, logger: log}
}

// RegisterRoutes registers category routes on the given router
// The router should already have the /categories prefix. The label pattern spans
// slashes so an escaped label such as CI%2FCD reaches the handler whole.
func (h *CategoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListCategories).Methods("GET")
	r.HandleFunc("", h.AddCategory).Methods("POST")
	r.HandleFunc("/{label:.+}", h.RenameCategory).Methods("PUT")
	r.HandleFunc("/{label:.+}", h.RemoveCategory).Methods("DELETE")
}

// CategoryRequest carries a category label
type CategoryRequest struct {
	Label string `json:"label" validate:"required,not_blank,category_label"`
}

// ListCategories returns the ordered category labels
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, http.StatusOK)
}

// AddCategory appends a new category label
func (h *CategoryHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	label := validation.SanitizeLabel(req.Label)
	if err := h.categories.Add(r.Context(), label); err != nil {
		respondStoreError(w, h.logger, "add_category", err)
		return
	}
	h.logger.Info("category_added", zap.String("label", logger.SanitizeLabel(label)))
	h.respondList(w, r, http.StatusCreated)
}

// RenameCategory renames the label in the path to the label in the body. Questions
// using the old label follow the rename.
func (h *CategoryHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	oldLabel := mux.Vars(r)["label"]
	newLabel := validation.SanitizeLabel(req.Label)
	if err := h.categories.Rename(r.Context(), oldLabel, newLabel); err != nil {
		respondStoreError(w, h.logger, "rename_category", err)
		return
	}
	h.respondList(w, r, http.StatusOK)
}

// RemoveCategory removes a label. Its questions move to Other.
func (h *CategoryHandler) RemoveCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Remove(r.Context(), mux.Vars(r)["label"]); err != nil {
		respondStoreError(w, h.logger, "remove_category", err)
		return
	}
	h.respondList(w, r, http.StatusOK)
}

func (h *CategoryHandler) respondList(w http.ResponseWriter, r *http.Request, status int) {
	labels, err := h.categories.GetAll(r.Context())
	if err != nil {
		respondStoreError(w, h.logger, "list_categories", err)
		return
	}
	respondJSON(w, status, labels)
}
