package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/export"
	"github.com/benvon/interview-tracker/internal/models"
	"github.com/benvon/interview-tracker/internal/store"
)

// invalidImportMessage tells the user how to fix a rejected import
const invalidImportMessage = "The file is not a valid question export. Upload the JSON array produced by Export, or a CSV file with id and text columns."

// QuestionTransfer is the part of the question store used for import and export
type QuestionTransfer interface {
	ExportAll(ctx context.Context) ([]models.Question, error)
	ImportJSON(ctx context.Context, payload []byte) (store.ImportResult, error)
	ImportMerge(ctx context.Context, records []models.Question) (store.ImportResult, error)
}

// TransferHandler handles bulk import and export
type TransferHandler struct {
	questions  QuestionTransfer
	categories CategoryLister
	logger     *zap.Logger
	now        func() time.Time
}

// NewTransferHandler creates a new import/export handler
func NewTransferHandler(questions QuestionTransfer, categories CategoryLister, logger *zap.Logger) *TransferHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferHandler{questions: questions, categories: categories, logger: logger, now: time.Now}
}

// RegisterRoutes registers import and export routes on the API router
func (h *TransferHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/import", h.Import).Methods("POST")
	r.HandleFunc("/export", h.Export).Methods("GET")
}

// Import merges an uploaded JSON array or CSV file into the collection
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		result store.ImportResult
		err    error
	)
	if isCSV(r.Header.Get("Content-Type")) {
		var records []models.Question
		records, err = export.ParseCSV(r.Body)
		if err == nil {
			result, err = h.questions.ImportMerge(ctx, records)
		}
	} else {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		result, err = h.questions.ImportJSON(ctx, body)
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case err == nil:
	case errors.As(err, &maxBytesErr):
		respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Import file is too large")
		return
	case errors.Is(err, store.ErrInvalidFormat):
		h.logger.Info("import_rejected", zap.Error(err))
		respondJSONError(w, http.StatusBadRequest, "Bad Request", invalidImportMessage)
		return
	default:
		respondStoreError(w, h.logger, "import_questions", err)
		return
	}

	h.logger.Info("import_completed",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))
	respondJSON(w, http.StatusOK, result)
}

// Export downloads the full collection as JSON, CSV or Markdown
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	ctx := r.Context()
	questions, err := h.questions.ExportAll(ctx)
	if err != nil {
		respondStoreError(w, h.logger, "export_questions", err)
		return
	}
	categories, err := h.categories.GetAll(ctx)
	if err != nil {
		respondStoreError(w, h.logger, "export_questions", err)
		return
	}

	// Render fully before writing headers so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := export.Write(&buf, format, questions, categories); err != nil {
		respondStoreError(w, h.logger, "export_questions", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": format.FileName(h.now()),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("export_write_failed", zap.Error(err))
	}
}

func isCSV(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.EqualFold(mediaType, "text/csv")
}
