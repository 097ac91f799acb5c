package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/services/ai"
	"github.com/benvon/interview-tracker/internal/store"
	"github.com/benvon/interview-tracker/internal/validation"
)

// maxErrorMessageLength bounds messages returned to clients
const maxErrorMessageLength = 200

var errEmptyBody = errors.New("request body is empty")

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage truncates messages so internal detail does not leak
func sanitizeErrorMessage(message string) string {
	if len(message) > maxErrorMessageLength {
		return message[:maxErrorMessageLength] + "..."
	}
	return message
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// decodeJSON decodes the request body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
		case errors.Is(err, io.EOF):
			respondJSONError(w, http.StatusBadRequest, "Bad Request", errEmptyBody.Error())
		default:
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		}
		return false
	}

	if err := validation.Validate.Struct(dst); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", validation.Describe(err))
		return false
	}
	return true
}

// readBody reads the full request body, answering 413 when the size limit is hit
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large",
				fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return nil, false
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Failed to read request body")
		return nil, false
	}
	return body, true
}

// respondStoreError maps store and AI errors onto HTTP statuses
func respondStoreError(w http.ResponseWriter, logger *zap.Logger, action string, err error) {
	switch {
	case errors.Is(err, store.ErrQuestionNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", "Question not found")
	case errors.Is(err, store.ErrInvalidQuestion), errors.Is(err, store.ErrEmptyCategory):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, store.ErrInvalidFormat):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, store.ErrCategoryExists), errors.Is(err, store.ErrProtectedCategory):
		respondJSONError(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ai.ErrEmptyQuestion), errors.Is(err, ai.ErrEmptyMessage):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, ai.ErrSessionNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ai.ErrExternalService):
		logger.Warn(action+"_failed", zap.Error(err))
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "The AI service could not produce an answer. Please try again.")
	default:
		logger.Error(action+"_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to "+strings.ReplaceAll(action, "_", " "))
	}
}
