package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/interview-tracker/internal/logger"
	"github.com/benvon/interview-tracker/internal/mirror"
)

// SyncScheduler enqueues a mirror write for the attached directory
type SyncScheduler interface {
	Schedule(ctx context.Context) bool
}

// SyncHandler exposes the directory mirror session
type SyncHandler struct {
	session   *mirror.Session
	scheduler SyncScheduler
	logger    *zap.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(session *mirror.Session, scheduler SyncScheduler, log *zap.Logger) *SyncHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SyncHandler{session: session, scheduler: scheduler, logger: log}
}

// RegisterRoutes registers the sync routes on the API router
func (h *SyncHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/sync", h.Status).Methods("GET")
	r.HandleFunc("/sync", h.Attach).Methods("PUT")
	r.HandleFunc("/sync", h.Detach).Methods("DELETE")
}

// AttachRequest names the directory to mirror into
type AttachRequest struct {
	Directory string `json:"directory" validate:"required,not_blank"`
}

// SyncStatusResponse reports the session and whether a write was queued
type SyncStatusResponse struct {
	mirror.Status
	Scheduled bool `json:"scheduled"`
}

// Status reports the mirror session state
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SyncStatusResponse{Status: h.session.Status()})
}

// Attach points the mirror at a directory and queues an initial write
func (h *SyncHandler) Attach(w http.ResponseWriter, r *http.Request) {
	var req AttachRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.session.Acquire(req.Directory); err != nil {
		switch {
		case errors.Is(err, mirror.ErrReleased):
			respondJSONError(w, http.StatusConflict, "Conflict", err.Error())
		case errors.Is(err, mirror.ErrInvalidDirectory):
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		default:
			respondStoreError(w, h.logger, "attach_mirror", err)
		}
		return
	}

	status := h.session.Status()
	h.logger.Info("mirror_attached", zap.String("directory", logger.SanitizePath(status.Directory)))

	scheduled := false
	if h.scheduler != nil {
		scheduled = h.scheduler.Schedule(r.Context())
	}
	respondJSON(w, http.StatusOK, SyncStatusResponse{Status: status, Scheduled: scheduled})
}

// Detach stops mirroring
func (h *SyncHandler) Detach(w http.ResponseWriter, r *http.Request) {
	h.session.Detach()
	h.logger.Info("mirror_detached")
	respondJSON(w, http.StatusOK, SyncStatusResponse{Status: h.session.Status()})
}
