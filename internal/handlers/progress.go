package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/calebdray/storywalk/pkg/progression"
)

// ProgressHandler serves the combined progression snapshot and the full
// reset.
// Routes:
//
//	GET /v1/progress        - Snapshot of balance, solved and unlocked sets
//	POST /v1/progress/reset - Clear all progression and preference state
type ProgressHandler struct {
	service *progression.Service
	logger  *slog.Logger
}

func NewProgressHandler(service *progression.Service, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/progress")
	path = strings.Trim(path, "/")

	switch {
	case r.Method == http.MethodGet && path == "":
		writeJSON(w, h.logger, http.StatusOK, h.service.Snapshot(r.Context()))
	case r.Method == http.MethodPost && path == "reset":
		h.handleReset(w, r)
	default:
		h.logger.Warn("Method not allowed for progress endpoint", "method", r.Method, "path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed,
			"Method not allowed. Supported: GET /v1/progress, POST /v1/progress/reset")
	}
}

func (h *ProgressHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetProgress(r.Context()); err != nil {
		h.logger.Error("Failed to reset progress", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to reset progress")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.service.Snapshot(r.Context()))
}
