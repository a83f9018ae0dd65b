// Package handler contains the HTTP layer: parse the request, call a
// service, write the response. No business logic lives here.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/c-playground/internal/service"
)

// RunHandler exposes compile-and-run over HTTP.
type RunHandler struct {
	runs   *service.RunService
	logger *slog.Logger
}

// NewRunHandler creates a RunHandler.
func NewRunHandler(runs *service.RunService, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		runs:   runs,
		logger: logger,
	}
}

type runRequest struct {
	Source string `json:"source"`
	Stdin  string `json:"stdin"`
}

type resumeRequest struct {
	SessionID string `json:"sessionId"`
	Input     string `json:"input"`
}

// HandleRun compiles and executes a program.
//
// HTTP: POST /api/run
// Body: {"source": "...", "stdin": "..."}
//
// The response always carries success/output/error; a paused run adds
// requiresInput=true and a sessionId for /api/run/input.
func (h *RunHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid run request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_json",
			Message: "request body must be valid JSON",
		})
		return
	}

	resp, err := h.runs.CompileAndRun(r.Context(), req.Source, req.Stdin)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleResume feeds one line of input to a paused run.
//
// HTTP: POST /api/run/input
// Body: {"sessionId": "...", "input": "..."}
//
// Unknown and already-consumed session IDs return 404.
func (h *RunHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid resume request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_json",
			Message: "request body must be valid JSON",
		})
		return
	}

	resp, err := h.runs.Resume(r.Context(), req.SessionID, req.Input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
