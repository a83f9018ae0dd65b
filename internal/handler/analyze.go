package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/c-playground/internal/analyze"
	"github.com/sakif/c-playground/internal/apperror"
	"github.com/sakif/c-playground/internal/service"
)

// AnalyzeHandler exposes the source scanner that powers the "explain my
// code" panel. It is pure text processing — nothing is compiled.
type AnalyzeHandler struct {
	logger *slog.Logger
}

// NewAnalyzeHandler creates an AnalyzeHandler.
func NewAnalyzeHandler(logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{logger: logger}
}

type analyzeRequest struct {
	Source string `json:"source"`
}

type analyzeResponse struct {
	*analyze.Report
	Explanation string `json:"explanation"`
}

// HandleAnalyze scans source and returns the structural report plus its
// rendered explanation.
//
// HTTP: POST /api/analyze
// Body: {"source": "..."}
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid analyze request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_json",
			Message: "request body must be valid JSON",
		})
		return
	}

	if req.Source == "" {
		writeError(w, apperror.ValidationFailed("source", "source code is required"))
		return
	}
	if len(req.Source) > service.MaxSourceLength {
		writeError(w, apperror.ValidationFailed("source", "source is too large to analyze"))
		return
	}

	report := analyze.Scan(req.Source)
	writeJSON(w, http.StatusOK, analyzeResponse{
		Report:      report,
		Explanation: report.Explanation(),
	})
}
