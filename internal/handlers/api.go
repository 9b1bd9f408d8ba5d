package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fundscope/internal/common"
	"github.com/ternarybob/fundscope/internal/market"
	"github.com/ternarybob/fundscope/internal/report"
)

type APIHandler struct {
	analyzer Analyzer
	logger   arbor.ILogger
}

func NewAPIHandler(analyzer Analyzer, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		analyzer: analyzer,
		logger:   logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"full":    common.GetFullVersion(),
	})
}

// HealthHandler returns health check status
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// AnalyzeHandler returns the analysis of ?ticker= as JSON
func (h *APIHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	result, ok := h.analyze(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// ReportHandler returns the analysis of ?ticker= in the requested ?format=
func (h *APIHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = report.FormatMarkdown
	}
	contentType, ok := reportContentTypes[format]
	if !ok {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
		return
	}

	result, ok := h.analyze(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, result); err != nil {
		h.logger.Error().Err(err).Str("format", format).Msg("Failed to render report")
		WriteError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", contentType)
	if format == report.FormatPDF {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, result.UsedTicker))
	}
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

var reportContentTypes = map[string]string{
	report.FormatText:     "text/plain; charset=utf-8",
	report.FormatMarkdown: "text/markdown; charset=utf-8",
	report.FormatJSON:     "application/json",
	report.FormatYAML:     "application/yaml",
	report.FormatPDF:      "application/pdf",
}

func (h *APIHandler) analyze(w http.ResponseWriter, r *http.Request) (*market.AnalysisResult, bool) {
	ticker := strings.TrimSpace(r.URL.Query().Get("ticker"))
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker parameter is required")
		return nil, false
	}

	result, err := h.analyzer.Analyze(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, market.ErrEmptyInput) {
			WriteError(w, http.StatusBadRequest, "ticker parameter is required")
			return nil, false
		}
		h.logger.Error().
			Err(err).
			Str("ticker", ticker).
			Msg("API analysis failed")
		WriteError(w, http.StatusInternalServerError, "failed to analyze")
		return nil, false
	}
	return result, true
}

// NotFoundHandler handles unknown API paths with a JSON 404
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
