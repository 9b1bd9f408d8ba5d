package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/services/logviewer"
)

const defaultLogLines = 500

// LogsHandler exposes the server's log files to administrators
type LogsHandler struct {
	service *logviewer.Service
	logger  arbor.ILogger
}

// NewLogsHandler creates a log viewer handler
func NewLogsHandler(service *logviewer.Service, logger arbor.ILogger) *LogsHandler {
	return &LogsHandler{
		service: service,
		logger:  logger,
	}
}

// ListFilesHandler handles GET /admin/logs/files
func (h *LogsHandler) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	files, err := h.service.ListLogFiles()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list log files")
		WriteError(w, http.StatusInternalServerError, "failed to list log files")
		return
	}
	WriteJSON(w, http.StatusOK, files)
}

// ContentHandler handles GET /admin/logs/content?filename=&limit=&levels=warn,error
func (h *LogsHandler) ContentHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query()
	filename := query.Get("filename")
	if filename == "" {
		WriteError(w, http.StatusBadRequest, "filename is required")
		return
	}

	limit := defaultLogLines
	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 {
		limit = l
	}

	var levels []string
	if raw := query.Get("levels"); raw != "" {
		levels = strings.Split(raw, ",")
	}

	entries, err := h.service.GetLogContent(filename, limit, levels)
	if err != nil {
		h.logger.Error().Err(err).Str("filename", filename).Msg("Failed to read log file")
		WriteError(w, http.StatusInternalServerError, "failed to read log file")
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}
