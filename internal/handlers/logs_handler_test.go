package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestLogsHandler_Validation(t *testing.T) {
	h := NewLogsHandler(nil, arbor.NewLogger())

	rec := recordHandler(h.ContentHandler, http.MethodGet, "/admin/logs/content")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "filename is required", decodeJSON(t, rec.Body.String())["error"])

	rec = recordHandler(h.ListFilesHandler, http.MethodPost, "/admin/logs/files")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
