package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/models"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/storage"
)

// Converter turns a batch into a PDF written to w
type Converter interface {
	Convert(batch *models.Batch, w io.Writer) (*models.Result, error)
}

type Handler struct {
	workspaces     *storage.WorkspaceStore
	converter      Converter
	allowedTypes   []string
	maxUploadBytes int64
}

func New(workspaces *storage.WorkspaceStore, converter Converter, allowedTypes []string, maxUploadBytes int64) *Handler {
	return &Handler{
		workspaces:     workspaces,
		converter:      converter,
		allowedTypes:   allowedTypes,
		maxUploadBytes: maxUploadBytes,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "status", code)
	}
	h.writeJSON(w, errorResponse{Error: message}, code)
}

// contentTypeAllowed matches a declared upload content type against the
// allow-list. Entries ending in "/*" match any subtype.
func contentTypeAllowed(allowed []string, contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		switch {
		case a == "*/*" || a == mediaType:
			return true
		case strings.HasSuffix(a, "/*") && strings.HasPrefix(mediaType, strings.TrimSuffix(a, "*")):
			return true
		}
	}
	return false
}
