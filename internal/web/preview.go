package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/atelierhq/atelier/internal/preview"
)

// previewHandler serves one-shot preview documents. Documents expire after
// the store's TTL, so a URL handed out by the panel or playground is only
// good for an immediate fetch.
type previewHandler struct {
	documents *preview.DocumentStore
	logger    *slog.Logger
}

func (h *previewHandler) get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.Get(r.PathValue("id"))
	if errors.Is(err, preview.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.logger.Error("failed to load preview document", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Sandboxed like an <iframe sandbox="allow-scripts">: scripts run, but
	// the document gets a unique origin and no navigation or form targets.
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.Header().Set("Content-Security-Policy", "sandbox allow-scripts")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write([]byte(doc.Content)); err != nil {
		h.logger.Debug("failed to write preview body", "error", err)
	}
}
