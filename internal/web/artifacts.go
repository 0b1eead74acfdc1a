package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/atelierhq/atelier/internal/artifact"
	"github.com/atelierhq/atelier/internal/panel"
)

// artifactHandler serves artifact lookup, clipboard copy, and download.
type artifactHandler struct {
	session *Session
	copier  panel.Copier
	logger  *slog.Logger
}

// artifactResponse is the JSON projection of an artifact.
type artifactResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Language  string `json:"language"`
	Title     string `json:"title"`
	Code      string `json:"code"`
	CreatedAt string `json:"createdAt"`
}

func (h *artifactHandler) get(w http.ResponseWriter, r *http.Request) {
	a, err := h.session.Registry.Get(r.PathValue("id"))
	if errors.Is(err, artifact.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "artifact not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to load artifact", "error", err)
		writeError(w, http.StatusInternalServerError, "get_failed", "failed to load artifact", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, artifactResponse{
		ID:        a.ID,
		Type:      string(a.Type),
		Language:  a.Language,
		Title:     a.Title,
		Code:      a.Code,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}, h.logger)
}

func (h *artifactHandler) copy(w http.ResponseWriter, r *http.Request) {
	err := h.session.Panel.CopyArtifact(r.PathValue("id"), h.copier)
	if errors.Is(err, artifact.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "artifact not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Warn("clipboard copy failed", "error", err)
		writeError(w, http.StatusBadGateway, "copy_failed", "clipboard unavailable", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "copied"}, h.logger)
}

func (h *artifactHandler) download(w http.ResponseWriter, r *http.Request) {
	d, err := h.session.Panel.DownloadArtifact(r.PathValue("id"))
	if errors.Is(err, artifact.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "artifact not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to build download", "error", err)
		writeError(w, http.StatusInternalServerError, "download_failed", "failed to build download", h.logger)
		return
	}

	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Content)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write([]byte(d.Content)); err != nil {
		h.logger.Debug("failed to write download body", "error", err)
	}
}
