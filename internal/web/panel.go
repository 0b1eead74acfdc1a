package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/atelierhq/atelier/internal/artifact"
	"github.com/atelierhq/atelier/internal/panel"
	"github.com/atelierhq/atelier/internal/preview"
)

// panelHandler serves the artifact panel state machine.
type panelHandler struct {
	session   *Session
	documents *preview.DocumentStore
	logger    *slog.Logger
}

// panelResponse is the panel state plus, for preview and markdown views,
// a one-shot document URL. The document expires after the store's TTL; the
// client fetches it immediately.
type panelResponse struct {
	panel.State
	PreviewURL string `json:"previewUrl,omitempty"`
}

type openPanelRequest struct {
	ArtifactID string `json:"artifactId"`
}

type viewRequest struct {
	View panel.View `json:"view"`
}

func (h *panelHandler) open(w http.ResponseWriter, r *http.Request) {
	var req openPanelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	state, err := h.session.Panel.Open(req.ArtifactID)
	if errors.Is(err, artifact.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "artifact not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to open panel", "error", err)
		writeError(w, http.StatusInternalServerError, "open_failed", "failed to open panel", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(state), h.logger)
}

func (h *panelHandler) close(w http.ResponseWriter, r *http.Request) {
	state := h.session.Panel.Close()
	writeJSON(w, http.StatusOK, panelResponse{State: state}, h.logger)
}

func (h *panelHandler) fullscreen(w http.ResponseWriter, r *http.Request) {
	state, err := h.session.Panel.ToggleFullscreen()
	if errors.Is(err, panel.ErrPanelClosed) {
		writeError(w, http.StatusConflict, "panel_closed", "panel is closed", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to toggle fullscreen", "error", err)
		writeError(w, http.StatusInternalServerError, "fullscreen_failed", "failed to toggle fullscreen", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, panelResponse{State: state}, h.logger)
}

func (h *panelHandler) view(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}

	state, err := h.session.Panel.RequestView(req.View)
	switch {
	case errors.Is(err, panel.ErrUnknownView):
		writeError(w, http.StatusBadRequest, "unknown_view", "unknown panel view", h.logger)
		return
	case errors.Is(err, panel.ErrPanelClosed):
		writeError(w, http.StatusConflict, "panel_closed", "panel is closed", h.logger)
		return
	case err != nil:
		h.logger.Error("failed to switch view", "error", err)
		writeError(w, http.StatusInternalServerError, "view_failed", "failed to switch view", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, h.respond(state), h.logger)
}

func (h *panelHandler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, panelResponse{State: h.session.Panel.State()}, h.logger)
}

// respond attaches a fresh preview document when the current view needs one.
func (h *panelHandler) respond(state panel.State) panelResponse {
	resp := panelResponse{State: state}
	if !state.Open || h.documents == nil {
		return resp
	}

	a, err := h.session.Registry.Get(state.ArtifactID)
	if err != nil {
		return resp
	}

	if state.View == panel.ViewPreview {
		content := preview.MarkdownPreview(a.Code)
		if a.Type == artifact.TypeHTML {
			content = preview.WrapHTML(a.Code)
		}
		doc := h.documents.Put(content, "text/html; charset=utf-8")
		resp.PreviewURL = "/preview/" + doc.ID
	}
	return resp
}
