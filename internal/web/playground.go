package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/atelierhq/atelier/internal/playground"
	"github.com/atelierhq/atelier/internal/preview"
)

// playgroundHandler serves the playground workspace.
type playgroundHandler struct {
	session   *Session
	documents *preview.DocumentStore
	logger    *slog.Logger
}

// runResponse points at the assembled document.
type runResponse struct {
	DocumentID string `json:"documentId"`
	PreviewURL string `json:"previewUrl"`
}

func (h *playgroundHandler) run(w http.ResponseWriter, r *http.Request) {
	doc, err := h.session.Workspace.Run()
	if err != nil {
		var compileErr *playground.CompileError
		switch {
		case errors.As(err, &compileErr):
			writeError(w, http.StatusUnprocessableEntity, "compile_error", compileErr.Error(), h.logger)
		case errors.Is(err, playground.ErrNoCompiler):
			writeError(w, http.StatusUnprocessableEntity, "no_compiler", "no TypeScript compiler available", h.logger)
		default:
			h.logger.Error("playground run failed", "error", err)
			writeError(w, http.StatusInternalServerError, "run_failed", "failed to run playground", h.logger)
		}
		return
	}

	stored := h.documents.Put(doc, "text/html; charset=utf-8")
	writeJSON(w, http.StatusOK, runResponse{
		DocumentID: stored.ID,
		PreviewURL: "/preview/" + stored.ID,
	}, h.logger)
}

func (h *playgroundHandler) clear(w http.ResponseWriter, r *http.Request) {
	h.session.Workspace.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"}, h.logger)
}

func (h *playgroundHandler) buffers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.session.Workspace.Buffers(), h.logger)
	case http.MethodPut:
		var req map[playground.Buffer]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
			return
		}

		for buffer, content := range req {
			if err := h.session.Workspace.Set(buffer, content); err != nil {
				writeError(w, http.StatusBadRequest, "unknown_buffer", "unknown buffer: "+string(buffer), h.logger)
				return
			}
		}

		writeJSON(w, http.StatusOK, h.session.Workspace.Buffers(), h.logger)
	}
}
