package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/atelierhq/atelier/internal/chat"
	"github.com/atelierhq/atelier/internal/observability"
	"github.com/atelierhq/atelier/internal/render"
	"github.com/atelierhq/atelier/internal/webhook"
)

// maxAttachmentSize caps a single attached file.
const maxAttachmentSize = 10 << 20 // 10 MB

// maxSendBodySize caps the whole send-message request body.
const maxSendBodySize = 32 << 20

// chatHandler serves the chat CRUD and message-sending endpoints.
type chatHandler struct {
	store    chat.Store
	session  *Session
	settings *settingsManager
	logger   *slog.Logger
}

// renderedMessage is a stored message plus its rendered HTML.
type renderedMessage struct {
	chat.Message
	HTML string `json:"html"`
}

// chatListResponse is the sidebar payload.
type chatListResponse struct {
	Chats        []chat.Summary `json:"chats"`
	ActiveChatID string         `json:"activeChatId"`
}

// chatResponse is a full chat with rendered messages.
type chatResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Messages  []renderedMessage `json:"messages"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

// sendRequest is the body of POST /api/v1/chats/{id}/messages.
type sendRequest struct {
	Content string           `json:"content"`
	Files   []sendAttachment `json:"files,omitempty"`
}

// sendAttachment carries one attached file. Data is base64 in JSON.
type sendAttachment struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Size      int64  `json:"size"`
	Data      []byte `json:"data"`
}

// sendResponse returns both sides of a completed exchange.
type sendResponse struct {
	UserMessage      renderedMessage `json:"userMessage"`
	AssistantMessage renderedMessage `json:"assistantMessage"`
	Title            string          `json:"title"`
}

func (h *chatHandler) list(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list chats", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "failed to list chats", h.logger)
		return
	}

	active, err := h.store.Active(r.Context())
	if err != nil {
		h.logger.Error("failed to resolve active chat", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "failed to list chats", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, chatListResponse{Chats: summaries, ActiveChatID: active}, h.logger)
}

func (h *chatHandler) create(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Create(r.Context())
	if err != nil {
		h.logger.Error("failed to create chat", "error", err)
		writeError(w, http.StatusInternalServerError, "create_failed", "failed to create chat", h.logger)
		return
	}

	// A new chat becomes the active one; artifacts of the old view are gone.
	h.session.Reset()

	writeJSON(w, http.StatusCreated, h.renderChat(c, true), h.logger)
}

func (h *chatHandler) get(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, chat.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "chat not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to load chat", "error", err)
		writeError(w, http.StatusInternalServerError, "get_failed", "failed to load chat", h.logger)
		return
	}

	active, err := h.store.Active(r.Context())
	if err != nil {
		h.logger.Error("failed to resolve active chat", "error", err)
		writeError(w, http.StatusInternalServerError, "get_failed", "failed to load chat", h.logger)
		return
	}

	// Rendering the active chat rebuilds the artifact registry from scratch.
	isActive := c.ID == active
	if isActive {
		h.session.Reset()
	}

	writeJSON(w, http.StatusOK, h.renderChat(c, isActive), h.logger)
}

func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("id")

	ctx, span := observability.Tracer("atelier/web").Start(r.Context(), "chat.send",
		trace.WithAttributes(attribute.String("chat.id", chatID)))
	defer span.End()
	r = r.WithContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxSendBodySize)
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return
	}
	if req.Content == "" && len(req.Files) == 0 {
		writeError(w, http.StatusBadRequest, "empty_message", "message content is required", h.logger)
		return
	}
	for _, f := range req.Files {
		if int64(len(f.Data)) > maxAttachmentSize {
			writeError(w, http.StatusRequestEntityTooLarge, "file_too_large", "attached file exceeds 10MB", h.logger)
			return
		}
	}

	client, err := h.settings.Client()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "webhook_not_configured", "configure a webhook URL in settings first", h.logger)
		return
	}

	refs := make([]chat.FileRef, 0, len(req.Files))
	attachments := make([]webhook.Attachment, 0, len(req.Files))
	for _, f := range req.Files {
		size := f.Size
		if size == 0 {
			size = int64(len(f.Data))
		}
		refs = append(refs, chat.FileRef{Name: f.Name, MediaType: f.MediaType, Size: size})
		attachments = append(attachments, webhook.Attachment{Name: f.Name, MediaType: f.MediaType, Data: f.Data})
	}

	userMsg, err := h.store.Append(r.Context(), chatID, chat.RoleUser, req.Content, refs)
	if errors.Is(err, chat.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "chat not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to append message", "error", err, "chat_id", chatID)
		writeError(w, http.StatusInternalServerError, "append_failed", "failed to store message", h.logger)
		return
	}

	c, err := h.store.Get(r.Context(), chatID)
	if err != nil {
		h.logger.Error("failed to reload chat", "error", err, "chat_id", chatID)
		writeError(w, http.StatusInternalServerError, "get_failed", "failed to load chat", h.logger)
		return
	}

	history := make([]webhook.Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		history = append(history, webhook.Message{Role: m.Role, Content: m.Content})
	}

	reply, err := client.Send(r.Context(), chatID, history, attachments)
	if err != nil {
		h.logger.Error("webhook call failed", "error", err, "chat_id", chatID)
		writeError(w, http.StatusBadGateway, "webhook_failed", "assistant request failed", h.logger)
		return
	}

	assistantMsg, err := h.store.Append(r.Context(), chatID, chat.RoleAssistant, reply, nil)
	if err != nil {
		h.logger.Error("failed to append reply", "error", err, "chat_id", chatID)
		writeError(w, http.StatusInternalServerError, "append_failed", "failed to store message", h.logger)
		return
	}

	c, err = h.store.Get(r.Context(), chatID)
	if err != nil {
		h.logger.Error("failed to reload chat", "error", err, "chat_id", chatID)
		writeError(w, http.StatusInternalServerError, "get_failed", "failed to load chat", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sendResponse{
		UserMessage:      h.renderMessage(*userMsg, true),
		AssistantMessage: h.renderMessage(*assistantMsg, true),
		Title:            c.Title,
	}, h.logger)
}

func (h *chatHandler) clear(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.store.Clear(r.Context(), id)
	if errors.Is(err, chat.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "chat not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to clear chat", "error", err, "chat_id", id)
		writeError(w, http.StatusInternalServerError, "clear_failed", "failed to clear chat", h.logger)
		return
	}

	if active, err := h.store.Active(r.Context()); err == nil && active == id {
		h.session.Reset()
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"}, h.logger)
}

func (h *chatHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, chat.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "chat not found", h.logger)
		return
	case errors.Is(err, chat.ErrLastChat):
		writeError(w, http.StatusConflict, "last_chat", "cannot delete the last remaining chat", h.logger)
		return
	case err != nil:
		h.logger.Error("failed to delete chat", "error", err, "chat_id", id)
		writeError(w, http.StatusInternalServerError, "delete_failed", "failed to delete chat", h.logger)
		return
	}

	h.session.Reset()

	active, err := h.store.Active(r.Context())
	if err != nil {
		h.logger.Error("failed to resolve active chat", "error", err)
		writeError(w, http.StatusInternalServerError, "delete_failed", "failed to resolve active chat", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"activeChatId": active}, h.logger)
}

func (h *chatHandler) activate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.store.SetActive(r.Context(), id)
	if errors.Is(err, chat.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "chat not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to activate chat", "error", err, "chat_id", id)
		writeError(w, http.StatusInternalServerError, "activate_failed", "failed to activate chat", h.logger)
		return
	}

	// Switching away drops the previous view's artifacts.
	h.session.Reset()

	writeJSON(w, http.StatusOK, map[string]string{"activeChatId": id}, h.logger)
}

// renderChat renders every message of a chat. Artifact detection runs only
// for the active chat so the registry mirrors the visible view.
func (h *chatHandler) renderChat(c *chat.Chat, detect bool) chatResponse {
	msgs := make([]renderedMessage, 0, len(c.Messages))
	for _, m := range c.Messages {
		msgs = append(msgs, h.renderMessage(m, detect))
	}
	return chatResponse{
		ID:        c.ID,
		Title:     c.Title,
		Messages:  msgs,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

// renderMessage renders one message to HTML. Render failures degrade to the
// raw content; the conversation is never lost to a markup error.
func (h *chatHandler) renderMessage(m chat.Message, detect bool) renderedMessage {
	var (
		html string
		err  error
	)
	if detect {
		html, err = h.session.Renderer.Message(m.Content)
	} else {
		html, err = render.Markdown(m.Content)
	}
	if err != nil {
		h.logger.Warn("failed to render message", "error", err, "message_id", m.ID)
		html = ""
	}
	return renderedMessage{Message: m, HTML: html}
}
