package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yalasurf/yalasurf/internal/chatbot"
)

type ChatbotHandler struct {
	manager *chatbot.Manager
}

func NewChatbotHandler(manager *chatbot.Manager) *ChatbotHandler {
	return &ChatbotHandler{manager: manager}
}

// Open starts a conversation seeded with the welcome message.
func (h *ChatbotHandler) Open(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.manager.Open())
}

// Get returns the current transcript of an open conversation.
func (h *ChatbotHandler) Get(w http.ResponseWriter, r *http.Request) {
	conv, err := h.manager.Get(r.PathValue("handle"))
	if errors.Is(err, chatbot.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "conversation not found"})
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

type chatSendRequest struct {
	Message string `json:"message"`
}

// Send submits a user message and returns the transcript including the
// reply. While a reply is in flight the conversation rejects further
// input with 409.
func (h *ChatbotHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req chatSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	conv, err := h.manager.Send(r.Context(), r.PathValue("handle"), req.Message)
	switch {
	case errors.Is(err, chatbot.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "conversation not found"})
		return
	case errors.Is(err, chatbot.ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "reply in flight"})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "chat failed"})
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// Discard closes a conversation. Closing an unknown handle is fine:
// the widget may already have been reset by a logout.
func (h *ChatbotHandler) Discard(w http.ResponseWriter, r *http.Request) {
	h.manager.Discard(r.PathValue("handle"))
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
