package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/advice"
	"github.com/markdave123-py/LoanAdvisor/internal/services"
	"github.com/markdave123-py/LoanAdvisor/internal/session"
)

type ChatHandler struct {
	apps   *ApplicationHandler
	chat   *services.ChatService
	logger *zap.Logger
}

func NewChatHandler(apps *ApplicationHandler, chat *services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{apps: apps, chat: chat, logger: logger}
}

type ChatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	ResponseHTML string `json:"response_html"`
	RawResponse  string `json:"raw_response"`
	Available    bool   `json:"available"`
	Timestamp    string `json:"timestamp"`
}

func newChatResponse(res advice.Result) chatResponse {
	return chatResponse{
		ResponseHTML: string(res.HTML),
		RawResponse:  res.Raw,
		Available:    res.Available,
		Timestamp:    res.Timestamp.UTC().Format(time.RFC3339),
	}
}

// decodeQuestion reads {"question": ...}. A body that is not JSON counts
// as a missing question.
func decodeQuestion(r *http.Request) string {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return req.Question
}

// Ask answers a follow-up question about one application.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	app, ok := h.apps.loadJSON(w, r)
	if !ok {
		return
	}

	res, err := h.chat.Ask(r.Context(), app, decodeQuestion(r))
	if errors.Is(err, services.ErrEmptyQuestion) {
		respondError(w, http.StatusBadRequest, "No question provided")
		return
	}
	if err != nil {
		h.logger.Error("chat", zap.String("application_id", app.ID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, newChatResponse(res))
}

// AskGeneral answers a question from the applications console.
func (h *ChatHandler) AskGeneral(w http.ResponseWriter, r *http.Request) {
	res, err := h.chat.AskGeneral(r.Context(), session.UserID(r.Context()), decodeQuestion(r))
	if errors.Is(err, services.ErrEmptyQuestion) {
		respondError(w, http.StatusBadRequest, "No question provided")
		return
	}
	if err != nil {
		h.logger.Error("admin chat", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, newChatResponse(res))
}

// History returns the transcript of an application. Unknown ids give an
// empty transcript.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	allowed, err := h.apps.apps.CanView(ctx, id, session.UserID(ctx))
	if err != nil {
		h.logger.Error("chat history access", zap.String("application_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !allowed {
		respondError(w, http.StatusForbidden, "Access denied")
		return
	}

	history, err := h.chat.History(ctx, id)
	if err != nil {
		h.logger.Error("chat history", zap.String("application_id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"chat_history": history})
}

// Health reports liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
