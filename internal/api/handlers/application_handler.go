package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/models"
	"github.com/markdave123-py/LoanAdvisor/internal/services"
	"github.com/markdave123-py/LoanAdvisor/internal/session"
)

type ApplicationHandler struct {
	apps   *services.ApplicationService
	chat   *services.ChatService
	render *Renderer
	logger *zap.Logger
}

func NewApplicationHandler(apps *services.ApplicationService, chat *services.ChatService, render *Renderer, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{apps: apps, chat: chat, render: render, logger: logger}
}

type adviceResponse struct {
	ApplicationID string `json:"application_id"`
	AdviceHTML    string `json:"advice_html"`
	RawAdvice     string `json:"raw_advice"`
	Available     bool   `json:"available"`
	Timestamp     string `json:"timestamp"`
}

func (h *ApplicationHandler) LoanForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "loan_form.html", pageData{Session: sessionFrom(r)})
}

// Submit stores the form and renders advice for it. Every submitted key is
// kept; money fields are normalized by the service.
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, http.StatusBadRequest, "loan_form.html", pageData{Session: sessionFrom(r), Error: "Invalid form submission"})
		return
	}

	fields := models.Fields{}
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = strings.TrimSpace(values[0])
		}
	}

	app, err := h.apps.Submit(r.Context(), session.UserID(r.Context()), fields)
	if err != nil {
		h.logger.Error("submit application", zap.Error(err))
		h.render.ServerError(w, r)
		return
	}

	h.render.Render(w, http.StatusOK, "success.html", pageData{
		Session:     sessionFrom(r),
		Application: app,
		Advice:      h.apps.Advice(r.Context(), app),
	})
}

// Advice is the JSON form of the generated advice.
func (h *ApplicationHandler) Advice(w http.ResponseWriter, r *http.Request) {
	app, ok := h.loadJSON(w, r)
	if !ok {
		return
	}

	res := h.apps.Advice(r.Context(), app)
	respondJSON(w, http.StatusOK, adviceResponse{
		ApplicationID: app.ID,
		AdviceHTML:    string(res.HTML),
		RawAdvice:     res.Raw,
		Available:     res.Available,
		Timestamp:     res.Timestamp.UTC().Format(time.RFC3339),
	})
}

// List shows every application.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	apps, err := h.apps.List(r.Context(), "")
	if err != nil {
		h.logger.Error("list applications", zap.Error(err))
		h.render.ServerError(w, r)
		return
	}
	h.render.Render(w, http.StatusOK, "applications.html", pageData{Session: sessionFrom(r), Applications: apps})
}

// Detail shows an application with fresh advice and its transcript.
func (h *ApplicationHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.apps.Get(ctx, chi.URLParam(r, "id"), session.UserID(ctx))
	switch {
	case errors.Is(err, services.ErrNotFound):
		http.Redirect(w, r, "/", http.StatusFound)
		return
	case errors.Is(err, services.ErrForbidden):
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	case err != nil:
		h.logger.Error("get application", zap.Error(err))
		h.render.ServerError(w, r)
		return
	}

	history, err := h.chat.History(ctx, app.ID)
	if err != nil {
		h.logger.Error("chat history", zap.String("application_id", app.ID), zap.Error(err))
		h.render.ServerError(w, r)
		return
	}

	h.render.Render(w, http.StatusOK, "application_detail.html", pageData{
		Session:     sessionFrom(r),
		Application: app,
		Advice:      h.apps.Advice(ctx, app),
		ChatHistory: history,
	})
}

// loadJSON resolves {id} for the JSON endpoints and writes the error
// response when it cannot.
func (h *ApplicationHandler) loadJSON(w http.ResponseWriter, r *http.Request) (*models.Application, bool) {
	app, err := h.apps.Get(r.Context(), chi.URLParam(r, "id"), session.UserID(r.Context()))
	switch {
	case err == nil:
		return app, true
	case errors.Is(err, services.ErrNotFound):
		respondError(w, http.StatusNotFound, "Application not found")
	case errors.Is(err, services.ErrForbidden):
		respondError(w, http.StatusForbidden, "Access denied")
	default:
		h.logger.Error("get application", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
	return nil, false
}
