package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/models"
	"github.com/markdave123-py/LoanAdvisor/internal/services"
	"github.com/markdave123-py/LoanAdvisor/internal/session"
)

type AuthHandler struct {
	users    *services.UserService
	apps     *services.ApplicationService
	sessions *session.Manager
	render   *Renderer
	logger   *zap.Logger
}

func NewAuthHandler(users *services.UserService, apps *services.ApplicationService, sessions *session.Manager, render *Renderer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, apps: apps, sessions: sessions, render: render, logger: logger}
}

func sessionFrom(r *http.Request) *models.Session {
	s, _ := session.FromContext(r.Context())
	return s
}

func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "login.html", pageData{Session: sessionFrom(r)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, http.StatusBadRequest, "login.html", pageData{Error: "Invalid form submission"})
		return
	}
	username := r.PostForm.Get("username")

	user, err := h.users.Login(r.Context(), username, r.PostForm.Get("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		h.render.Render(w, http.StatusOK, "login.html", pageData{Error: "Invalid username or password", Username: username})
		return
	}
	if err != nil {
		h.logger.Error("login", zap.Error(err))
		h.render.ServerError(w, r)
		return
	}

	h.startSession(w, r, user)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "register.html", pageData{Session: sessionFrom(r)})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, http.StatusBadRequest, "register.html", pageData{Error: "Invalid form submission"})
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	if password != r.PostForm.Get("confirm_password") {
		h.render.Render(w, http.StatusOK, "register.html", pageData{Error: "Passwords do not match", Username: username})
		return
	}

	user, err := h.users.Register(r.Context(), username, password, r.PostForm.Get("email"))
	switch {
	case errors.Is(err, services.ErrUsernameTaken):
		h.render.Render(w, http.StatusOK, "register.html", pageData{Error: "Username already exists", Username: username})
		return
	case errors.Is(err, services.ErrMissingCredentials):
		h.render.Render(w, http.StatusOK, "register.html", pageData{Error: "Username and password are required", Username: username})
		return
	case err != nil:
		h.logger.Error("register", zap.Error(err))
		h.render.ServerError(w, r)
		return
	}

	h.logger.Info("user registered", zap.String("user_id", user.ID))
	h.startSession(w, r, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	if _, err := h.sessions.Create(r.Context(), w, user); err != nil {
		h.logger.Error("create session", zap.Error(err))
		h.render.ServerError(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Dashboard lists the signed-in user's applications.
func (h *AuthHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	apps, err := h.apps.List(r.Context(), s.UserID)
	if err != nil {
		h.logger.Error("list applications", zap.Error(err))
		h.render.ServerError(w, r)
		return
	}
	h.render.Render(w, http.StatusOK, "dashboard.html", pageData{Session: s, Applications: apps})
}
