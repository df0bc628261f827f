package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/LoanAdvisor/internal/api/middlewares"
	"github.com/markdave123-py/LoanAdvisor/internal/config"
	"github.com/markdave123-py/LoanAdvisor/internal/session"
)

type routes struct {
	auth     *handlers.AuthHandler
	apps     *handlers.ApplicationHandler
	chat     *handlers.ChatHandler
	render   *handlers.Renderer
	sessions *session.Manager
}

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, logger *zap.Logger, rt routes) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appMiddleware.RequestLogger(logger))
	r.Use(appMiddleware.Recoverer(logger, rt.render.ServerError))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(rt.sessions.Load)

	r.NotFound(rt.render.NotFound)

	r.Get("/healthz", handlers.Health)

	// pages
	r.Get("/", rt.auth.Index)
	r.Get("/login", rt.auth.LoginPage)
	r.Post("/login", rt.auth.Login)
	r.Get("/register", rt.auth.RegisterPage)
	r.Post("/register", rt.auth.Register)
	r.Get("/logout", rt.auth.Logout)
	r.Get("/loan_form", rt.apps.LoanForm)
	r.Post("/submit", rt.apps.Submit)
	r.Get("/application/{id}", rt.apps.Detail)

	r.Group(func(protected chi.Router) {
		protected.Use(rt.sessions.RequireAuth)
		protected.Get("/dashboard", rt.auth.Dashboard)
		protected.Get("/applications", rt.apps.List)
	})

	// JSON endpoints
	r.Get("/api/advice/{id}", rt.apps.Advice)
	r.Post("/chat/{id}", rt.chat.Ask)
	r.Post("/admin_chat", rt.chat.AskGeneral)
	r.Get("/application/{id}/chat_history", rt.chat.History)

	return &Server{
		httpServer: &http.Server{Addr: ":" + cfg.Port, Handler: r},
		logger:     logger,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the HTTP server until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
