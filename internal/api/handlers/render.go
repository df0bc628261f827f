package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/advice"
	"github.com/markdave123-py/LoanAdvisor/internal/currency"
	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login.html",
	"register.html",
	"dashboard.html",
	"applications.html",
	"loan_form.html",
	"success.html",
	"application_detail.html",
	"404.html",
	"500.html",
}

// pageData is the single view model every template receives.
type pageData struct {
	Session      *models.Session
	Error        string
	Username     string
	Application  *models.Application
	Applications []models.Application
	Advice       advice.Result
	ChatHistory  []models.ChatTurn
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	funcs := template.FuncMap{
		"money": func(v any) string { return currency.Format(v, true) },
		// Stored chat responses are sanitizer output.
		"safe": func(s string) template.HTML { return template.HTML(s) },
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages, logger: logger}, nil
}

// Render writes page with status. The page is rendered to a buffer first
// so a template error still yields a clean 500.
func (rd *Renderer) Render(w http.ResponseWriter, status int, page string, data pageData) {
	t, ok := rd.pages[page]
	if !ok {
		rd.logger.Error("unknown template", zap.String("page", page))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		rd.logger.Error("render template", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// NotFound renders the 404 page.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, http.StatusNotFound, "404.html", pageData{Session: sessionFrom(r)})
}

// ServerError renders the 500 page.
func (rd *Renderer) ServerError(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, http.StatusInternalServerError, "500.html", pageData{Session: sessionFrom(r)})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
