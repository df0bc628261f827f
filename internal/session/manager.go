package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

// CookieName is the browser cookie carrying the signed session token.
const CookieName = "loan_advisor_session"

type ctxKey struct{}

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager issues and resolves sessions.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewManager signs tokens with secret. An empty secret is replaced by a
// random one, which invalidates every cookie on restart.
func NewManager(store Store, secret string, ttl time.Duration, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("SESSION_SECRET is not set; using a random per-process secret")
	}

	return &Manager{store: store, secret: key, ttl: ttl, logger: logger, now: time.Now}, nil
}

// Create starts a session for user and writes the cookie.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, user *models.User) (*models.Session, error) {
	if user == nil {
		return nil, errors.New("nil user")
	}
	s := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: m.now().Add(m.ttl).UTC(),
	}
	if err := m.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	token, err := m.sign(s)
	if err != nil {
		_ = m.store.Delete(ctx, s.ID)
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Destroy deletes the request's session, if any, and expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if s, ok := FromContext(r.Context()); ok {
		if err := m.store.Delete(r.Context(), s.ID); err != nil {
			m.logger.Warn("delete session", zap.Error(err))
		}
	} else if sid, err := m.sessionID(r); err == nil {
		_ = m.store.Delete(r.Context(), sid)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Load attaches the request's session to its context when the cookie is
// valid. Requests without one pass through anonymously.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid, err := m.sessionID(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		s, err := m.store.Get(r.Context(), sid)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				m.logger.Error("load session", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, s)))
	})
}

// RequireAuth redirects anonymous requests to the login page.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext returns the session attached by Load.
func FromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*models.Session)
	return s, ok
}

// UserID returns the signed-in user's id or "".
func UserID(ctx context.Context) string {
	if s, ok := FromContext(ctx); ok {
		return s.UserID
	}
	return ""
}

func (m *Manager) sign(s *models.Session) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: s.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (m *Manager) sessionID(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", ErrNotFound
	}
	var cl claims
	_, err = jwt.ParseWithClaims(c.Value, &cl, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if cl.SessionID == "" {
		return "", ErrNotFound
	}
	return cl.SessionID, nil
}
