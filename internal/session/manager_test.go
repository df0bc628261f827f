package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

func newTestManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	st := NewMemoryStore()
	m, err := NewManager(st, "test-secret", time.Hour, nil)
	require.NoError(t, err)
	return m, st
}

// whoami echoes the session username, or "anonymous".
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if s, ok := FromContext(r.Context()); ok {
		_, _ = w.Write([]byte(s.Username))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
})

func login(t *testing.T, m *Manager) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	_, err := m.Create(httptest.NewRequest(http.MethodPost, "/login", nil).Context(), rec, &models.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	return cookies[0]
}

func TestLoadAttachesSession(t *testing.T) {
	m, _ := newTestManager(t)
	cookie := login(t, m)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	m.Load(whoami).ServeHTTP(rec, req)

	assert.Equal(t, "alice", rec.Body.String())
}

func TestLoadIgnoresBadTokens(t *testing.T) {
	m, _ := newTestManager(t)
	cookie := login(t, m)

	other, err := NewManager(NewMemoryStore(), "other-secret", time.Hour, nil)
	require.NoError(t, err)

	for name, c := range map[string]*http.Cookie{
		"garbage":      {Name: CookieName, Value: "not-a-jwt"},
		"wrong secret": cookie,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(c)
			rec := httptest.NewRecorder()
			other.Load(whoami).ServeHTTP(rec, req)
			assert.Equal(t, "anonymous", rec.Body.String())
		})
	}
}

func TestRequireAuthRedirects(t *testing.T) {
	m, _ := newTestManager(t)

	rec := httptest.NewRecorder()
	m.Load(m.RequireAuth(whoami)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestDestroy(t *testing.T) {
	m, st := newTestManager(t)
	cookie := login(t, m)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	m.Load(http.HandlerFunc(m.Destroy)).ServeHTTP(rec, req)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
	assert.Empty(t, st.sessions)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	m.Load(whoami).ServeHTTP(rec, req)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestEmptySecretIsRandom(t *testing.T) {
	a, err := NewManager(NewMemoryStore(), "", 0, nil)
	require.NoError(t, err)
	b, err := NewManager(NewMemoryStore(), "", 0, nil)
	require.NoError(t, err)

	assert.Len(t, a.secret, 32)
	assert.NotEqual(t, a.secret, b.secret)
	assert.Equal(t, 24*time.Hour, a.ttl)
}
