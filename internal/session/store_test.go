package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	db "github.com/markdave123-py/LoanAdvisor/internal/core/database"
	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	s := &models.Session{ID: "s1", UserID: "u1", Username: "alice", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, st.Create(ctx, s))

	got, err := st.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, st.Delete(ctx, "s1"))
	_, err = st.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	require.NoError(t, st.Create(ctx, &models.Session{ID: "old", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, st.Create(ctx, &models.Session{ID: "new", ExpiresAt: now.Add(time.Hour)}))

	_, err := st.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := st.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = st.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestDatabaseStore(t *testing.T) {
	ctx := context.Background()
	dbc, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbc.Close() })

	st := NewDatabaseStore(dbc)
	require.NoError(t, st.Create(ctx, &models.Session{
		ID: "s1", UserID: "u1", Username: "alice", ExpiresAt: time.Now().Add(time.Hour).UTC(),
	}))
	require.NoError(t, st.Create(ctx, &models.Session{
		ID: "s2", UserID: "u2", Username: "bob", ExpiresAt: time.Now().Add(-time.Hour).UTC(),
	}))

	got, err := st.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	_, err = st.Get(ctx, "s2")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := st.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, st.Delete(ctx, "s1"))
	_, err = st.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewStore(t *testing.T) {
	st, err := NewStore("memory", nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)

	_, err = NewStore("database", nil)
	assert.Error(t, err)

	_, err = NewStore("redis", nil)
	assert.Error(t, err)
}
