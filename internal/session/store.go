package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/markdave123-py/LoanAdvisor/internal/core"
	db "github.com/markdave123-py/LoanAdvisor/internal/core/database"
	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

// ErrNotFound is returned for unknown and expired sessions.
var ErrNotFound = errors.New("session not found")

// Store keeps server-side sessions. Get never returns an expired session.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	// Sweep removes expired sessions and reports how many were dropped.
	Sweep(ctx context.Context) (int64, error)
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.Session), now: time.Now}
}

func (m *MemoryStore) Create(_ context.Context, s *models.Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session id is required")
	}
	m.mu.Lock()
	m.sessions[s.ID] = *s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.Expired(m.now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Sweep(_ context.Context) (int64, error) {
	now := m.now()
	var n int64
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// DatabaseStore keeps sessions in the sessions table so they survive
// restarts and are shared between processes.
type DatabaseStore struct {
	db  core.DbClient
	now func() time.Time
}

var _ Store = (*DatabaseStore)(nil)

func NewDatabaseStore(dbc core.DbClient) *DatabaseStore {
	return &DatabaseStore{db: dbc, now: time.Now}
}

func (d *DatabaseStore) Create(ctx context.Context, s *models.Session) error {
	return d.db.CreateSession(ctx, s)
}

func (d *DatabaseStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s, err := d.db.GetSession(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.Expired(d.now()) {
		return nil, ErrNotFound
	}
	return s, nil
}

func (d *DatabaseStore) Delete(ctx context.Context, id string) error {
	return d.db.DeleteSession(ctx, id)
}

func (d *DatabaseStore) Sweep(ctx context.Context) (int64, error) {
	return d.db.DeleteExpiredSessions(ctx)
}

// NewStore picks the store named by kind ("memory" or "database").
func NewStore(kind string, dbc core.DbClient) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "database":
		if dbc == nil {
			return nil, errors.New("database session store needs a database client")
		}
		return NewDatabaseStore(dbc), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
}

// RunSweeper sweeps the store every interval until ctx is done.
func RunSweeper(ctx context.Context, store Store, interval time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := store.Sweep(ctx)
			if err != nil {
				logger.Warn("session sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("expired sessions removed", zap.Int64("count", n))
			}
		}
	}
}
