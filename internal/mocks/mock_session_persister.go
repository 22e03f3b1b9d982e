package mocks

import (
	"context"
	"sync"

	"github.com/wabdevconsult/batuta/domain"
)

// MockSessionPersister implements domain.SessionPersister interface for testing.
// Without overrides it behaves as an in-memory store.
type MockSessionPersister struct {
	LoadFunc  func(ctx context.Context) (*domain.PersistedSession, error)
	SaveFunc  func(ctx context.Context, session *domain.PersistedSession) error
	ClearFunc func(ctx context.Context) error

	mu     sync.Mutex
	stored *domain.PersistedSession
	saves  int
}

// NewMockSessionPersister creates a new MockSessionPersister with default behaviors
func NewMockSessionPersister() *MockSessionPersister {
	return &MockSessionPersister{}
}

// Load reads the stored record
func (m *MockSessionPersister) Load(ctx context.Context) (*domain.PersistedSession, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return nil, domain.ErrSessionNotFound
	}
	copied := *m.stored
	return &copied, nil
}

// Save writes the record
func (m *MockSessionPersister) Save(ctx context.Context, session *domain.PersistedSession) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.stored = &copied
	m.saves++
	return nil
}

// Clear removes the record
func (m *MockSessionPersister) Clear(ctx context.Context) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	return nil
}

// Stored returns the record held by the default in-memory behavior
func (m *MockSessionPersister) Stored() *domain.PersistedSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored
}

// SetStored seeds the in-memory record (test helper)
func (m *MockSessionPersister) SetStored(session *domain.PersistedSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = session
}

// Saves counts successful default saves
func (m *MockSessionPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Compile-time interface compliance verification
var _ domain.SessionPersister = (*MockSessionPersister)(nil)
