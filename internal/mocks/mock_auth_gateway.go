package mocks

import (
	"context"
	"sync"

	"github.com/wabdevconsult/batuta/domain"
)

// MockAuthGateway implements domain.AuthGateway interface for testing
type MockAuthGateway struct {
	LoginFunc        func(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	RegisterFunc     func(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error)
	LogoutFunc       func(ctx context.Context, token string)
	CurrentUserFunc  func(ctx context.Context, token string) *domain.User
	RefreshTokenFunc func(ctx context.Context, token string) string

	mu    sync.Mutex
	calls []string
}

// NewMockAuthGateway creates a new MockAuthGateway with default behaviors
func NewMockAuthGateway() *MockAuthGateway {
	return &MockAuthGateway{}
}

func (m *MockAuthGateway) record(name string) {
	m.mu.Lock()
	m.calls = append(m.calls, name)
	m.mu.Unlock()
}

// Calls returns the gateway methods invoked so far, in order
func (m *MockAuthGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Login authenticates credentials
func (m *MockAuthGateway) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	m.record("Login")
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	// Default behavior: reject
	return nil, &domain.AuthError{Message: "Login failed", Err: domain.ErrInvalidCredentials}
}

// Register creates an account
func (m *MockAuthGateway) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	m.record("Register")
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	// Default behavior: reject
	return nil, &domain.AuthError{Message: "Registration failed"}
}

// Logout ends the backend session
func (m *MockAuthGateway) Logout(ctx context.Context, token string) {
	m.record("Logout")
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, token)
	}
}

// CurrentUser resolves the user behind a token
func (m *MockAuthGateway) CurrentUser(ctx context.Context, token string) *domain.User {
	m.record("CurrentUser")
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx, token)
	}
	// Default behavior: unknown
	return nil
}

// RefreshToken exchanges an expired token
func (m *MockAuthGateway) RefreshToken(ctx context.Context, token string) string {
	m.record("RefreshToken")
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, token)
	}
	// Default behavior: refresh refused
	return ""
}

// Compile-time interface compliance verification
var _ domain.AuthGateway = (*MockAuthGateway)(nil)
