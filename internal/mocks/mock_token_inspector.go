package mocks

import (
	"strings"

	"github.com/wabdevconsult/batuta/domain"
)

// MockTokenInspector implements domain.TokenInspector interface for testing
type MockTokenInspector struct {
	InspectFunc func(token string) (*domain.TokenClaims, error)
	IsDemoFunc  func(token string) bool
}

// NewMockTokenInspector creates a new MockTokenInspector with default behaviors
func NewMockTokenInspector() *MockTokenInspector {
	return &MockTokenInspector{}
}

// Inspect reads token claims
func (m *MockTokenInspector) Inspect(token string) (*domain.TokenClaims, error) {
	if m.InspectFunc != nil {
		return m.InspectFunc(token)
	}
	// Default behavior: demo tokens carry their role, anything else is unexpiring
	if m.IsDemo(token) {
		return &domain.TokenClaims{Role: domain.Role(strings.TrimPrefix(token, "demo-token-")), Demo: true}, nil
	}
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.TokenClaims{}, nil
}

// IsDemo reports whether the token is a demo placeholder
func (m *MockTokenInspector) IsDemo(token string) bool {
	if m.IsDemoFunc != nil {
		return m.IsDemoFunc(token)
	}
	return strings.HasPrefix(token, "demo-token-")
}

// Compile-time interface compliance verification
var _ domain.TokenInspector = (*MockTokenInspector)(nil)
