package domain

import "context"

// SessionPersister defines durable storage for the session record
type SessionPersister interface {
	Load(ctx context.Context) (*PersistedSession, error)
	Save(ctx context.Context, session *PersistedSession) error
	Clear(ctx context.Context) error
}

// AuthGateway turns credentials into an identity.
// Logout, CurrentUser and RefreshToken never fail: errors resolve to nil or "".
type AuthGateway interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Logout(ctx context.Context, token string)
	CurrentUser(ctx context.Context, token string) *User
	RefreshToken(ctx context.Context, token string) string
}

// TokenInspector reads claims from a token without authority over it
type TokenInspector interface {
	Inspect(token string) (*TokenClaims, error)
	IsDemo(token string) bool
}

// PolicyService defines the role capability table
type PolicyService interface {
	AddPolicy(role Role, resource, action string) error
	RemovePolicy(role Role, resource, action string) error
	CheckPermission(role Role, resource Resource, action Action) (bool, error)
	Capabilities(role Role) (Capabilities, error)
	GetPolicies() [][]string
}

// CasbinEnforcer interface defines the methods we need from Casbin enforcer
type CasbinEnforcer interface {
	AddPolicy(params ...interface{}) (bool, error)
	RemovePolicy(params ...interface{}) (bool, error)
	Enforce(rvals ...interface{}) (bool, error)
	GetPolicy() ([][]string, error)
	SavePolicy() error
}
