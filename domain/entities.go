package domain

import "time"

// Role identifies what a user may see and do in the console
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleTechnicien  Role = "technicien"
	RoleClient      Role = "client"
	RoleFournisseur Role = "fournisseur"
)

// Roles lists every known role in display order
var Roles = []Role{RoleAdmin, RoleTechnicien, RoleClient, RoleFournisseur}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// User represents an authenticated console user
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Company   string    `json:"company,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName returns the user's full name, or the email when no name is known
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Email
}

// Credentials represents login input
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents account registration input
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Company   string `json:"company,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      Role   `json:"role,omitempty"`
}

// AuthResult represents a successful authentication
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Session is the client-held record of the current identity.
// Token is non-empty iff User is non-nil.
type Session struct {
	User    *User  `json:"user"`
	Token   string `json:"token,omitempty"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Authenticated reports whether the session holds an identity
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// PersistedState is the subset of a session written to durable storage
type PersistedState struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// PersistedSession is the named durable record: {"state": {"user": ..., "token": ...}}
type PersistedSession struct {
	State PersistedState `json:"state"`
}

// TokenClaims represents what the console can read from a backend token
type TokenClaims struct {
	Subject   string `json:"sub,omitempty"`
	Role      Role   `json:"role,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	Demo      bool   `json:"-"`
}

// Expired reports whether the claims carry an expiry that has passed
func (c *TokenClaims) Expired(now time.Time) bool {
	return c.ExpiresAt > 0 && time.Unix(c.ExpiresAt, 0).Before(now)
}
