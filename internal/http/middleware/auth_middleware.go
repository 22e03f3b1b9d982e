package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wabdevconsult/batuta/domain"
)

// Context keys set by RequireSession
const (
	UserKey = "user"
	RoleKey = "user_role"
)

// SessionSource exposes the console's current identity
type SessionSource interface {
	Snapshot() domain.Session
}

// AuthMW wraps the session store for middleware
type AuthMW struct {
	sessions SessionSource
}

// NewAuthMW creates new auth middleware wrapper
func NewAuthMW(sessions SessionSource) *AuthMW {
	return &AuthMW{sessions: sessions}
}

// RequireSession rejects requests while nobody is logged in
func (mw *AuthMW) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := mw.sessions.Snapshot()
		if session.User == nil || session.Token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		c.Set(UserKey, session.User)
		c.Set(RoleKey, session.User.Role)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireSession
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// CurrentRole returns the role stored by RequireSession, empty when absent
func CurrentRole(c *gin.Context) domain.Role {
	if v, ok := c.Get(RoleKey); ok {
		if r, ok := v.(domain.Role); ok {
			return r
		}
	}
	return ""
}
