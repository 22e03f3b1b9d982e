package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wabdevconsult/batuta/domain"
)

// CasbinMW checks the capability table before a handler runs
type CasbinMW struct {
	policies domain.PolicyService
	audit    domain.AuditLogger
}

// NewCasbinMW creates new casbin middleware wrapper
func NewCasbinMW(policies domain.PolicyService, audit domain.AuditLogger) *CasbinMW {
	return &CasbinMW{policies: policies, audit: audit}
}

// Require lets the request through when the session's role may perform
// action on resource. It must run after RequireSession.
func (mw *CasbinMW) Require(resource domain.Resource, action domain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		allowed, err := mw.policies.CheckPermission(role, resource, action)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Authorization check failed"})
			c.Abort()
			return
		}
		if !allowed {
			if mw.audit != nil {
				mw.audit.LogEvent(c.Request.Context(), domain.NewAuditEvent(domain.AccessDeniedEvent, CurrentUser(c)).
					WithError(domain.ErrForbidden).
					WithMetadata("resource", string(resource)).
					WithMetadata("action", string(action)))
			}
			c.JSON(http.StatusForbidden, gin.H{"error": "Access Denied"})
			c.Abort()
			return
		}

		c.Next()
	}
}
