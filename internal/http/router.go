package httpx

import (
	"github.com/gin-gonic/gin"
	"github.com/wabdevconsult/batuta/domain"
	"github.com/wabdevconsult/batuta/internal/http/handlers"
	"github.com/wabdevconsult/batuta/internal/http/middleware"
)

// Handlers groups everything the router mounts
type Handlers struct {
	Auth          *handlers.AuthHandlers
	Policies      *handlers.PolicyHandlers
	Dashboard     *handlers.DashboardHandlers
	Installations *handlers.ResourceHandlers[domain.Installation]
	Equipments    *handlers.ResourceHandlers[domain.Equipment]
	Interventions *handlers.ResourceHandlers[domain.Intervention]
	Clients       *handlers.ResourceHandlers[domain.Client]
	QuoteRequests *handlers.ResourceHandlers[domain.QuoteRequest]
}

func BuildRouter(h Handlers, authmw *middleware.AuthMW, cb *middleware.CasbinMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/api/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/session", h.Auth.Session)
	auth.POST("/check", h.Auth.Check)

	api := r.Group("/api", authmw.RequireSession())
	api.GET("/capabilities", h.Policies.Capabilities)
	api.GET("/dashboard", h.Dashboard.Summary)
	api.GET("/notifications/unread", h.Dashboard.Unread)

	mountResource(api, h.Installations, cb)
	mountResource(api, h.Equipments, cb)
	mountResource(api, h.Interventions, cb)
	mountResource(api, h.Clients, cb)
	mountResource(api, h.QuoteRequests, cb)

	adm := api.Group("/admin")
	adm.GET("/policies", cb.Require(domain.ResourcePolicies, domain.ActionList), h.Policies.List)
	adm.POST("/policies", cb.Require(domain.ResourcePolicies, domain.ActionCreate), h.Policies.Add)
	adm.DELETE("/policies", cb.Require(domain.ResourcePolicies, domain.ActionDelete), h.Policies.Remove)

	return r
}

// mountResource registers the CRUD and status routes of one collection
func mountResource[T domain.Record](api *gin.RouterGroup, h *handlers.ResourceHandlers[T], cb *middleware.CasbinMW) {
	res := h.Resource()
	g := api.Group(res.Path())

	g.GET("", cb.Require(res, domain.ActionList), h.List)
	g.POST("/refresh", cb.Require(res, domain.ActionList), h.Refresh)
	g.GET("/export", cb.Require(res, domain.ActionExport), h.Export)
	g.GET("/:id", cb.Require(res, domain.ActionView), h.Get)
	g.POST("", cb.Require(res, domain.ActionCreate), h.Create)
	g.PUT("/:id", cb.Require(res, domain.ActionUpdate), h.Update)
	g.DELETE("/:id", cb.Require(res, domain.ActionDelete), h.Delete)
	g.POST("/:id/status", cb.Require(res, domain.ActionTransition), h.Transition)
}
