package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wabdevconsult/batuta/internal/http/middleware"
	"github.com/wabdevconsult/batuta/internal/services"
)

// DashboardHandlers serves the home page summary and the unread counter
type DashboardHandlers struct {
	dashboard     *services.DashboardService
	notifications *services.NotificationService
}

func NewDashboardHandlers(dashboard *services.DashboardService, notifications *services.NotificationService) *DashboardHandlers {
	return &DashboardHandlers{dashboard: dashboard, notifications: notifications}
}

// Summary handles GET /api/dashboard; ?refresh=true reloads the lists first
func (h *DashboardHandlers) Summary(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context(), middleware.CurrentRole(c), c.Query("refresh") == "true")
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

// Unread returns the last known unread notification count
func (h *DashboardHandlers) Unread(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.notifications.State()})
}
