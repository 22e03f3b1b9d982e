package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wabdevconsult/batuta/domain"
	"github.com/wabdevconsult/batuta/internal/http/middleware"
	"github.com/wabdevconsult/batuta/internal/infrastructure/export"
	"github.com/wabdevconsult/batuta/internal/services"
)

// ResourceHandlers serves one entity collection
type ResourceHandlers[T domain.Record] struct {
	coll    *services.Collection[T]
	columns []export.Column[T]
	audit   domain.AuditLogger
	now     func() time.Time
}

// NewResourceHandlers creates handlers over coll; columns shape the xlsx export
func NewResourceHandlers[T domain.Record](coll *services.Collection[T], columns []export.Column[T], audit domain.AuditLogger) *ResourceHandlers[T] {
	return &ResourceHandlers[T]{coll: coll, columns: columns, audit: audit, now: time.Now}
}

// Resource names the served collection
func (h *ResourceHandlers[T]) Resource() domain.Resource { return h.coll.Resource() }

// List returns the local list filtered by ?q= and ?status=
func (h *ResourceHandlers[T]) List(c *gin.Context) {
	state := h.coll.State()
	c.JSON(http.StatusOK, gin.H{
		"data":    h.coll.Filter(c.Query("q"), c.Query("status")),
		"total":   len(state.Items),
		"loading": state.Loading,
		"error":   state.Error,
	})
}

// Refresh reloads the list from the backend. On failure the old list is kept
// and returned along with the error.
func (h *ResourceHandlers[T]) Refresh(c *gin.Context) {
	if err := h.coll.Fetch(c.Request.Context()); err != nil {
		c.JSON(statusOf(err), gin.H{"error": h.coll.Err(), "data": h.coll.Items()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.coll.Items()})
}

// Get loads one record from the backend
func (h *ResourceHandlers[T]) Get(c *gin.Context) {
	rec, err := h.coll.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, services.ErrorMessage(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// Create posts a new record
func (h *ResourceHandlers[T]) Create(c *gin.Context) {
	var rec T
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.coll.Create(c.Request.Context(), rec)
	if err != nil {
		respondError(c, err, h.coll.Err())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": created})
}

// Update sends a partial update
func (h *ResourceHandlers[T]) Update(c *gin.Context) {
	var patch services.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := patch["status"]; ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Use the status endpoint to change status"})
		return
	}

	updated, err := h.coll.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err, h.coll.Err())
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

// Delete removes a record
func (h *ResourceHandlers[T]) Delete(c *gin.Context) {
	if _, err := h.coll.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, h.coll.Err())
		return
	}
	c.Status(http.StatusNoContent)
}

type transitionReq struct {
	Status string `json:"status" binding:"required"`
}

// Transition moves a record along its status lifecycle
func (h *ResourceHandlers[T]) Transition(c *gin.Context) {
	var req transitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.coll.KnownStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	user := middleware.CurrentUser(c)
	id := c.Param("id")
	event := func(t domain.AuditEventType) *domain.AuditEvent {
		return domain.NewAuditEvent(t, user).
			WithMetadata("resource", string(h.Resource())).
			WithMetadata("id", id).
			WithMetadata("to", req.Status)
	}

	updated, err := h.coll.Transition(c.Request.Context(), middleware.CurrentRole(c), id, req.Status)
	if err != nil {
		if h.audit != nil {
			h.audit.LogEvent(c.Request.Context(), event(domain.TransitionDeniedEvent).WithError(err))
		}
		respondError(c, err, services.ErrorMessage(err))
		return
	}
	if h.audit != nil {
		h.audit.LogEvent(c.Request.Context(), event(domain.StatusTransitionEvent))
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

// Export streams the filtered list as an xlsx workbook
func (h *ResourceHandlers[T]) Export(c *gin.Context) {
	rows := h.coll.Filter(c.Query("q"), c.Query("status"))
	f, err := export.Workbook(string(h.Resource()), h.columns, rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(h.Resource(), h.now())+`"`)
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if _, err := f.WriteTo(c.Writer); err != nil {
		c.Error(err)
	}
}
