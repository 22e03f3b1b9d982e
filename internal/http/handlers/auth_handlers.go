package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wabdevconsult/batuta/domain"
	"github.com/wabdevconsult/batuta/internal/infrastructure/auth"
	"github.com/wabdevconsult/batuta/internal/services"
)

// AuthHandlers drives the console's session store over HTTP
type AuthHandlers struct {
	store *services.SessionStore
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(store *services.SessionStore) *AuthHandlers {
	return &AuthHandlers{store: store}
}

// SessionView is the session as shown to the browser. The token stays server side.
type SessionView struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user"`
	Demo          bool         `json:"demo"`
	Loading       bool         `json:"loading"`
	Error         string       `json:"error,omitempty"`
}

func viewOf(s domain.Session) SessionView {
	return SessionView{
		Authenticated: s.User != nil && s.Token != "",
		User:          s.User,
		Demo:          strings.HasPrefix(s.Token, auth.DemoTokenPrefix),
		Loading:       s.Loading,
		Error:         s.Error,
	}
}

// Login handles console login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req domain.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Login(c.Request.Context(), req); err != nil {
		respondError(c, err, h.store.Snapshot().Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": viewOf(h.store.Snapshot())})
}

// Register handles account creation followed by login
func (h *AuthHandlers) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role != "" && !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	if err := h.store.Register(c.Request.Context(), req); err != nil {
		respondError(c, err, h.store.Snapshot().Error)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": viewOf(h.store.Snapshot())})
}

// Logout clears the session whatever the backend says
func (h *AuthHandlers) Logout(c *gin.Context) {
	h.store.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message": "Logged out successfully",
		},
	})
}

// Session returns the current session
func (h *AuthHandlers) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": viewOf(h.store.Snapshot())})
}

// Check revalidates the persisted session and returns the outcome
func (h *AuthHandlers) Check(c *gin.Context) {
	h.store.CheckAuth(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": viewOf(h.store.Snapshot())})
}
