package e2e

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wabdevconsult/batuta/domain"
)

const backendSecret = "e2e-backend-secret"

// BackendUser is an account known to the fake backend
type BackendUser struct {
	Password string
	Profile  domain.User
}

// FakeBackend is an in-memory stand-in for the REST backend: JWT auth plus
// the resource collections
type FakeBackend struct {
	Server *httptest.Server

	mu           sync.Mutex
	users        map[string]BackendUser
	tokens       map[string]string // token -> user email
	records      map[string]map[string]map[string]any
	logouts      int
	refreshes    int
	issueExpired bool
	refreshDown  bool
}

// NewFakeBackend starts the backend with one technician account
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &FakeBackend{
		users:   map[string]BackendUser{},
		tokens:  map[string]string{},
		records: map[string]map[string]map[string]any{},
	}
	b.AddUser(BackendUser{
		Password: "Tech123!",
		Profile:  domain.User{ID: "u-100", Email: "jules@batuta.fr", Role: domain.RoleTechnicien, FirstName: "Jules"},
	})

	r := gin.New()
	r.POST("/auth/login", b.login)
	r.POST("/auth/register", b.register)
	r.POST("/auth/logout", b.logout)
	r.POST("/auth/refresh", b.refresh)
	r.GET("/auth/me", b.me)
	r.GET("/notifications/unread-count", b.authorized(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"unread": 4})
	}))
	r.GET("/:res", b.authorized(b.list))
	r.GET("/:res/:id", b.authorized(b.get))
	r.PUT("/:res/:id", b.authorized(b.update))

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the backend base URL
func (b *FakeBackend) URL() string { return b.Server.URL }

func (b *FakeBackend) AddUser(u BackendUser) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[u.Profile.Email] = u
}

// Seed stores a record in collection res
func (b *FakeBackend) Seed(res string, rec map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.records[res] == nil {
		b.records[res] = map[string]map[string]any{}
	}
	b.records[res][rec["id"].(string)] = rec
}

// IssueExpired makes login hand out tokens that are already expired
func (b *FakeBackend) IssueExpired(v bool) {
	b.mu.Lock()
	b.issueExpired = v
	b.mu.Unlock()
}

// RefreshDown makes /auth/refresh fail
func (b *FakeBackend) RefreshDown(v bool) {
	b.mu.Lock()
	b.refreshDown = v
	b.mu.Unlock()
}

// RevokeAll forgets every issued token
func (b *FakeBackend) RevokeAll() {
	b.mu.Lock()
	b.tokens = map[string]string{}
	b.mu.Unlock()
}

func (b *FakeBackend) Logouts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logouts
}

func (b *FakeBackend) Refreshes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshes
}

// issueLocked signs a token for email
func (b *FakeBackend) issueLocked(email string, expired bool) string {
	u := b.users[email]
	exp := time.Now().Add(time.Hour)
	if expired {
		exp = time.Now().Add(-time.Minute)
	}
	claims := jwt.MapClaims{
		"sub":  u.Profile.ID,
		"role": string(u.Profile.Role),
		"jti":  uuid.NewString(),
		"iat":  time.Now().Unix(),
		"exp":  exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(backendSecret))
	if err != nil {
		panic(fmt.Sprintf("sign token: %v", err))
	}
	b.tokens[signed] = email
	return signed
}

func bearer(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

func (b *FakeBackend) authorized(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		b.mu.Lock()
		_, ok := b.tokens[bearer(c)]
		b.mu.Unlock()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token invalide"})
			return
		}
		next(c)
	}
}

func (b *FakeBackend) login(c *gin.Context) {
	var creds domain.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[creds.Email]
	if !ok || u.Password != creds.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Email ou mot de passe incorrect"})
		return
	}
	profile := u.Profile
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"user": profile, "token": b.issueLocked(creds.Email, b.issueExpired)}})
}

func (b *FakeBackend) register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[req.Email]; exists {
		c.JSON(http.StatusConflict, gin.H{"message": "Un compte existe déjà avec cet email"})
		return
	}
	role := req.Role
	if role == "" {
		role = domain.RoleClient
	}
	profile := domain.User{ID: uuid.NewString(), Email: req.Email, Role: role, FirstName: req.FirstName, LastName: req.LastName}
	b.users[req.Email] = BackendUser{Password: req.Password, Profile: profile}
	c.JSON(http.StatusCreated, gin.H{"user": profile, "access_token": b.issueLocked(req.Email, false)})
}

func (b *FakeBackend) logout(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logouts++
	delete(b.tokens, bearer(c))
	c.Status(http.StatusNoContent)
}

func (b *FakeBackend) refresh(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshes++
	email, ok := b.tokens[bearer(c)]
	if !ok || b.refreshDown {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Session expirée"})
		return
	}
	delete(b.tokens, bearer(c))
	c.JSON(http.StatusOK, gin.H{"token": b.issueLocked(email, false)})
}

func (b *FakeBackend) me(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	email, ok := b.tokens[bearer(c)]
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Token invalide"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": b.users[email].Profile})
}

func (b *FakeBackend) list(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []map[string]any{}
	for _, rec := range b.records[c.Param("res")] {
		out = append(out, rec)
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

func (b *FakeBackend) get(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[c.Param("res")][c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Introuvable"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (b *FakeBackend) update(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[c.Param("res")][c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Introuvable"})
		return
	}
	for k, v := range patch {
		rec[k] = v
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}
