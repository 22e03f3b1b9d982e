package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wabdevconsult/batuta/domain"
	"github.com/wabdevconsult/batuta/internal/infrastructure/api"
	"github.com/wabdevconsult/batuta/internal/mocks"
)

// createSessionStoreForTest creates a SessionStore with mock dependencies
func createSessionStoreForTest(t *testing.T, gateway *mocks.MockAuthGateway, persister *mocks.MockSessionPersister, opts SessionOptions) (*SessionStore, *mocks.MockAuditLogger) {
	t.Helper()

	if gateway == nil {
		gateway = mocks.NewMockAuthGateway()
	}
	if persister == nil {
		persister = mocks.NewMockSessionPersister()
	}
	audit := mocks.NewMockAuditLogger()
	store := NewSessionStore(gateway, persister, mocks.NewMockTokenInspector(), audit, opts)
	t.Cleanup(store.Close)
	return store, audit
}

func createUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()

	return &domain.User{
		ID:        "u-" + string(role),
		Email:     string(role) + "@batuta.fr",
		Role:      role,
		FirstName: "Test",
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func createAuthResult(t *testing.T, role domain.Role, token string) *domain.AuthResult {
	t.Helper()
	return &domain.AuthResult{User: createUser(t, role), Token: token}
}

// createTestContext creates a context for testing with timeout
func createTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// fakeREST serves one resource collection from memory, like the backend does
type fakeREST struct {
	mu      sync.Mutex
	order   []string
	records map[string]map[string]any
	nextID  int
	failing bool
	// gate, when set, is waited on before answering the given method
	gate map[string]chan struct{}
	// answer, when set, delays list responses after the list was read
	answer chan struct{}
	listed int
}

func newFakeREST(t *testing.T, resource domain.Resource, seed ...map[string]any) (*fakeREST, *api.Client) {
	t.Helper()

	f := &fakeREST{records: map[string]map[string]any{}, gate: map[string]chan struct{}{}}
	for _, rec := range seed {
		f.put(rec)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	base := resource.Path()
	r.Use(f.middleware)
	r.GET(base, f.list)
	r.GET(base+"/:id", f.get)
	r.POST(base, f.create)
	r.PUT(base+"/:id", f.update)
	r.DELETE(base+"/:id", f.remove)
	r.GET("/notifications/unread-count", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"count": 3})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, api.NewClient(srv.URL, 2*time.Second, api.StaticToken("demo-token-admin"))
}

func (f *fakeREST) middleware(c *gin.Context) {
	f.mu.Lock()
	failing := f.failing
	gate := f.gate[c.Request.Method]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	if failing {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Service indisponible"})
		return
	}
	c.Next()
}

// hold makes requests with method wait until the returned func is called
func (f *fakeREST) hold(method string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gate[method] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeREST) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

func (f *fakeREST) put(rec map[string]any) map[string]any {
	id, _ := rec["id"].(string)
	if id == "" {
		f.nextID++
		id = fmt.Sprintf("gen-%d", f.nextID)
		rec["id"] = id
	}
	if _, ok := f.records[id]; !ok {
		f.order = append(f.order, id)
	}
	f.records[id] = rec
	return rec
}

func (f *fakeREST) list(c *gin.Context) {
	f.mu.Lock()
	out := make([]map[string]any, 0, len(f.order))
	for _, id := range f.order {
		rec := make(map[string]any, len(f.records[id]))
		for k, v := range f.records[id] {
			rec[k] = v
		}
		out = append(out, rec)
	}
	f.listed++
	answer := f.answer
	f.mu.Unlock()

	if answer != nil {
		select {
		case <-answer:
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": out})
}

// holdListAnswer lets list requests read the records but keeps the response
// until the returned func is called
func (f *fakeREST) holdListAnswer() func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.answer = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeREST) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listed
}

func (f *fakeREST) get(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Introuvable"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (f *fakeREST) create(c *gin.Context) {
	var rec map[string]any
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c.JSON(http.StatusCreated, f.put(rec))
}

func (f *fakeREST) update(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Introuvable"})
		return
	}
	for k, v := range patch {
		rec[k] = v
	}
	c.JSON(http.StatusOK, rec)
}

func (f *fakeREST) remove(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := c.Param("id")
	if _, ok := f.records[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Introuvable"})
		return
	}
	delete(f.records, id)
	for i, o := range f.order {
		if o == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	c.Status(http.StatusNoContent)
}

func installationJSON(id, title string, status domain.WorkStatus) map[string]any {
	return map[string]any{
		"id":     id,
		"title":  title,
		"status": string(status),
		"client": map[string]any{"id": "c1", "companyName": "Boulangerie Dubois"},
	}
}
