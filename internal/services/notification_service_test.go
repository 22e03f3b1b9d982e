package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wabdevconsult/batuta/internal/infrastructure/api"
)

func newNotificationBackend(t *testing.T, handler gin.HandlerFunc) *api.Client {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/notifications/unread-count", handler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, time.Second, nil)
}

func TestNotificationService_Refresh(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		expect int
	}{
		{"count field", gin.H{"count": 4}, 4},
		{"unread field", gin.H{"unread": 2}, 2},
		{"bare number", 7, 7},
		{"data envelope", gin.H{"success": true, "data": gin.H{"count": 1}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newNotificationBackend(t, func(c *gin.Context) { c.JSON(http.StatusOK, tt.body) })
			svc := NewNotificationService(client, api.StaticToken("jwt"))

			require.NoError(t, svc.Refresh(createTestContext(t)))
			assert.Equal(t, tt.expect, svc.State().Unread)
			assert.False(t, svc.State().UpdatedAt.IsZero())
		})
	}
}

func TestNotificationService_FailureKeepsCount(t *testing.T) {
	var failing atomic.Bool
	client := newNotificationBackend(t, func(c *gin.Context) {
		if failing.Load() {
			c.JSON(http.StatusBadGateway, gin.H{"message": "Passerelle indisponible"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": 5})
	})
	svc := NewNotificationService(client, api.StaticToken("jwt"))
	ctx := createTestContext(t)

	require.NoError(t, svc.Refresh(ctx))
	failing.Store(true)
	require.Error(t, svc.Refresh(ctx))

	state := svc.State()
	assert.Equal(t, 5, state.Unread)
	assert.Equal(t, "Passerelle indisponible", state.Error)
}

func TestNotificationService_LoggedOut(t *testing.T) {
	var calls atomic.Int32
	client := newNotificationBackend(t, func(c *gin.Context) {
		calls.Add(1)
		c.JSON(http.StatusOK, gin.H{"count": 5})
	})
	svc := NewNotificationService(client, api.StaticToken(""))

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Zero(t, svc.State().Unread)
	assert.Zero(t, calls.Load())
}
