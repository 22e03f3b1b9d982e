package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wabdevconsult/batuta/internal/config"
	httpx "github.com/wabdevconsult/batuta/internal/http"
	"github.com/wabdevconsult/batuta/internal/http/handlers"
	"github.com/wabdevconsult/batuta/internal/http/middleware"
	"github.com/wabdevconsult/batuta/internal/infrastructure/export"
	"github.com/wabdevconsult/batuta/internal/services"
)

const shutdownTimeout = 10 * time.Second

// NewRouter mounts the console API over the container's services
func NewRouter(c *Container) *gin.Engine {
	cols := c.Collections
	h := httpx.Handlers{
		Auth:          handlers.NewAuthHandlers(c.Session),
		Policies:      handlers.NewPolicyHandlers(c.PolicySvc),
		Dashboard:     handlers.NewDashboardHandlers(c.Dashboard, c.Notifications),
		Installations: handlers.NewResourceHandlers(cols.Installations, export.InstallationColumns, c.Audit),
		Equipments:    handlers.NewResourceHandlers(cols.Equipments, export.EquipmentColumns, c.Audit),
		Interventions: handlers.NewResourceHandlers(cols.Interventions, export.InterventionColumns, c.Audit),
		Clients:       handlers.NewResourceHandlers(cols.Clients, export.ClientColumns, c.Audit),
		QuoteRequests: handlers.NewResourceHandlers(cols.QuoteRequests, export.QuoteRequestColumns, c.Audit),
	}
	return httpx.BuildRouter(h, middleware.NewAuthMW(c.Session), middleware.NewCasbinMW(c.PolicySvc, c.Audit))
}

// Run serves the console until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, cfg *config.Config) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	c.Restore(ctx)
	if s := c.Session.Snapshot(); s.User != nil {
		log.Printf("session: restored %s (%s)", s.User.Email, s.User.Role)
	}

	poller := services.NewPoller("notifications", cfg.NotificationInterval, c.Notifications.Refresh)
	poller.Start(ctx)
	defer poller.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewRouter(c),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s (backend %s)", srv.Addr, cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Println("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
	return nil
}
