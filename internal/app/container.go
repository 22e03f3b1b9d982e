package app

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/wabdevconsult/batuta/domain"
	"github.com/wabdevconsult/batuta/internal/config"
	"github.com/wabdevconsult/batuta/internal/infrastructure/api"
	"github.com/wabdevconsult/batuta/internal/infrastructure/auth"
	"github.com/wabdevconsult/batuta/internal/infrastructure/database"
	"github.com/wabdevconsult/batuta/internal/infrastructure/repositories"
	"github.com/wabdevconsult/batuta/internal/services"
)

// RedisKeyPrefix namespaces the session record in a shared Redis
const RedisKeyPrefix = "batuta:"

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Client      *api.Client

	// Auth
	Tokens    domain.TokenInspector
	Gateway   domain.AuthGateway
	Casbin    *auth.CasbinService
	Persister domain.SessionPersister

	// Services
	Audit         domain.AuditLogger
	Session       *services.SessionStore
	PolicySvc     domain.PolicyService
	Collections   *services.Collections
	Notifications *services.NotificationService
	Dashboard     *services.DashboardService
}

// NewContainer creates and initializes all dependencies.
// The session is not restored yet; call Restore for that.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg, Audit: services.NewLogAuditLogger()}

	if err := c.initDatabase(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initPersister(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initServices(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// initDatabase opens the SQL database when sessions or policies live there
func (c *Container) initDatabase() error {
	needSQL := c.Config.StorageDriver == config.StorageSQL || c.Config.CasbinPersist
	if !needSQL {
		return nil
	}

	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	c.DB = db
	if err := database.AutoMigrate(db, c.Config.CasbinPersist); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	if c.Config.StorageDriver != config.StorageRedis {
		return nil
	}
	rdb, err := database.ConnectRedis(ctx, c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	if err != nil {
		return err
	}
	c.RedisClient = rdb.Client
	return nil
}

func (c *Container) initPersister() error {
	switch c.Config.StorageDriver {
	case config.StorageFile:
		c.Persister = repositories.NewFileSessionRepository(c.Config.StoragePath)
	case config.StorageRedis:
		c.Persister = repositories.NewRedisSessionRepository(c.RedisClient, RedisKeyPrefix, c.Config.StorageKey)
	case config.StorageSQL:
		c.Persister = repositories.NewSQLSessionRepository(c.DB, c.Config.StorageKey)
	default:
		return fmt.Errorf("unknown storage driver %q", c.Config.StorageDriver)
	}
	return nil
}

// sessionToken lets the backend client read the token of a store built after it
type sessionToken struct{ c *Container }

func (t sessionToken) Token() string {
	if t.c.Session == nil {
		return ""
	}
	return t.c.Session.Token()
}

func (c *Container) initServices() error {
	c.Tokens = auth.NewJWTInspector()
	c.Client = api.NewClient(c.Config.BackendURL, c.Config.BackendTimeout, sessionToken{c})

	var demo *auth.DemoDirectory
	if c.Config.DemoEnabled {
		d, err := auth.NewDemoDirectory(auth.DemoAccounts)
		if err != nil {
			return fmt.Errorf("demo accounts: %w", err)
		}
		demo = d
		log.Println("auth: demo accounts enabled")
	}
	c.Gateway = auth.NewGateway(c.Client, demo, c.Tokens)

	var err error
	if c.Config.CasbinPersist {
		c.Casbin, err = auth.NewPersistentCasbinService(c.DB)
	} else {
		c.Casbin, err = auth.NewCasbinService()
	}
	if err != nil {
		return fmt.Errorf("casbin: %w", err)
	}
	c.PolicySvc = services.NewPolicyService(c.Casbin.E)

	c.Session = services.NewSessionStore(c.Gateway, c.Persister, c.Tokens, c.Audit, services.SessionOptions{
		ValidateRemote: c.Config.ValidateRemote,
	})
	c.Collections = services.NewCollections(c.Client)
	c.Notifications = services.NewNotificationService(c.Client, c.Session)
	c.Dashboard = services.NewDashboardService(c.PolicySvc, c.Collections, c.Notifications)
	return nil
}

// Restore hydrates the persisted session and revalidates it
func (c *Container) Restore(ctx context.Context) {
	c.Session.Hydrate(ctx)
	c.Session.CheckAuth(ctx)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.Session != nil {
		c.Session.Close()
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
