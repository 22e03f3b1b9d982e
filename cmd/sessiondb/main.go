package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wabdevconsult/batuta/domain"
	"github.com/wabdevconsult/batuta/internal/app"
	"github.com/wabdevconsult/batuta/internal/config"
	"github.com/wabdevconsult/batuta/internal/infrastructure/database"
	"github.com/wabdevconsult/batuta/internal/infrastructure/repositories"
)

// Checks that the configured session storage is reachable and migrated
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fmt.Println("Batuta session storage check")
	fmt.Println("============================")
	fmt.Printf("Driver: %s\n", cfg.StorageDriver)

	var persister domain.SessionPersister
	switch cfg.StorageDriver {
	case config.StorageFile:
		fmt.Printf("Path: %s\n", cfg.StoragePath)
		persister = repositories.NewFileSessionRepository(cfg.StoragePath)

	case config.StorageRedis:
		fmt.Printf("Connecting to: %s (db %d)\n", cfg.RedisAddr, cfg.RedisDB)
		rdb, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		fmt.Println("✓ Redis connection successful")
		persister = repositories.NewRedisSessionRepository(rdb.Client, app.RedisKeyPrefix, cfg.StorageKey)

	case config.StorageSQL:
		db, err := database.Open(cfg.DSN)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatalf("Failed to get underlying sql.DB: %v", err)
		}
		defer sqlDB.Close()
		if err := sqlDB.PingContext(ctx); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}
		fmt.Println("✓ Database connection successful")

		if err := database.AutoMigrate(db, cfg.CasbinPersist); err != nil {
			log.Fatalf("Failed to run auto-migration: %v", err)
		}
		fmt.Println("✓ AutoMigrate completed successfully")

		var records int64
		if err := db.Model(&repositories.SessionRecord{}).Count(&records).Error; err != nil {
			log.Fatalf("Failed to query session_records table: %v", err)
		}
		fmt.Printf("✓ Session table accessible (current count: %d)\n", records)
		persister = repositories.NewSQLSessionRepository(db, cfg.StorageKey)

	default:
		log.Fatalf("unknown storage driver %q", cfg.StorageDriver)
	}

	session, err := persister.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		fmt.Println("✓ Storage readable, no session stored")
	case errors.Is(err, domain.ErrSessionCorrupt):
		fmt.Printf("⚠ Stored session is unreadable and will be discarded at startup: %v\n", err)
	case err != nil:
		log.Fatalf("Failed to read stored session: %v", err)
	case session.State.User == nil:
		fmt.Println("✓ Storage readable, stored session is logged out")
	default:
		fmt.Printf("✓ Stored session for %s (%s)\n", session.State.User.Email, session.State.User.Role)
	}
}
