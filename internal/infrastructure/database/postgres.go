package database

import (
	"fmt"
	"strings"

	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/wabdevconsult/batuta/internal/infrastructure/repositories"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the session database. postgres:// and host=... DSNs use
// the Postgres driver, anything else is treated as a sqlite path.
func Open(dsn string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	if isPostgres(dsn) {
		return gorm.Open(postgres.Open(dsn), config)
	}
	return gorm.Open(sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), config)
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// AutoMigrate creates the session table and, when policies are persisted,
// the casbin rule table
func AutoMigrate(db *gorm.DB, withPolicies bool) error {
	if err := db.AutoMigrate(&repositories.SessionRecord{}); err != nil {
		return fmt.Errorf("failed to migrate session_records table: %w", err)
	}

	if withPolicies {
		// the adapter creates casbin_rule on construction
		if _, err := gormadapter.NewAdapterByDB(db); err != nil {
			return fmt.Errorf("failed to initialize Casbin GORM adapter: %w", err)
		}
	}
	return nil
}
