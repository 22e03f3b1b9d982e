package config

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/wabdevconsult/batuta/internal/config"
)

// LoadTestConfig builds a console configuration for E2E testing against
// backendURL. Storage lives in t.TempDir(); the redis driver gets a
// miniredis instance and the sql driver a sqlite file.
func LoadTestConfig(t *testing.T, driver, backendURL string) *config.Config {
	t.Helper()

	dir := t.TempDir()
	file := config.Defaults()
	file.App.GinMode = "test"
	file.Backend.BaseURL = backendURL
	file.Backend.Timeout = "2s"
	file.Storage.Driver = driver
	file.Storage.Path = filepath.Join(dir, "session.json")
	file.Database.DSN = "sqlite://" + filepath.Join(dir, "batuta.db")
	file.Casbin.Persist = true
	file.Notifications.PollInterval = "50ms"

	if driver == config.StorageRedis {
		file.Redis.Addr = StartRedis(t)
		file.Redis.DB = GetTestRedisDB()
	}

	cfg, err := config.FromFile(file)
	if err != nil {
		t.Fatalf("Failed to load test configuration: %v", err)
	}

	t.Logf("Test config loaded - driver: %s, backend: %s", cfg.StorageDriver, cfg.BackendURL)
	return cfg
}

// StartRedis runs an in-process redis for the duration of the test
func StartRedis(t *testing.T) string {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr.Addr()
}

// GetTestRedisDB returns the Redis database number for tests
func GetTestRedisDB() int {
	return 1 // Use DB 1 for tests to avoid conflicts with dev data
}

// StorageDrivers lists every session storage driver E2E tests run against
func StorageDrivers() []string {
	return []string{config.StorageFile, config.StorageRedis, config.StorageSQL}
}
