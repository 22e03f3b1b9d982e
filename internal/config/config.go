package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port" env:"BATUTA_PORT"`
	GinMode string `yaml:"gin_mode" env:"GIN_MODE"`
}

type BackendConfig struct {
	BaseURL string `yaml:"base_url" env:"BATUTA_API_URL"`
	Timeout string `yaml:"timeout" env:"BATUTA_API_TIMEOUT"`
}

type AuthConfig struct {
	DemoEnabled bool `yaml:"demo_enabled" env:"BATUTA_DEMO_ENABLED"`
}

type SessionConfig struct {
	ValidateRemote bool `yaml:"validate_remote" env:"BATUTA_SESSION_VALIDATE_REMOTE"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"BATUTA_STORAGE_DRIVER"`
	Path   string `yaml:"path" env:"BATUTA_STORAGE_PATH"`
	Key    string `yaml:"key" env:"BATUTA_STORAGE_KEY"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"BATUTA_DATABASE_DSN"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"BATUTA_REDIS_ADDR"`
	Password string `yaml:"password" env:"BATUTA_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"BATUTA_REDIS_DB"`
}

type CasbinConfig struct {
	Persist bool `yaml:"persist" env:"BATUTA_CASBIN_PERSIST"`
}

type NotificationsConfig struct {
	PollInterval string `yaml:"poll_interval" env:"BATUTA_NOTIFICATIONS_POLL_INTERVAL"`
}

type ConfigFile struct {
	App           AppConfig           `yaml:"app"`
	Backend       BackendConfig       `yaml:"backend"`
	Auth          AuthConfig          `yaml:"auth"`
	Session       SessionConfig       `yaml:"session"`
	Storage       StorageConfig       `yaml:"storage"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Casbin        CasbinConfig        `yaml:"casbin"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// Storage drivers for the persisted session record
const (
	StorageFile  = "file"
	StorageRedis = "redis"
	StorageSQL   = "sql"
)

type Config struct {
	Port                 string
	GinMode              string
	BackendURL           string
	BackendTimeout       time.Duration
	DemoEnabled          bool
	ValidateRemote       bool
	StorageDriver        string
	StoragePath          string
	StorageKey           string
	DSN                  string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	CasbinPersist        bool
	NotificationInterval time.Duration
}

// Defaults returns the configuration used when no file is present
func Defaults() *ConfigFile {
	return &ConfigFile{
		App:           AppConfig{Port: 8080, GinMode: "release"},
		Backend:       BackendConfig{BaseURL: "http://localhost:3000/api", Timeout: "15s"},
		Auth:          AuthConfig{DemoEnabled: true},
		Storage:       StorageConfig{Driver: StorageFile, Path: ".batuta/session.json", Key: "batuta-auth"},
		Redis:         RedisConfig{Addr: "localhost:6379"},
		Notifications: NotificationsConfig{PollInterval: "30s"},
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads the YAML file named by BATUTA_CONFIG, then applies environment overrides
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	configFile, err := loadConfigFile(env("BATUTA_CONFIG", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cleanenv.UpdateEnv(configFile); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return FromFile(configFile)
}

// FromFile validates a parsed file and converts it to the runtime configuration
func FromFile(configFile *ConfigFile) (*Config, error) {
	timeout, err := time.ParseDuration(configFile.Backend.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid backend timeout: %w", err)
	}

	pollInterval, err := time.ParseDuration(configFile.Notifications.PollInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid notifications poll interval: %w", err)
	}
	if pollInterval <= 0 {
		return nil, fmt.Errorf("notifications poll interval must be positive, got %s", pollInterval)
	}

	switch configFile.Storage.Driver {
	case StorageFile, StorageRedis:
	case StorageSQL:
		if configFile.Database.DSN == "" {
			return nil, errors.New("storage driver sql requires database.dsn")
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", configFile.Storage.Driver)
	}

	if configFile.Casbin.Persist && configFile.Database.DSN == "" {
		return nil, errors.New("casbin.persist requires database.dsn")
	}

	return &Config{
		Port:                 fmt.Sprintf("%d", configFile.App.Port),
		GinMode:              configFile.App.GinMode,
		BackendURL:           configFile.Backend.BaseURL,
		BackendTimeout:       timeout,
		DemoEnabled:          configFile.Auth.DemoEnabled,
		ValidateRemote:       configFile.Session.ValidateRemote,
		StorageDriver:        configFile.Storage.Driver,
		StoragePath:          configFile.Storage.Path,
		StorageKey:           configFile.Storage.Key,
		DSN:                  configFile.Database.DSN,
		RedisAddr:            configFile.Redis.Addr,
		RedisPassword:        configFile.Redis.Password,
		RedisDB:              configFile.Redis.DB,
		CasbinPersist:        configFile.Casbin.Persist,
		NotificationInterval: pollInterval,
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	config := Defaults()

	bytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(bytes, config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return config, nil
}
