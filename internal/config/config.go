package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	Port           string
	StoreDriver    string // sqlite | postgres
	DBPath         string
	PostgresDSN    string
	JWTSecret      string
	RequireAuth    bool
	LogLevel       string
	ImportWorkers  int
	MaxUploadBytes int64
	RateLimit      int
	RateWindow     time.Duration
	ThresholdsFile string

	Thresholds Thresholds
}

// DefaultJWTSecret 仅用于未启用鉴权时
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Load 加载配置
func Load() (*Config, error) {
	// .env 可选
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", ":8080"),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
		DBPath:         getEnv("DB_PATH", "./data/metrics.db"),
		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
		RequireAuth:    getEnvAsBool("REQUIRE_AUTH", false),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ImportWorkers:  getEnvAsInt("IMPORT_WORKERS", 4),
		MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 32<<20)),
		RateLimit:      getEnvAsInt("RATE_LIMIT", 120),
		RateWindow:     getEnvAsDuration("RATE_WINDOW", time.Minute),
		ThresholdsFile: getEnv("THRESHOLDS_FILE", ""),
		Thresholds:     DefaultThresholds(),
	}

	if !strings.HasPrefix(cfg.Port, ":") && !strings.Contains(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}

	if cfg.ThresholdsFile != "" {
		th, err := LoadThresholds(cfg.ThresholdsFile)
		if err != nil {
			return nil, err
		}
		cfg.Thresholds = th
	}

	if cfg.RateLimit > 0 && cfg.RateWindow <= 0 {
		return nil, fmt.Errorf("RATE_WINDOW must be positive when RATE_LIMIT is set, got %s", cfg.RateWindow)
	}

	// 启用鉴权时不允许使用默认密钥
	if cfg.RequireAuth && (cfg.JWTSecret == "" || cfg.JWTSecret == DefaultJWTSecret) {
		return nil, fmt.Errorf("JWT_SECRET must be set to a private value when REQUIRE_AUTH=true")
	}

	switch cfg.StoreDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("POSTGRES_DSN is required when STORE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
