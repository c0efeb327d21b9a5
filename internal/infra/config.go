package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAdminSecret is the placeholder shipped in example configuration.
// Running with it outside a local environment is a fatal misconfiguration.
const DefaultAdminSecret = "changethis"

// Config represents application configuration loaded from environment variables.
type Config struct {
	ProjectName      string
	AppEnv           string
	Port             string
	DatabaseURL      string
	DBMaxConns       int32
	DBConnectTimeout time.Duration
	AdminSecret      string
	RetentionDays    int
	SweepInterval    time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. A `.env` file is honored when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	cfg := &Config{
		ProjectName:      getEnv("PROJECT_NAME", "Ko-fi API"),
		AppEnv:           getEnv("APP_ENV", "local"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DBMaxConns:       int32(getEnvInt("DB_MAX_CONNS", 10)),
		DBConnectTimeout: time.Second * time.Duration(getEnvInt("DB_CONNECT_TIMEOUT_SECONDS", 10)),
		AdminSecret:      getEnv("ADMIN_SECRET_KEY", DefaultAdminSecret),
		RetentionDays:    getEnvInt("DATA_RETENTION_DAYS", 10),
		SweepInterval:    time.Hour * time.Duration(getEnvInt("SWEEP_INTERVAL_HOURS", 24)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("DATA_RETENTION_DAYS must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.AdminSecret == DefaultAdminSecret && cfg.AppEnv != "local" {
		return nil, fmt.Errorf("ADMIN_SECRET_KEY is %q; set a real secret for %s deployments", DefaultAdminSecret, cfg.AppEnv)
	}

	return cfg, nil
}

// InsecureAdminSecret reports whether the placeholder secret is in use.
// Permitted in local environments, but callers should log loudly.
func (c *Config) InsecureAdminSecret() bool {
	return c.AdminSecret == DefaultAdminSecret
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
