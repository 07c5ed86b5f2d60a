package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Argon2  Argon2Config
	OTEL    OTELConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// JWTConfig holds token signing configuration. The secret is loaded once at
// startup and shared read-only; any process holding the same secret can
// validate any token.
type JWTConfig struct {
	Secret string
	// SessionTTL is the lifetime of a full session token.
	SessionTTL time.Duration
	// FollowOnTTL is the lifetime of an org-selection follow-on token. Kept
	// deliberately short: the token proves a completed credential check and
	// nothing more.
	FollowOnTTL time.Duration
}

// Argon2Config holds password hashing cost parameters. Hashing is meant to be
// expensive (roughly Memory KiB of RAM and a few tens of milliseconds per
// call at the defaults); do not lower these for convenience.
type Argon2Config struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	// MaxConcurrent caps in-flight hash derivations so login bursts cannot
	// turn the hashing cost into a memory amplifier.
	MaxConcurrent int64
}

// OTELConfig holds OpenTelemetry export configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	InstanceID     string
	Token          string
}

// Load reads configuration from environment variables.
// It attempts to load from .env file first, then falls back to system env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "vostuff"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			SessionTTL:  time.Duration(getEnvAsInt64("JWT_SESSION_TTL_HOURS", 24)) * time.Hour,
			FollowOnTTL: 5 * time.Minute,
		},
		Argon2: Argon2Config{
			Memory:        uint32(getEnvAsInt64("ARGON2_MEMORY_KIB", 64*1024)),
			Iterations:    uint32(getEnvAsInt64("ARGON2_ITERATIONS", 1)),
			Parallelism:   uint8(getEnvAsInt64("ARGON2_PARALLELISM", 4)),
			KeyLength:     32,
			MaxConcurrent: getEnvAsInt64("ARGON2_MAX_CONCURRENT", 8),
		},
		OTEL: OTELConfig{
			Enabled:        getEnv("OTEL_ENABLED", "false") == "true",
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "vostuff-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.SessionTTL <= 0 {
		return fmt.Errorf("JWT_SESSION_TTL_HOURS must be positive")
	}
	if c.OTEL.Enabled && c.OTEL.Endpoint == "" {
		return fmt.Errorf("OTEL_ENDPOINT is required when OTEL_ENABLED=true")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
