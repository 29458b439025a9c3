package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/farmhand-io/farmhand/pkg/observability"
	"github.com/farmhand-io/farmhand/pkg/storage/postgres"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database postgres.Config

	// Invitation configuration
	Invitations InvitationConfig

	// Mail configuration
	Mail MailConfig

	// Redis configuration (rate limiting)
	Redis RedisConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// InvitationConfig holds invitation token and cleanup settings
type InvitationConfig struct {
	// TokenSecret signs invitation join tokens. Required in production.
	TokenSecret string

	// TokenTTL is how long an invitation stays acceptable.
	TokenTTL time.Duration

	// JoinBaseURL is the public frontend URL embedded in invitation emails.
	JoinBaseURL string

	// JanitorEnabled turns on periodic expired-invitation cleanup.
	JanitorEnabled bool

	// JanitorSchedule is a cron expression for the cleanup job.
	JanitorSchedule string
}

// MailConfig holds outbound email settings
type MailConfig struct {
	// Enabled selects the SMTP mailer; when false invitation emails are
	// written to the log instead.
	Enabled  bool
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// RedisConfig holds Redis connection settings for rate limiting
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Database:      loadDatabaseConfig(),
		Invitations:   loadInvitationConfig(),
		Mail:          loadMailConfig(),
		Redis:         loadRedisConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("FARMHAND_HOST", "0.0.0.0"),
		Port:            getEnv("FARMHAND_PORT", "8080"),
		ReadTimeout:     getEnvDuration("FARMHAND_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("FARMHAND_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("FARMHAND_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("FARMHAND_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("FARMHAND_HEALTH_PORT", "9090"),
	}
}

// loadDatabaseConfig loads database configuration from environment
func loadDatabaseConfig() postgres.Config {
	return postgres.Config{
		Driver:      getEnv("FARMHAND_DB_DRIVER", "postgres"),
		URL:         getEnv("FARMHAND_DB_URL", ""),
		MaxConns:    getEnvInt("FARMHAND_DB_MAX_CONNS", 25),
		MinConns:    getEnvInt("FARMHAND_DB_MIN_CONNS", 5),
		Timeout:     getEnvDuration("FARMHAND_DB_TIMEOUT", 10*time.Second),
		MaxLifetime: getEnvDuration("FARMHAND_DB_MAX_LIFETIME", 30*time.Minute),
		MaxIdleTime: getEnvDuration("FARMHAND_DB_MAX_IDLE_TIME", 5*time.Minute),
	}
}

// loadInvitationConfig loads invitation settings from environment
func loadInvitationConfig() InvitationConfig {
	return InvitationConfig{
		TokenSecret:     getEnv("FARMHAND_INVITE_TOKEN_SECRET", ""),
		TokenTTL:        getEnvDuration("FARMHAND_INVITE_TOKEN_TTL", 7*24*time.Hour),
		JoinBaseURL:     getEnv("FARMHAND_JOIN_BASE_URL", "http://localhost:3000"),
		JanitorEnabled:  getEnvBool("FARMHAND_JANITOR_ENABLED", false),
		JanitorSchedule: getEnv("FARMHAND_JANITOR_SCHEDULE", "@hourly"),
	}
}

// loadMailConfig loads outbound email settings from environment
func loadMailConfig() MailConfig {
	return MailConfig{
		Enabled:  getEnvBool("FARMHAND_MAIL_ENABLED", false),
		Host:     getEnv("FARMHAND_SMTP_HOST", "localhost"),
		Port:     getEnvInt("FARMHAND_SMTP_PORT", 587),
		From:     getEnv("FARMHAND_SMTP_FROM", "no-reply@farmhand.local"),
		Username: getEnv("FARMHAND_SMTP_USERNAME", ""),
		Password: getEnv("FARMHAND_SMTP_PASSWORD", ""),
	}
}

// loadRedisConfig loads Redis settings from environment
func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:           getEnvBool("FARMHAND_REDIS_ENABLED", false),
		Addr:              getEnv("FARMHAND_REDIS_ADDR", "localhost:6379"),
		Password:          getEnv("FARMHAND_REDIS_PASSWORD", ""),
		DB:                getEnvInt("FARMHAND_REDIS_DB", 0),
		RateLimitRequests: getEnvInt("FARMHAND_RATE_LIMIT_REQUESTS", 300),
		RateLimitWindow:   getEnvDuration("FARMHAND_RATE_LIMIT_WINDOW", time.Minute),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       observability.ParseLogLevel(getEnv("FARMHAND_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("FARMHAND_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database URL is required for the postgres driver")
		}
	case "sqlite3":
		if c.Database.URL == "" {
			return fmt.Errorf("database path is required for the sqlite3 driver")
		}
	default:
		return fmt.Errorf("invalid database driver: %s (must be postgres or sqlite3)", c.Database.Driver)
	}

	if c.Invitations.TokenSecret == "" {
		return fmt.Errorf("invitation token secret is required")
	}
	if c.Invitations.TokenTTL <= 0 {
		return fmt.Errorf("invitation token TTL must be positive")
	}
	if c.Invitations.JoinBaseURL == "" {
		return fmt.Errorf("join base URL is required")
	}

	if c.Mail.Enabled {
		if c.Mail.Host == "" {
			return fmt.Errorf("SMTP host is required when mail is enabled")
		}
		if c.Mail.From == "" {
			return fmt.Errorf("SMTP from address is required when mail is enabled")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required when redis is enabled")
		}
		if c.Redis.RateLimitRequests <= 0 {
			return fmt.Errorf("rate limit request count must be positive")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
