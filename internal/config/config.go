package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Logger   LoggerConfig
	CORS     CORSConfig
	Matching MatchingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL            string        // Required
	MigrationsPath string        // Default: "migrations"
	HealthTimeout  time.Duration // Default: 5s
	MaxConns       int32         // Default: 8
	MinConns       int32         // Default: 2
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        // Default: "127.0.0.1"
	Port            int           // Default: 8080
	ShutdownTimeout time.Duration // Default: 30s
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // Default: "info" (trace, debug, info, warn, error, fatal, panic)
	Environment string // production|development|staging|test (affects format)
}

// CORSConfig holds CORS middleware settings
type CORSConfig struct {
	AllowAll    bool   // Default: false
	FrontendURL string // Used when AllowAll=false
}

// MatchingConfig holds suggestion-engine tunables
type MatchingConfig struct {
	AutoAssignThreshold int           // Default: 70, minimum confidence for bulk parent assignment
	ParentLimit         int           // Default: 3, suggestions per facility
	FormLimit           int           // Default: 3, form-record suggestions per facility
	CacheSize           int           // Default: 4096 entries per suggestion kind
	CacheTTL            time.Duration // Default: 15m
	WarmEnabled         bool          // Default: false, nightly cache warm
	WarmCronSpec        string        // Default: "0 0 3 * * *"
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Constants for default values
const (
	DefaultMigrationsPath      = "migrations"
	DefaultServerHost          = "127.0.0.1"
	DefaultServerPort          = 8080
	DefaultShutdownTimeout     = 30 * time.Second
	DefaultHealthCheckTimeout  = 5 * time.Second
	DefaultLogLevel            = "info"
	DefaultEnvironment         = "development"
	DefaultMaxConns            = 8
	DefaultMinConns            = 2
	DefaultAutoAssignThreshold = 70
	DefaultParentLimit         = 3
	DefaultFormLimit           = 3
	DefaultCacheSize           = 4096
	DefaultCacheTTL            = 15 * time.Minute
	DefaultWarmCronSpec        = "0 0 3 * * *"
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MigrationsPath: getEnv("MIGRATIONS_PATH", DefaultMigrationsPath),
			HealthTimeout:  DefaultHealthCheckTimeout,
			MaxConns:       int32(getEnvAsInt("DB_MAX_CONNS", DefaultMaxConns)),
			MinConns:       int32(getEnvAsInt("DB_MIN_CONNS", DefaultMinConns)),
		},
		Server: ServerConfig{
			Host:            getEnv("HOST", DefaultServerHost),
			Port:            getEnvAsInt("PORT", DefaultServerPort),
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", DefaultLogLevel),
			Environment: getEnv("APP_ENV", DefaultEnvironment),
		},
		CORS: CORSConfig{
			AllowAll:    getEnvAsBool("CORS_ALLOW_ALL", false),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		},
		Matching: MatchingConfig{
			AutoAssignThreshold: getEnvAsInt("MATCH_AUTO_ASSIGN_THRESHOLD", DefaultAutoAssignThreshold),
			ParentLimit:         getEnvAsInt("MATCH_PARENT_LIMIT", DefaultParentLimit),
			FormLimit:           getEnvAsInt("MATCH_FORM_LIMIT", DefaultFormLimit),
			CacheSize:           getEnvAsInt("MATCH_CACHE_SIZE", DefaultCacheSize),
			CacheTTL:            getEnvAsDuration("MATCH_CACHE_TTL", DefaultCacheTTL),
			WarmEnabled:         getEnvAsBool("MATCH_WARM_ENABLED", false),
			WarmCronSpec:        getEnv("MATCH_WARM_CRON", DefaultWarmCronSpec),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	var errors ValidationErrors

	// Required: DATABASE_URL
	if c.Database.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "DATABASE_URL",
			Message: "database URL is required",
		})
	}

	// Server port range
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "PORT",
			Message: fmt.Sprintf("port must be between 0 and 65535, got %d", c.Server.Port),
		})
	}

	// Log level validation
	validLogLevels := []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic"}
	if !contains(validLogLevels, strings.ToLower(c.Logger.Level)) {
		errors = append(errors, ValidationError{
			Field:   "LOG_LEVEL",
			Message: fmt.Sprintf("invalid log level %q, must be one of: %v", c.Logger.Level, validLogLevels),
		})
	}

	// Environment validation
	validEnvs := []string{"production", "development", "staging", "test"}
	if !contains(validEnvs, c.Logger.Environment) {
		errors = append(errors, ValidationError{
			Field:   "APP_ENV",
			Message: fmt.Sprintf("invalid environment %q, must be one of: %v", c.Logger.Environment, validEnvs),
		})
	}

	// Threshold range: confidence scores are integers in [0, 100]
	if c.Matching.AutoAssignThreshold < 0 || c.Matching.AutoAssignThreshold > 100 {
		errors = append(errors, ValidationError{
			Field:   "MATCH_AUTO_ASSIGN_THRESHOLD",
			Message: fmt.Sprintf("threshold must be between 0 and 100, got %d", c.Matching.AutoAssignThreshold),
		})
	}

	if c.Matching.ParentLimit < 1 {
		errors = append(errors, ValidationError{
			Field:   "MATCH_PARENT_LIMIT",
			Message: fmt.Sprintf("limit must be at least 1, got %d", c.Matching.ParentLimit),
		})
	}

	if c.Matching.FormLimit < 1 {
		errors = append(errors, ValidationError{
			Field:   "MATCH_FORM_LIMIT",
			Message: fmt.Sprintf("limit must be at least 1, got %d", c.Matching.FormLimit),
		})
	}

	if c.Matching.CacheSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "MATCH_CACHE_SIZE",
			Message: fmt.Sprintf("cache size must be at least 1, got %d", c.Matching.CacheSize),
		})
	}

	if len(errors) > 0 {
		return errors
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Logger.Environment == "production"
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer with a fallback default
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool retrieves an environment variable as a boolean with a fallback default
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as a duration with a fallback default
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// contains checks if a slice contains a string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
