package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server config
	Server ServerConfig

	// database config
	Database DatabaseConfig

	// remote functions platform config
	Functions FunctionsConfig

	// logging config
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr         string
	Environment  string // development, staging, production
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

// FunctionsConfig holds the remote functions platform settings.
// The service key authorizes invocation of the hosted functions
// (analyze-call, send-email).
type FunctionsConfig struct {
	BaseURL    string
	ServiceKey string
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level string // debug, info, warn, error
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	// This is useful for local development but not required in production
	// where env vars are typically set by the orchestration platform
	_ = godotenv.Load()

	cfg := &Config{}

	// Load server configuration
	readTimeout, err := durationEnv("SERVER_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := durationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	idleTimeout, err := durationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.Server = ServerConfig{
		Addr:         getEnvOrDefault("SERVER_ADDR", ":8080"),
		Environment:  getEnvOrDefault("APP_ENV", "development"),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	// Load database configuration
	maxConns, err := strconv.Atoi(getEnvOrDefault("DATABASE_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnvOrDefault("DATABASE_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_MIN_CONNS: %w", err)
	}

	cfg.Database = DatabaseConfig{
		URL:      os.Getenv("DATABASE_URL"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Load functions platform configuration
	cfg.Functions = FunctionsConfig{
		BaseURL:    os.Getenv("FUNCTIONS_BASE_URL"),
		ServiceKey: os.Getenv("FUNCTIONS_SERVICE_KEY"),
	}

	// Load logging configuration
	cfg.Logging = LoggingConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present and valid.
// This implements the "fail fast" principle - better to fail at startup
// than to fail later when a missing config is accessed.
func (c *Config) validate() error {
	var errs []error

	// Database URL is always required
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}

	// Functions platform is required for analysis and email dispatch
	if c.Functions.BaseURL == "" {
		errs = append(errs, errors.New("FUNCTIONS_BASE_URL is required"))
	}
	if c.Functions.ServiceKey == "" {
		errs = append(errs, errors.New("FUNCTIONS_SERVICE_KEY is required"))
	}

	// Validate environment is a known value
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.Server.Environment] {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of: development, staging, production (got: %s)", c.Server.Environment))
	}

	// Validate log level is a known value
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", c.Logging.Level))
	}

	// Combine all errors
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%w", errors.Join(errs...))
	}

	return nil
}

// getEnvOrDefault returns the .env value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return duration, nil
}

// MustLoad is like Load but panics on error.
// Used in main() where its required to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
