package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
	Crypto   CryptoConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds JWT verification settings
type JWTConfig struct {
	Secret string
	Skew   time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

// PayrollConfig holds the defaults used when a company has no payroll settings row,
// plus background job timing.
type PayrollConfig struct {
	DefaultRegime       string
	PayNonWorkingDays   bool
	ResumeInterval      time.Duration
	ResumeStaleAfter    time.Duration
	RateRefreshInterval time.Duration
}

// CryptoConfig holds the key that seals bank account numbers.
type CryptoConfig struct {
	DataEncryptionKey string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("no .env file found, using environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	jwtSkew, err := time.ParseDuration(getEnv("JWT_ACCEPTABLE_SKEW", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCEPTABLE_SKEW: %w", err)
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
		Skew:   jwtSkew,
	}

	// Payroll configuration
	payNonWorkingDays, err := strconv.ParseBool(getEnv("PAYROLL_PAY_NON_WORKING_DAYS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_PAY_NON_WORKING_DAYS: %w", err)
	}
	resumeInterval, err := time.ParseDuration(getEnv("PAYROLL_RESUME_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_RESUME_INTERVAL: %w", err)
	}
	resumeStaleAfter, err := time.ParseDuration(getEnv("PAYROLL_RESUME_STALE_AFTER", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_RESUME_STALE_AFTER: %w", err)
	}
	rateRefresh, err := time.ParseDuration(getEnv("RATE_TABLE_REFRESH_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_TABLE_REFRESH_INTERVAL: %w", err)
	}

	config.Payroll = PayrollConfig{
		DefaultRegime:       getEnv("PAYROLL_DEFAULT_TAX_REGIME", "new"),
		PayNonWorkingDays:   payNonWorkingDays,
		ResumeInterval:      resumeInterval,
		ResumeStaleAfter:    resumeStaleAfter,
		RateRefreshInterval: rateRefresh,
	}

	config.Crypto = CryptoConfig{
		DataEncryptionKey: getEnv("DATA_ENCRYPTION_KEY", ""),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Payroll.DefaultRegime != "new" && c.Payroll.DefaultRegime != "old" {
		return fmt.Errorf("PAYROLL_DEFAULT_TAX_REGIME must be old or new")
	}
	if c.Payroll.ResumeInterval <= 0 || c.Payroll.RateRefreshInterval <= 0 {
		return fmt.Errorf("job intervals must be positive")
	}
	if c.Payroll.ResumeStaleAfter <= 0 {
		return fmt.Errorf("PAYROLL_RESUME_STALE_AFTER must be positive")
	}
	if c.App.Env == "production" && c.Crypto.DataEncryptionKey == "" {
		return fmt.Errorf("DATA_ENCRYPTION_KEY is required in production")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
