package persistence

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadConfigFromEnv loads PostgreSQL configuration from the environment,
// applying production-ready defaults where the operator hasn't overridden
// them.
func LoadConfigFromEnv() (Config, error) {
	port, err := strconv.Atoi(getEnvOrDefault("CHEMVERIFY_DB_PORT", "5432"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid CHEMVERIFY_DB_PORT: %w", err)
	}

	maxConns, _ := strconv.Atoi(getEnvOrDefault("CHEMVERIFY_DB_MAX_CONNS", "10"))
	minConns, _ := strconv.Atoi(getEnvOrDefault("CHEMVERIFY_DB_MIN_CONNS", "2"))

	maxLifetime, err := time.ParseDuration(getEnvOrDefault("CHEMVERIFY_DB_CONN_MAX_LIFETIME", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid CHEMVERIFY_DB_CONN_MAX_LIFETIME: %w", err)
	}
	maxIdleTime, err := time.ParseDuration(getEnvOrDefault("CHEMVERIFY_DB_CONN_MAX_IDLE_TIME", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid CHEMVERIFY_DB_CONN_MAX_IDLE_TIME: %w", err)
	}

	cfg := Config{
		Host:            getEnvOrDefault("CHEMVERIFY_DB_HOST", "localhost"),
		Port:            port,
		User:            getEnvOrDefault("CHEMVERIFY_DB_USER", "chemverify"),
		Password:        os.Getenv("CHEMVERIFY_DB_PASSWORD"),
		Database:        getEnvOrDefault("CHEMVERIFY_DB_NAME", "chemverify"),
		SSLMode:         getEnvOrDefault("CHEMVERIFY_DB_SSLMODE", "disable"),
		MaxConns:        int32(maxConns),
		MinConns:        int32(minConns),
		ConnMaxLifetime: maxLifetime,
		ConnMaxIdleTime: maxIdleTime,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("CHEMVERIFY_DB_MIN_CONNS (%d) cannot exceed CHEMVERIFY_DB_MAX_CONNS (%d)", c.MinConns, c.MaxConns)
	}
	return nil
}

// DSN renders the configuration as a libpq connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
