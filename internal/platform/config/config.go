// Package config builds process configuration from environment variables so
// main stays lean.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config captures everything the server needs to boot.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisURL    string

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	CacheTTL time.Duration
	LogLevel string
}

// FromEnv reads configuration from the environment, applying defaults for
// anything unset.
func FromEnv() (Config, error) {
	maxOpen, err := intVar("DATABASE_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, err
	}
	maxIdle, err := intVar("DATABASE_MAX_IDLE_CONNS", 5)
	if err != nil {
		return Config{}, err
	}
	maxLifetime, err := durationVar("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := durationVar("CACHE_TTL", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:              stringVar("NFE_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		DBMaxOpenConns:    maxOpen,
		DBMaxIdleConns:    maxIdle,
		DBConnMaxLifetime: maxLifetime,
		CacheTTL:          cacheTTL,
		LogLevel:          stringVar("LOG_LEVEL", "info"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.DBMaxOpenConns < 1 {
		return errors.New("DATABASE_MAX_OPEN_CONNS must be >= 1")
	}
	if c.DBMaxIdleConns < 0 {
		return errors.New("DATABASE_MAX_IDLE_CONNS must be >= 0")
	}
	if c.DBMaxIdleConns > c.DBMaxOpenConns {
		return errors.New("DATABASE_MAX_IDLE_CONNS must be <= DATABASE_MAX_OPEN_CONNS")
	}
	if c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	return nil
}

func stringVar(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intVar(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func durationVar(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
