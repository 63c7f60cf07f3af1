package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

var (
	validEnvs      = []string{"development", "test", EnvProduction}
	validLogLevels = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "silent"}
	validReadPrefs = []string{"primary", "primaryPreferred", "secondary", "secondaryPreferred", "nearest"}
)

func (c *Config) validate() error {
	if err := c.validateEnv(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateNetwork(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	if err := c.validateLimits(); err != nil {
		return err
	}

	return nil
}

func (c *Config) validateEnv() error {
	if !slices.Contains(validEnvs, c.Env) {
		return fmt.Errorf("APP_ENV must be one of %s, got %q", strings.Join(validEnvs, ", "), c.Env)
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.LogLevel)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be 'text' or 'json', got %q", c.LogFormat)
	}

	return nil
}

func (c *Config) validateDatabase() error {
	if c.DatabaseURL.Value() == "" {
		return fmt.Errorf("DB_URL is required")
	}

	dbURL, err := url.Parse(c.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("DB_URL is not a valid URL")
	}

	if dbURL.Scheme != "mongodb" && dbURL.Scheme != "mongodb+srv" {
		return fmt.Errorf("DB_URL scheme must be mongodb:// or mongodb+srv://")
	}

	if dbURL.Host == "" {
		return fmt.Errorf("DB_URL must include a host")
	}

	if strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DB_NAME is required")
	}

	if !slices.Contains(validReadPrefs, c.DBReadPref) {
		return fmt.Errorf("DB_READ_PREF must be one of %s, got %q", strings.Join(validReadPrefs, ", "), c.DBReadPref)
	}

	if c.DBMaxPoolSize == 0 {
		return fmt.Errorf("DB_MAX_POOL_SIZE must be at least 1")
	}

	if c.DBMinPoolSize > c.DBMaxPoolSize {
		return fmt.Errorf("DB_MIN_POOL_SIZE (%d) must not exceed DB_MAX_POOL_SIZE (%d)", c.DBMinPoolSize, c.DBMaxPoolSize)
	}

	if c.DBConnectTimeout <= 0 || c.DBSocketTimeout <= 0 || c.DBLivenessInterval <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT, DB_SOCKET_TIMEOUT and DB_LIVENESS_INTERVAL must be positive")
	}

	return nil
}

func (c *Config) validateNetwork() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid integer: %w", err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Loopback for local runs; 0.0.0.0/:: when a container boundary sits in front.
	validHosts := map[string]bool{
		"127.0.0.1": true,
		"::1":       true,
		"localhost": true,
		"0.0.0.0":   true,
		"::":        true,
	}
	if !validHosts[c.ListenHost] {
		return fmt.Errorf("LISTEN_HOST must be a loopback address or 0.0.0.0/:: for containers (got %q)", c.ListenHost)
	}

	return nil
}

func (c *Config) validateCORS() error {
	if c.IsProduction() && len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required in production")
	}

	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain wildcard '*'")
		}
		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain glob characters (*?[]), got %q", origin)
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}

	return nil
}

func (c *Config) validateLimits() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.RateLimit <= 0 || c.RateBurst < 1 {
		return fmt.Errorf("RATE_LIMIT must be positive and RATE_BURST at least 1")
	}

	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1")
	}

	if c.EventQueueSize < 1 {
		return fmt.Errorf("EVENT_QUEUE_SIZE must be at least 1")
	}

	return nil
}
