// Package config provides environment-driven configuration for the Tally API.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvProduction is the APP_ENV value that enables production behaviour.
const EnvProduction = "production"

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
// Priority: ENV > YAML (CONFIG_PATH) > env-default tags.
type Config struct {
	Env             string        `yaml:"env"              env:"APP_ENV"          env-default:"development"`
	ListenHost      string        `yaml:"listen_host"      env:"LISTEN_HOST"      env-default:"127.0.0.1"`
	Port            string        `yaml:"port"             env:"PORT"             env-default:"3000"`
	CORSOrigins     []string      `yaml:"cors_origins"     env:"CORS_ORIGINS"     env-separator:","`
	LogLevel        string        `yaml:"log_level"        env:"LOG_LEVEL"        env-default:"info"`
	LogFormat       string        `yaml:"log_format"       env:"LOG_FORMAT"       env-default:"text"`
	RequestTimeout  time.Duration `yaml:"request_timeout"  env:"REQUEST_TIMEOUT"  env-default:"5s"`
	RateLimit       float64       `yaml:"rate_limit"       env:"RATE_LIMIT"       env-default:"100"`
	RateBurst       int           `yaml:"rate_burst"       env:"RATE_BURST"       env-default:"200"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"   env:"MAX_BODY_BYTES"   env-default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	EventQueueSize  int           `yaml:"event_queue_size" env:"EVENT_QUEUE_SIZE" env-default:"1000"`

	DatabaseURL        Secret        `yaml:"db_url"               env:"DB_URL"               env-required:"true"`
	DatabaseName       string        `yaml:"db_name"              env:"DB_NAME"              env-required:"true"`
	DBReadPref         string        `yaml:"db_read_pref"         env:"DB_READ_PREF"         env-default:"secondaryPreferred"`
	DBMinPoolSize      uint64        `yaml:"db_min_pool_size"     env:"DB_MIN_POOL_SIZE"     env-default:"2"`
	DBMaxPoolSize      uint64        `yaml:"db_max_pool_size"     env:"DB_MAX_POOL_SIZE"     env-default:"6"`
	DBConnectTimeout   time.Duration `yaml:"db_connect_timeout"   env:"DB_CONNECT_TIMEOUT"   env-default:"2s"`
	DBSocketTimeout    time.Duration `yaml:"db_socket_timeout"    env:"DB_SOCKET_TIMEOUT"    env-default:"120s"`
	DBMaxIdleTime      time.Duration `yaml:"db_max_idle_time"     env:"DB_MAX_IDLE_TIME"     env-default:"750s"`
	DBLivenessInterval time.Duration `yaml:"db_liveness_interval" env:"DB_LIVENESS_INTERVAL" env-default:"10s"`
}

// Load reads configuration from the YAML file named by CONFIG_PATH, when
// set, and from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading config from env: %w", err)
	}

	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func (c *Config) normalize() {
	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins

	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}
