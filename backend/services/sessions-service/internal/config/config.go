package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "chargestats/backend/libs/config"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

const defaultPort = "8080"

// Config defines sessions service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"SESSIONS_HTTP_PORT"`
	} `yaml:"http"`
	Stats struct {
		SweepInterval time.Duration `yaml:"sweepInterval" env:"SESSIONS_STATS_SWEEP_INTERVAL"`
	} `yaml:"stats"`
	Storage struct {
		Driver string `yaml:"driver" env:"SESSIONS_STORAGE_DRIVER"`
	} `yaml:"storage"`
	Database struct {
		DSN string `yaml:"dsn" env:"SESSIONS_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"SESSIONS_REDIS_ADDR"`
		Password string `yaml:"password" env:"SESSIONS_REDIS_PASSWORD"`
		TTL      int    `yaml:"ttlSeconds" env:"SESSIONS_REDIS_TTL"`
	} `yaml:"redis"`
	JWT struct {
		Secret           string `yaml:"secret" env:"SESSIONS_JWT_SECRET"`
		ExpiresInMinutes int    `yaml:"expiresInMinutes" env:"SESSIONS_JWT_EXPIRES_MINUTES"`
	} `yaml:"jwt"`
	Stream struct {
		WriteTimeout time.Duration `yaml:"writeTimeout" env:"SESSIONS_STREAM_WRITE_TIMEOUT"`
	} `yaml:"stream"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	cfg := &Config{}
	cfg.HTTP.Port = defaultPort
	cfg.Stats.SweepInterval = time.Second
	cfg.Storage.Driver = StorageMemory
	cfg.Redis.TTL = 86400
	cfg.JWT.ExpiresInMinutes = 60
	cfg.Stream.WriteTimeout = 10 * time.Second
	return cfg
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := Default()
	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Stats.SweepInterval <= 0 {
		return fmt.Errorf("stats sweep interval must be positive, got %s", c.Stats.SweepInterval)
	}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("database dsn required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.Contains(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// ActiveSessionTTL returns ttl as duration.
func (c *Config) ActiveSessionTTL() time.Duration {
	if c.Redis.TTL <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Redis.TTL) * time.Second
}

// RedisEnabled reports whether the active-session cache is configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

// AuthEnabled reports whether bearer tokens are required.
func (c *Config) AuthEnabled() bool {
	return c.JWT.Secret != ""
}

// TokenTTL returns the lifetime of issued tokens.
func (c *Config) TokenTTL() time.Duration {
	if c.JWT.ExpiresInMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWT.ExpiresInMinutes) * time.Minute
}
