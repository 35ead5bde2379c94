// Package config loads service settings from the environment.
//
// Variables use the DELIVERY_ prefix. The first underscore after the prefix
// separates the section from the key, so DELIVERY_DATABASE_MAX_OPEN_CONNS maps
// to database.max_open_conns. A .env file in the working directory is loaded
// first when present.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "DELIVERY_"

const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Primary   Primary         `koanf:"primary"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Log       LogConfig       `koanf:"log"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development staging production test"`
}

// Timeouts are durations such as "10s" or "2m".
type ServerConfig struct {
	Port              string        `koanf:"port" validate:"required"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"gt=0"`

	// TrustProxy honours X-Forwarded-For when running behind a reverse proxy.
	TrustProxy bool `koanf:"trust_proxy"`
}

// DatabaseConfig holds connection parameters. URL, when set, is used verbatim
// and takes precedence over the individual fields.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver" validate:"required,oneof=pgx postgres sqlite3"`
	URL             string        `koanf:"url"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=0,lte=65535"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name" validate:"required_without=URL"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// RateLimitConfig bounds requests per client IP. RPS of zero disables limiting.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps" validate:"gte=0"`
	Burst int     `koanf:"burst" validate:"gte=0"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"omitempty,oneof=trace debug info warn error"`
}

func Default() Config {
	return Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:              "8080",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverPgx,
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Name:            "delivery_tracking",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxLifetime: 30 * time.Minute,
		},
		RateLimit: RateLimitConfig{RPS: 50, Burst: 100},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads the optional .env file, overlays DELIVERY_* variables on the
// defaults and validates the result.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv is Load without the .env file step.
func FromEnv() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load config: read environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &cfg, nil
}

// Validate checks struct tags first, then rules spanning several fields.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	db := c.Database
	if db.Driver != DriverSQLite && db.URL == "" {
		if strings.TrimSpace(db.Host) == "" {
			return errors.New("validate: database.host is required for driver " + db.Driver)
		}
		if strings.TrimSpace(db.User) == "" {
			return errors.New("validate: database.user is required for driver " + db.Driver)
		}
	}

	return nil
}

// envKey maps DELIVERY_DATABASE_MAX_OPEN_CONNS to database.max_open_conns.
// RATE_LIMIT is the only section name that itself contains an underscore.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "rate_limit_"); ok {
		return "rate_limit." + rest
	}
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + rest
}

// DSN renders the data source name for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	if d.Driver == DriverSQLite {
		return d.Name
	}

	host := d.Host
	if d.Port != 0 {
		host = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   host,
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		q := url.Values{}
		q.Set("sslmode", d.SSLMode)
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}
