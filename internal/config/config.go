package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// InsecureJWTSecret is the built-in development secret. Validate refuses it
// outside development.
const InsecureJWTSecret = "dev-insecure-secret-change-me"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Env  string `yaml:"env" env:"APP_ENV"`
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`

	DatabaseURI    string `yaml:"database_uri" env:"DATABASE_URI"`
	DBMaxOpenConns int    `yaml:"db_max_open_conns" env:"DB_POOL_SIZE"`

	JWTSecret           string   `yaml:"jwt_secret" env:"JWT_SECRET"`
	JWTExpiresIn        Duration `yaml:"jwt_expires_in" env:"JWT_EXPIRES_IN"`
	JWTRefreshExpiresIn Duration `yaml:"jwt_refresh_expires_in" env:"JWT_REFRESH_EXPIRES_IN"`

	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGIN" envSeparator:","`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy bool `yaml:"trust_proxy" env:"TRUST_PROXY"`

	RateLimitWindowMS    int `yaml:"rate_limit_window_ms" env:"RATE_LIMIT_WINDOW_MS"`
	RateLimitMaxRequests int `yaml:"rate_limit_max_requests" env:"RATE_LIMIT_MAX_REQUESTS"`

	AdminEmail    string `yaml:"admin_email" env:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"admin_password" env:"ADMIN_PASSWORD"`

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	ReadTimeout     Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`

	StatsCacheTTL     Duration `yaml:"stats_cache_ttl" env:"STATS_CACHE_TTL"`
	StatsWarmSchedule string   `yaml:"stats_warm_schedule" env:"STATS_WARM_SCHEDULE"`
}

// Default returns the configuration used when neither a file nor the
// environment say otherwise.
func Default() *Config {
	return &Config{
		Env:                  EnvDevelopment,
		Port:                 5000,
		DatabaseURI:          "problemhub.db",
		DBMaxOpenConns:       10,
		JWTSecret:            InsecureJWTSecret,
		JWTExpiresIn:         Duration(7 * 24 * time.Hour),
		JWTRefreshExpiresIn:  Duration(30 * 24 * time.Hour),
		CORSOrigins:          []string{"http://localhost:5173"},
		RateLimitWindowMS:    900000,
		RateLimitMaxRequests: 100,
		AdminEmail:           "admin@devup.org",
		AdminPassword:        "Admin@123456",
		LogLevel:             "debug",
		ReadTimeout:          Duration(15 * time.Second),
		WriteTimeout:         Duration(30 * time.Second),
		IdleTimeout:          Duration(45 * time.Second),
		ShutdownTimeout:      Duration(30 * time.Second),
		StatsCacheTTL:        Duration(time.Minute),
		StatsWarmSchedule:    "@every 1m",
	}
}

// LoadConfig applies, in order, the defaults, the YAML file at path (if any)
// and the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	// MONGODB_URI is accepted for existing deployments; DATABASE_URI wins.
	if legacy := os.Getenv("MONGODB_URI"); legacy != "" && os.Getenv("DATABASE_URI") == "" {
		cfg.DatabaseURI = legacy
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment variables: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields the server cannot run without.
func (c *Config) Validate() error {
	if c.DatabaseURI == "" {
		return errors.New("database_uri is required")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == InsecureJWTSecret && !c.IsDevelopment() && c.Env != EnvTest {
		return fmt.Errorf("refusing the built-in jwt_secret in %q environment", c.Env)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.JWTExpiresIn <= 0 || c.JWTRefreshExpiresIn <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.RateLimitWindowMS <= 0 || c.RateLimitMaxRequests <= 0 {
		return errors.New("rate limit window and max requests must be positive")
	}
	if c.DBMaxOpenConns <= 0 {
		c.DBMaxOpenConns = 10
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

func (c *Config) IsProduction() bool { return c.Env == EnvProduction }

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// RateLimitWindow converts the millisecond window into a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}

// Duration is a time.Duration that also accepts a whole-day suffix ("7d").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	return d.UnmarshalText([]byte(n.Value))
}

// ParseDuration extends time.ParseDuration with "Nd" for N days.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return v, nil
}
