// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const minSecretLength = 16

// Config holds application configuration loaded from the environment.
type Config struct {
	// Port is the HTTP listen port.
	Port int `mapstructure:"PORT"`
	// Env is development, test or production. Production switches gin to release mode.
	Env string `mapstructure:"APP_ENV"`
	// FrontendOrigin is a comma-separated list of origins allowed by CORS.
	FrontendOrigin string `mapstructure:"FRONTEND_ORIGIN"`
	// JWTAccessSecret signs access tokens (HS256).
	JWTAccessSecret string `mapstructure:"JWT_ACCESS_SECRET"`
	// JWTRefreshSecret keys the digest under which refresh secrets are stored.
	JWTRefreshSecret string `mapstructure:"JWT_REFRESH_SECRET"`
	JWTIssuer        string `mapstructure:"JWT_ISSUER"`
	JWTAudience      string `mapstructure:"JWT_AUDIENCE"`
	// AccessTokenExpiresIn is the access token lifetime (e.g. "15m").
	AccessTokenExpiresIn string `mapstructure:"ACCESS_TOKEN_EXPIRES_IN"`
	// RefreshTokenExpiresIn is the refresh token lifetime (e.g. "30d").
	RefreshTokenExpiresIn string `mapstructure:"REFRESH_TOKEN_EXPIRES_IN"`
	CookieSecure          bool   `mapstructure:"COOKIE_SECURE"`
	// CookieDomain is empty for host-only cookies.
	CookieDomain string `mapstructure:"COOKIE_DOMAIN"`
	// DatabaseURL is the Postgres DSN; empty keeps accounts and sessions in memory.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisURL enables the redis challenge store and the event stream when set.
	RedisURL   string `mapstructure:"REDIS_URL"`
	BcryptCost int    `mapstructure:"BCRYPT_COST"`
	LogFormat  string `mapstructure:"LOG_FORMAT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Env vars override .env.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file path. A missing file is ignored.
func LoadFile(envFile string) (*Config, error) {
	v := viper.New()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		_ = v.ReadInConfig() // ignore missing file
	}

	v.AutomaticEnv()

	v.SetDefault("PORT", 4000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("FRONTEND_ORIGIN", "")
	v.SetDefault("JWT_ACCESS_SECRET", "")
	v.SetDefault("JWT_REFRESH_SECRET", "")
	v.SetDefault("JWT_ISSUER", "kana-auth")
	v.SetDefault("JWT_AUDIENCE", "kana-app")
	v.SetDefault("ACCESS_TOKEN_EXPIRES_IN", "15m")
	v.SetDefault("REFRESH_TOKEN_EXPIRES_IN", "30d")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("config: PORT must be between 1 and 65535")
	}
	switch c.Env {
	case "development", "test", "production":
	default:
		return fmt.Errorf("config: APP_ENV %q must be development, test or production", c.Env)
	}
	origins := c.Origins()
	if len(origins) == 0 {
		return errors.New("config: FRONTEND_ORIGIN must be set")
	}
	for _, o := range origins {
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("config: FRONTEND_ORIGIN entry %q must start with http:// or https://", o)
		}
	}
	if len(c.JWTAccessSecret) < minSecretLength {
		return fmt.Errorf("config: JWT_ACCESS_SECRET must be at least %d characters", minSecretLength)
	}
	if len(c.JWTRefreshSecret) < minSecretLength {
		return fmt.Errorf("config: JWT_REFRESH_SECRET must be at least %d characters", minSecretLength)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("config: LOG_FORMAT %q must be json or text", c.LogFormat)
	}

	var err error
	if c.accessTTL, err = ParseTTL(c.AccessTokenExpiresIn); err != nil {
		return fmt.Errorf("config: ACCESS_TOKEN_EXPIRES_IN: %w", err)
	}
	if c.refreshTTL, err = ParseTTL(c.RefreshTokenExpiresIn); err != nil {
		return fmt.Errorf("config: REFRESH_TOKEN_EXPIRES_IN: %w", err)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// AccessTTL returns the parsed access token lifetime.
func (c *Config) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the parsed refresh token lifetime.
func (c *Config) RefreshTTL() time.Duration { return c.refreshTTL }

// Origins returns the allowed CORS origins from the comma-separated config.
func (c *Config) Origins() []string {
	if c == nil || c.FrontendOrigin == "" {
		return nil
	}
	parts := strings.Split(c.FrontendOrigin, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ParseTTL parses a positive duration. Besides time.ParseDuration units it
// accepts whole days ("30d").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
