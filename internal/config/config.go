// Package config собирает настройки процесса из окружения и необязательного .env
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSecret = "dev-insecure-secret"

type Config struct {
	HTTPAddr        string
	GinMode         string
	DBDriver        string
	DatabaseURL     string
	DBDebug         bool
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SessionCookie   string
	CookieSecure    bool
	LogLevel        slog.Level
	AdminEmail      string
	AdminPassword   string
	SeedDemo        bool
	ShutdownTimeout time.Duration
}

// Load подгружает .env в окружение, если файл есть, и разбирает настройки
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse(os.Getenv)
}

// Parse собирает конфигурацию через getenv; для незаданных ключей берутся значения по умолчанию
func Parse(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}
	cfg := &Config{
		HTTPAddr:        p.str("HTTP_ADDR", ":9091"),
		GinMode:         p.str("GIN_MODE", "debug"),
		DBDriver:        p.str("DB_DRIVER", "sqlite"),
		DBDebug:         p.boolean("DB_DEBUG", false),
		JWTSecret:       p.str("JWT_SECRET", ""),
		JWTIssuer:       p.str("JWT_ISSUER", "storefront"),
		AccessTokenTTL:  p.duration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: p.duration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		SessionCookie:   p.str("SESSION_COOKIE", "sessionid"),
		CookieSecure:    p.boolean("COOKIE_SECURE", false),
		AdminEmail:      p.str("ADMIN_EMAIL", ""),
		AdminPassword:   p.str("ADMIN_PASSWORD", ""),
		SeedDemo:        p.boolean("SEED_DEMO", false),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	switch cfg.DBDriver {
	case "sqlite":
		cfg.DatabaseURL = p.str("DATABASE_URL", "file:storefront.db?_txlock=immediate&_busy_timeout=5000")
	case "postgres":
		cfg.DatabaseURL = p.str("DATABASE_URL", "")
		if cfg.DatabaseURL == "" {
			p.fail("DATABASE_URL", "required for postgres")
		}
	default:
		p.fail("DB_DRIVER", "must be sqlite or postgres")
	}

	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		p.fail("GIN_MODE", "must be debug, release or test")
	}

	if cfg.JWTSecret == "" {
		if cfg.GinMode == "release" {
			p.fail("JWT_SECRET", "required in release mode")
		}
		cfg.JWTSecret = devSecret
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(p.str("LOG_LEVEL", "info"))); err != nil {
		p.fail("LOG_LEVEL", err.Error())
	}

	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		p.fail("ADMIN_EMAIL", "ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		p.fail("ACCESS_TOKEN_TTL", "token lifetimes must be positive")
	}

	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	return cfg, nil
}

// InsecureSecret сообщает, используется ли встроенный секрет для разработки
func (c *Config) InsecureSecret() bool { return c.JWTSecret == devSecret }

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) fail(key, msg string) {
	p.errs = append(p.errs, fmt.Errorf("%s: %s", key, msg))
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) boolean(key string, def bool) bool {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, "invalid boolean "+strconv.Quote(v))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, "invalid duration "+strconv.Quote(v))
		return def
	}
	return d
}
