package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	MaxConcurrentTx       int
	RedisURL              string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	ReportCacheTTLSeconds int
	AuthSecret            string
	AccessTokenTTLMinutes int
	AdminEmail            string
	AdminPassword         string
	Timezone              string
	LogLevel              string
	LogFormat             string
}

// Load reads .env when present, then the process environment. Each call
// builds a fresh viper instance so tests can override keys with t.Setenv.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "http://127.0.0.1:3000")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_CONCURRENT_TX", 10)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REPORT_CACHE_TTL_SECONDS", 60)
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.AutomaticEnv()

	cfg := Config{
		Port:                  v.GetString("PORT"),
		AllowedOrigin:         v.GetString("ALLOWED_ORIGIN"),
		DatabaseURL:           strings.TrimSpace(v.GetString("DATABASE_URL")),
		MaxConcurrentTx:       v.GetInt("DB_MAX_CONCURRENT_TX"),
		RedisURL:              strings.TrimSpace(v.GetString("REDIS_URL")),
		RedisAddr:             strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisDB:               v.GetInt("REDIS_DB"),
		ReportCacheTTLSeconds: v.GetInt("REPORT_CACHE_TTL_SECONDS"),
		AuthSecret:            strings.TrimSpace(v.GetString("SECRET_KEY")),
		AccessTokenTTLMinutes: v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES"),
		AdminEmail:            strings.TrimSpace(v.GetString("ADMIN_EMAIL")),
		AdminPassword:         v.GetString("ADMIN_PASSWORD"),
		Timezone:              v.GetString("APP_TIMEZONE"),
		LogLevel:              strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:             strings.ToLower(v.GetString("LOG_FORMAT")),
	}
	if cfg.MaxConcurrentTx < 1 {
		cfg.MaxConcurrentTx = 10
	}
	if cfg.ReportCacheTTLSeconds < 1 {
		cfg.ReportCacheTTLSeconds = 60
	}
	if cfg.AccessTokenTTLMinutes < 1 {
		cfg.AccessTokenTTLMinutes = 30
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) CacheEnabled() bool {
	return c.RedisURL != "" || c.RedisAddr != ""
}

func (c Config) ReportCacheTTL() time.Duration {
	return time.Duration(c.ReportCacheTTLSeconds) * time.Second
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// Location resolves APP_TIMEZONE, falling back to UTC for unknown zones.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
