// Package config reads the server settings from the environment.
//
// A .env file in the working directory, when present, seeds variables that
// are not already set; real environment variables always win.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               int
	DatabaseURL        string
	JWTSecret          string
	CORSAllowedOrigins []string
	LoginRatePerSec    float64
	LoginRateBurst     int
	LogLevel           slog.Level
	DBMaxOpenConns     int
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:               8080,
		DatabaseURL:        "data/crm.db",
		CORSAllowedOrigins: []string{"http://localhost:5500"},
		LoginRatePerSec:    5,
		LoginRateBurst:     10,
		LogLevel:           slog.LevelInfo,
		DBMaxOpenConns:     10,
	}
}

// Load reads .env (if any) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: loading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function. Unset variables
// keep their defaults; malformed numbers are an error.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var err error

	if v := getenv("PORT"); v != "" {
		if cfg.Port, err = strconv.Atoi(v); err != nil || cfg.Port <= 0 || cfg.Port > 65535 {
			return Config{}, fmt.Errorf("config: invalid PORT %q", v)
		}
	}
	if v := strings.TrimSpace(getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	cfg.JWTSecret = getenv("JWT_SECRET")

	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitList(v)
	}
	if v := getenv("LOGIN_RATE_PER_SEC"); v != "" {
		if cfg.LoginRatePerSec, err = strconv.ParseFloat(v, 64); err != nil || cfg.LoginRatePerSec <= 0 {
			return Config{}, fmt.Errorf("config: invalid LOGIN_RATE_PER_SEC %q", v)
		}
	}
	if v := getenv("LOGIN_RATE_BURST"); v != "" {
		if cfg.LoginRateBurst, err = strconv.Atoi(v); err != nil || cfg.LoginRateBurst <= 0 {
			return Config{}, fmt.Errorf("config: invalid LOGIN_RATE_BURST %q", v)
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("config: invalid LOG_LEVEL %q", v)
		}
	}
	if v := getenv("DB_MAX_OPEN_CONNS"); v != "" {
		if cfg.DBMaxOpenConns, err = strconv.Atoi(v); err != nil || cfg.DBMaxOpenConns <= 0 {
			return Config{}, fmt.Errorf("config: invalid DB_MAX_OPEN_CONNS %q", v)
		}
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
