// Package config loads application configuration from environment variables.
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

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env             string
	ListenAddr      string
	APIURL          string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	Model           string
	MaxTokens       int
	ProviderTimeout time.Duration
	MaxCodeBytes    int64
	AllowedOrigins  []string
	SessionTTL      time.Duration
	LogLevel        slog.Level
}

// HasProviderCredentials returns true when an API key for the review provider
// is configured. The gateway refuses to start without one; reviewctl does not
// need it.
func (c *Config) HasProviderCredentials() bool {
	return c.OpenAIAPIKey != ""
}

// IsDevelopment reports whether AIREVIEWER_ENV is "development".
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables and returns a validated Config.
// In development (AIREVIEWER_ENV unset or "development") a .env file in the
// working directory is loaded first; variables already set in the process win.
// Optional variables with defaults: AIREVIEWER_LISTEN_ADDR (127.0.0.1:8080),
// AIREVIEWER_API_URL (http://127.0.0.1:8080), AIREVIEWER_MODEL (gpt-4o-mini),
// AIREVIEWER_MAX_TOKENS (2048), AIREVIEWER_PROVIDER_TIMEOUT (60s),
// AIREVIEWER_MAX_CODE_BYTES (102400), AIREVIEWER_ALLOWED_ORIGINS (*),
// AIREVIEWER_SESSION_TTL (30m), AIREVIEWER_LOG_LEVEL (info).
func Load() (*Config, error) {
	env := "development"
	if v, ok := os.LookupEnv("AIREVIEWER_ENV"); ok && v != "" {
		env = v
	}

	if env == "development" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	cfg := &Config{
		Env:            env,
		ListenAddr:     getEnv("AIREVIEWER_LISTEN_ADDR", "127.0.0.1:8080"),
		APIURL:         strings.TrimRight(getEnv("AIREVIEWER_API_URL", "http://127.0.0.1:8080"), "/"),
		OpenAIAPIKey:   os.Getenv("AIREVIEWER_OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("AIREVIEWER_OPENAI_BASE_URL"),
		Model:          getEnv("AIREVIEWER_MODEL", "gpt-4o-mini"),
		AllowedOrigins: []string{"*"},
	}

	var err error

	if cfg.MaxTokens, err = getEnvInt("AIREVIEWER_MAX_TOKENS", 2048); err != nil {
		return nil, err
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("AIREVIEWER_MAX_TOKENS must be positive, got %d", cfg.MaxTokens)
	}

	if cfg.ProviderTimeout, err = getEnvDuration("AIREVIEWER_PROVIDER_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	maxCodeBytes, err := getEnvInt("AIREVIEWER_MAX_CODE_BYTES", 100*1024)
	if err != nil {
		return nil, err
	}
	if maxCodeBytes <= 0 {
		return nil, fmt.Errorf("AIREVIEWER_MAX_CODE_BYTES must be positive, got %d", maxCodeBytes)
	}
	cfg.MaxCodeBytes = int64(maxCodeBytes)

	if cfg.SessionTTL, err = getEnvDuration("AIREVIEWER_SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("AIREVIEWER_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				origins = append(origins, origin)
			}
		}
		if len(origins) > 0 {
			cfg.AllowedOrigins = origins
		}
	}

	if v, ok := os.LookupEnv("AIREVIEWER_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("AIREVIEWER_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, parsed)
	}
	return parsed, nil
}
