package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every AIREVIEWER_ env var that Load() reads.
var allConfigKeys = []string{
	"AIREVIEWER_ENV",
	"AIREVIEWER_LISTEN_ADDR",
	"AIREVIEWER_API_URL",
	"AIREVIEWER_OPENAI_API_KEY",
	"AIREVIEWER_OPENAI_BASE_URL",
	"AIREVIEWER_MODEL",
	"AIREVIEWER_MAX_TOKENS",
	"AIREVIEWER_PROVIDER_TIMEOUT",
	"AIREVIEWER_MAX_CODE_BYTES",
	"AIREVIEWER_ALLOWED_ORIGINS",
	"AIREVIEWER_SESSION_TTL",
	"AIREVIEWER_LOG_LEVEL",
}

// isolateConfigEnv saves and unsets all AIREVIEWER_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("AIREVIEWER_ENV", "production")
	t.Setenv("AIREVIEWER_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("AIREVIEWER_API_URL", "https://reviews.example.com/")
	t.Setenv("AIREVIEWER_OPENAI_API_KEY", "sk-test")
	t.Setenv("AIREVIEWER_OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("AIREVIEWER_MODEL", "gpt-4o")
	t.Setenv("AIREVIEWER_MAX_TOKENS", "4096")
	t.Setenv("AIREVIEWER_PROVIDER_TIMEOUT", "15s")
	t.Setenv("AIREVIEWER_MAX_CODE_BYTES", "2048")
	t.Setenv("AIREVIEWER_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("AIREVIEWER_SESSION_TTL", "5m")
	t.Setenv("AIREVIEWER_LOG_LEVEL", "debug")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "https://reviews.example.com", cfg.APIURL)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.True(t, cfg.HasProviderCredentials())
	assert.Equal(t, "http://localhost:11434/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, int64(2048), cfg.MaxCodeBytes)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("AIREVIEWER_ENV", "test")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.APIURL)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, 60*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, int64(100*1024), cfg.MaxCodeBytes)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.HasProviderCredentials())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad duration", "AIREVIEWER_PROVIDER_TIMEOUT", "soon", "AIREVIEWER_PROVIDER_TIMEOUT"},
		{"negative duration", "AIREVIEWER_SESSION_TTL", "-1m", "AIREVIEWER_SESSION_TTL"},
		{"bad integer", "AIREVIEWER_MAX_CODE_BYTES", "lots", "AIREVIEWER_MAX_CODE_BYTES"},
		{"zero limit", "AIREVIEWER_MAX_CODE_BYTES", "0", "AIREVIEWER_MAX_CODE_BYTES"},
		{"zero tokens", "AIREVIEWER_MAX_TOKENS", "0", "AIREVIEWER_MAX_TOKENS"},
		{"bad log level", "AIREVIEWER_LOG_LEVEL", "loud", "AIREVIEWER_LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("AIREVIEWER_ENV", "test")
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()

			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestLoad_DotEnvInDevelopment verifies that a .env file fills in unset
// variables but never overrides the process environment.
func TestLoad_DotEnvInDevelopment(t *testing.T) {
	isolateConfigEnv(t)

	dir := t.TempDir()
	dotenv := "AIREVIEWER_OPENAI_API_KEY=sk-from-file\nAIREVIEWER_MODEL=from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o600))
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("AIREVIEWER_OPENAI_API_KEY") })
	t.Setenv("AIREVIEWER_MODEL", "from-process")

	cfg, err := Load()

	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "sk-from-file", cfg.OpenAIAPIKey)
	assert.Equal(t, "from-process", cfg.Model)
}

func TestLoad_MissingDotEnvIsNotAnError(t *testing.T) {
	isolateConfigEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
}
