package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examly/internal/validation"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here
	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.HTTPRetries)
	assert.False(t, cfg.Offline)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":8080", cfg.ServeAddr)
	assert.Nil(t, cfg.AllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EXAMLY_API_URL", "https://exams.example.com")
	t.Setenv("EXAMLY_HTTP_TIMEOUT", "45")
	t.Setenv("EXAMLY_OFFLINE", "true")
	t.Setenv("EXAMLY_BANK_DIR", "/srv/banks")
	t.Setenv("EXAMLY_LOG_LEVEL", "DEBUG")
	t.Setenv("EXAMLY_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg := Load()
	assert.Equal(t, "https://exams.example.com", cfg.APIURL)
	assert.Equal(t, 45*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.Offline)
	assert.Equal(t, "/srv/banks", cfg.BankDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EXAMLY_HTTP_TIMEOUT", "soon")
	t.Setenv("EXAMLY_HTTP_RETRIES", "many")
	t.Setenv("EXAMLY_OFFLINE", "maybe")

	cfg := Load()
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.HTTPRetries)
	assert.False(t, cfg.Offline)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad url", func(c *Config) { c.APIURL = "not a url" }, "EXAMLY_API_URL"},
		{"missing url online", func(c *Config) { c.APIURL = "" }, "EXAMLY_API_URL"},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, "EXAMLY_HTTP_TIMEOUT"},
		{"retries", func(c *Config) { c.HTTPRetries = 50 }, "EXAMLY_HTTP_RETRIES"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "EXAMLY_LOG_LEVEL"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "EXAMLY_LOG_FORMAT"},
		{"offline without banks", func(c *Config) { c.Offline = true; c.BankDir = "" }, "EXAMLY_BANK_DIR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verr *validation.Error
			require.True(t, errors.As(err, &verr), "err = %v", err)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestValidate_OfflineNeedsNoURL(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := Load()
	cfg.Offline = true
	cfg.APIURL = ""
	assert.NoError(t, cfg.Validate())
}
