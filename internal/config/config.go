// Package config loads examly's settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/examly/internal/validation"
)

// Config holds all application configuration.
type Config struct {
	// APIURL is the base URL of the assessment service.
	APIURL string `env:"EXAMLY_API_URL" validate:"required_unless=Offline true,omitempty,url"`

	// APIToken is sent as a bearer token when set.
	APIToken string `env:"EXAMLY_API_TOKEN"`

	HTTPTimeout time.Duration `env:"EXAMLY_HTTP_TIMEOUT" validate:"gt=0"`
	HTTPRetries int           `env:"EXAMLY_HTTP_RETRIES" validate:"gte=0,lte=10"`

	// Offline serves sessions from local question banks instead of the API.
	Offline bool   `env:"EXAMLY_OFFLINE"`
	BankDir string `env:"EXAMLY_BANK_DIR" validate:"required_if=Offline true"`

	// DBPath is the history database; "" means the default XDG location.
	DBPath string `env:"EXAMLY_DB"`

	LogLevel  string `env:"EXAMLY_LOG_LEVEL" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFormat string `env:"EXAMLY_LOG_FORMAT" validate:"oneof=json pretty"`
	LogFile   string `env:"EXAMLY_LOG_FILE"`

	// ServeAddr and JWTSecret configure the local REST server.
	ServeAddr string `env:"EXAMLY_SERVE_ADDR" validate:"required"`
	JWTSecret string `env:"EXAMLY_JWT_SECRET"`

	// AllowedOrigins controls CORS on the local server. Empty means any.
	AllowedOrigins []string `env:"EXAMLY_ALLOWED_ORIGINS"`
}

// Load reads configuration from environment variables with defaults.
// It loads a .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		APIURL:         getEnv("EXAMLY_API_URL", "http://localhost:8080"),
		APIToken:       getEnv("EXAMLY_API_TOKEN", ""),
		HTTPTimeout:    getEnvDuration("EXAMLY_HTTP_TIMEOUT", 15*time.Second),
		HTTPRetries:    getEnvInt("EXAMLY_HTTP_RETRIES", 3),
		Offline:        getEnvBool("EXAMLY_OFFLINE", false),
		BankDir:        getEnv("EXAMLY_BANK_DIR", "banks"),
		DBPath:         getEnv("EXAMLY_DB", ""),
		LogLevel:       strings.ToLower(getEnv("EXAMLY_LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("EXAMLY_LOG_FORMAT", "json")),
		LogFile:        getEnv("EXAMLY_LOG_FILE", ""),
		ServeAddr:      getEnv("EXAMLY_SERVE_ADDR", ":8080"),
		JWTSecret:      getEnv("EXAMLY_JWT_SECRET", ""),
		AllowedOrigins: parseList(getEnv("EXAMLY_ALLOWED_ORIGINS", "")),
	}
}

// Validate checks the configuration. The error lists every invalid field.
func (c *Config) Validate() error {
	return validation.Struct(c)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration accepts Go durations ("30s") and bare seconds ("30").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
