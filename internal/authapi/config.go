package authapi

import (
	"errors"
	"os"
	"strings"
	"time"
)

// ErrMissingBaseURL is returned by Validate when no upstream auth service is
// configured.
var ErrMissingBaseURL = errors.New("AUTH_API_URL environment variable is required")

// Config holds connection settings for the upstream auth service.
type Config struct {
	// BaseURL of the auth service, e.g. https://auth.schoolpulse.app
	BaseURL string

	// Timeout for each request. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout bounds every call to the auth service.
const DefaultTimeout = 10 * time.Second

// LoadFromEnv loads auth service configuration from environment variables.
//
// Environment variables:
//   - AUTH_API_URL: base URL of the auth service (required)
//   - AUTH_API_TIMEOUT: per-request timeout, Go duration syntax (default: 10s)
func LoadFromEnv() Config {
	cfg := Config{
		BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("AUTH_API_URL")), "/"),
		Timeout: DefaultTimeout,
	}

	if raw := strings.TrimSpace(os.Getenv("AUTH_API_TIMEOUT")); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	return nil
}
