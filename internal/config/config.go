// Package config loads gateway settings from an optional YAML file with
// environment-variable overrides, so container deployments can run on env
// vars alone.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

type Config struct {
	// ListenAddr is the gateway's bind address, e.g. "0.0.0.0:5050".
	ListenAddr string `yaml:"listen_addr"`

	// AllowedOrigins is the CORS allow-list for the browser console.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// APIBaseURL is the school-health REST API the /api subtree proxies to.
	APIBaseURL string `yaml:"api_base_url"`

	CredStore CredStoreConfig `yaml:"cred_store"`

	// LoginPerMinute / LoginBurst bound login attempts.
	LoginPerMinute int `yaml:"login_per_minute"`
	LoginBurst     int `yaml:"login_burst"`
}

type CredStoreConfig struct {
	// Backend is one of "sqlite", "redis", "memory". Default sqlite.
	Backend string `yaml:"backend"`

	// Path of the sqlite credential file.
	Path string `yaml:"path"`

	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
}

func defaults() Config {
	return Config{
		ListenAddr: "0.0.0.0:5050",
		CredStore: CredStoreConfig{
			Backend: "sqlite",
			Path:    "credentials.db",
		},
		LoginPerMinute: 10,
		LoginBurst:     5,
	}
}

// Load reads the YAML file at path when it exists, then applies env
// overrides. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Environment overrides:
//   - PORT: overrides the port of ListenAddr
//   - ALLOWED_ORIGINS: comma-separated CORS allow-list
//   - API_BASE_URL: upstream REST API for /api
//   - CRED_STORE: sqlite | redis | memory
//   - CRED_STORE_PATH, REDIS_ADDR, REDIS_PREFIX
//   - LOGIN_PER_MINUTE, LOGIN_BURST
func (c *Config) applyEnv() {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		host := "0.0.0.0"
		if i := strings.LastIndex(c.ListenAddr, ":"); i >= 0 {
			host = c.ListenAddr[:i]
		}
		c.ListenAddr = host + ":" + port
	}
	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		c.AllowedOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("API_BASE_URL")); v != "" {
		c.APIBaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("CRED_STORE")); v != "" {
		c.CredStore.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("CRED_STORE_PATH")); v != "" {
		c.CredStore.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		c.CredStore.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_PREFIX")); v != "" {
		c.CredStore.RedisPrefix = v
	}
	if v, err := strconv.Atoi(os.Getenv("LOGIN_PER_MINUTE")); err == nil && v > 0 {
		c.LoginPerMinute = v
	}
	if v, err := strconv.Atoi(os.Getenv("LOGIN_BURST")); err == nil && v > 0 {
		c.LoginBurst = v
	}
}
