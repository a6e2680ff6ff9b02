// Package config loads the portal configuration from an optional YAML file and
// environment overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendREST   = "rest"
	BackendMemory = "memory"

	AuthModeBackend = "backend"
	AuthModeDev     = "dev"

	DraftStoreMemory   = "memory"
	DraftStorePostgres = "postgres"
)

// Config is the complete portal configuration.
type Config struct {
	Port int `yaml:"port"`

	API    APIConfig    `yaml:"api"`
	Auth   AuthConfig   `yaml:"auth"`
	Drafts DraftsConfig `yaml:"drafts"`
	Log    LogConfig    `yaml:"log"`
}

// APIConfig configures access to the insurance REST API.
type APIConfig struct {
	// BaseURL is the backend root; /api, /oauth2 and /logout live below it.
	BaseURL string `yaml:"baseURL"`
	// Backend is "rest", or "memory" for a throwaway in-process API.
	Backend string        `yaml:"backend"`
	Timeout time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	// Mode is "backend" (ask /api/auth/me) or "dev" (fixed user).
	Mode     string `yaml:"mode"`
	DevLogin string `yaml:"devLogin"`
	// SessionCookie is the backend session cookie forwarded to the API.
	SessionCookie string `yaml:"sessionCookie"`
}

type DraftsConfig struct {
	Store       string        `yaml:"store"`
	DatabaseURL string        `yaml:"databaseURL"`
	TTL         time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port: 8080,
		API: APIConfig{
			BaseURL: "http://localhost:8081",
			Backend: BackendREST,
			Timeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Mode:          AuthModeBackend,
			DevLogin:      "dev",
			SessionCookie: "JSESSIONID",
		},
		Drafts: DraftsConfig{
			Store: DraftStoreMemory,
			TTL:   2 * time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load returns Default overlaid with the YAML file at path (if any) and then with
// the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s must be a duration (e.g. 10s): %w", key, err)
		}
		*dst = d
		return nil
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT must be a number: %w", err)
		}
		c.Port = p
	}
	str("API_BASE_URL", &c.API.BaseURL)
	str("API_BACKEND", &c.API.Backend)
	if err := dur("API_TIMEOUT", &c.API.Timeout); err != nil {
		return err
	}
	str("AUTH_MODE", &c.Auth.Mode)
	str("DEV_LOGIN", &c.Auth.DevLogin)
	str("BACKEND_SESSION_COOKIE", &c.Auth.SessionCookie)
	str("DRAFT_STORE", &c.Drafts.Store)
	str("DATABASE_URL", &c.Drafts.DatabaseURL)
	if err := dur("DRAFT_TTL", &c.Drafts.TTL); err != nil {
		return err
	}
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	return nil
}

// Validate reports the first problem found.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.API.Backend {
	case BackendREST:
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("api.baseURL %q must be an absolute URL", c.API.BaseURL)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("api.backend must be %q or %q, got %q", BackendREST, BackendMemory, c.API.Backend)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	switch c.Auth.Mode {
	case AuthModeBackend:
	case AuthModeDev:
		if c.Auth.DevLogin == "" {
			return fmt.Errorf("auth.devLogin is required in dev mode")
		}
	default:
		return fmt.Errorf("auth.mode must be %q or %q, got %q", AuthModeBackend, AuthModeDev, c.Auth.Mode)
	}
	if c.Auth.SessionCookie == "" {
		return fmt.Errorf("auth.sessionCookie is required")
	}
	switch c.Drafts.Store {
	case DraftStoreMemory:
	case DraftStorePostgres:
		if c.Drafts.DatabaseURL == "" {
			return fmt.Errorf("drafts.databaseURL is required for the postgres draft store")
		}
	default:
		return fmt.Errorf("drafts.store must be %q or %q, got %q", DraftStoreMemory, DraftStorePostgres, c.Drafts.Store)
	}
	if c.Drafts.TTL <= 0 {
		return fmt.Errorf("drafts.ttl must be positive")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string { return ":" + strconv.Itoa(c.Port) }
