package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "JSESSIONID", cfg.Auth.SessionCookie)
}

func TestApplyEnv_Overrides(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"PORT":                   "9090",
		"API_BASE_URL":           "https://insurance.example.com",
		"API_TIMEOUT":            "3s",
		"AUTH_MODE":              "dev",
		"DEV_LOGIN":              "octocat",
		"BACKEND_SESSION_COOKIE": "SESSION",
		"DRAFT_STORE":            "postgres",
		"DATABASE_URL":           "postgres://localhost/portal",
		"DRAFT_TTL":              "30m",
		"LOG_LEVEL":              "debug",
		"LOG_FORMAT":             "console",
		"API_BACKEND":            "",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://insurance.example.com", cfg.API.BaseURL)
	assert.Equal(t, BackendREST, cfg.API.Backend, "empty values keep the default")
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, AuthModeDev, cfg.Auth.Mode)
	assert.Equal(t, "octocat", cfg.Auth.DevLogin)
	assert.Equal(t, "SESSION", cfg.Auth.SessionCookie)
	assert.Equal(t, DraftStorePostgres, cfg.Drafts.Store)
	assert.Equal(t, 30*time.Minute, cfg.Drafts.TTL)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestApplyEnv_BadValues(t *testing.T) {
	for _, m := range []map[string]string{
		{"PORT": "eighty"},
		{"API_TIMEOUT": "10"},
		{"DRAFT_TTL": "soon"},
	} {
		cfg := Default()
		assert.Error(t, cfg.ApplyEnv(env(m)), "%v", m)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Config){
		"port":              func(c *Config) { c.Port = 0 },
		"relative base url": func(c *Config) { c.API.BaseURL = "/api" },
		"backend":           func(c *Config) { c.API.Backend = "grpc" },
		"auth mode":         func(c *Config) { c.Auth.Mode = "jwt" },
		"postgres dsn":      func(c *Config) { c.Drafts.Store = DraftStorePostgres },
		"ttl":               func(c *Config) { c.Drafts.TTL = 0 },
		"log format":        func(c *Config) { c.Log.Format = "xml" },
		"session cookie":    func(c *Config) { c.Auth.SessionCookie = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.API.Backend = BackendMemory
	cfg.API.BaseURL = ""
	require.NoError(t, cfg.Validate(), "memory backend needs no base url")
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 7070
api:
  baseURL: http://backend:8080
  timeout: 2s
drafts:
  ttl: 1h
log:
  format: console
`), 0o600))
	t.Setenv("PORT", "7171")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7171, cfg.Port, "env wins over file")
	assert.Equal(t, "http://backend:8080", cfg.API.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.API.Timeout)
	assert.Equal(t, time.Hour, cfg.Drafts.TTL)
	assert.Equal(t, "JSESSIONID", cfg.Auth.SessionCookie, "unset keys keep defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
