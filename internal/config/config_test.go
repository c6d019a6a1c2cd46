package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "STORE_DRIVER", "MONGODB_URI", "MONGODB_DATABASE", "SQLITE_PATH",
	"SESSION_SECRET", "SESSION_TTL", "REDIS_URL",
	"GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET", "SERVER_URL", "GITHUB_CALLBACK_URL",
	"CLIENT_URL", "AUTH_FAILURE_URL", "MAX_RESUME_BYTES", "GITHUB_API_TIMEOUT",
	"ADMIN_USERNAMES", "COOKIE_SECURE", "LOG_LEVEL",
}

// clearEnv blanks every variable Load reads; empty counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
	t.Setenv("GITHUB_CLIENT_ID", "client-id")
	t.Setenv("GITHUB_CLIENT_SECRET", "client-secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
}

func TestLoad_Defaults(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.ServerURL)
	assert.False(t, cfg.Server.CookieSecure)
	assert.Equal(t, slog.LevelInfo, cfg.Server.LogLevel)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "collabhub", cfg.Store.MongoDatabase)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Empty(t, cfg.Session.RedisURL)
	assert.Equal(t, "http://localhost:8080/auth/github/callback", cfg.GitHub.CallbackURL)
	assert.Equal(t, 10*time.Second, cfg.GitHub.APITimeout)
	assert.Equal(t, "/login", cfg.Auth.FailureURL)
	assert.Empty(t, cfg.Auth.AdminUsernames)
	assert.Equal(t, int64(5<<20), cfg.MaxResumeBytes)
}

func TestLoad_Overrides(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("SERVER_URL", "https://api.example.com/")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ADMIN_USERNAMES", "alice, bob,,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GITHUB_API_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "https://api.example.com", cfg.Server.ServerURL)
	assert.True(t, cfg.Server.CookieSecure, "https server defaults to secure cookies")
	assert.Equal(t, "https://api.example.com/auth/github/callback", cfg.GitHub.CallbackURL)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Store.SQLitePath)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Auth.AdminUsernames)
	assert.Equal(t, slog.LevelDebug, cfg.Server.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.GitHub.APITimeout)
}

func TestLoad_CollectsAllErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "eighty")
	t.Setenv("SESSION_SECRET", "short")
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"invalid value for PORT",
		"SESSION_SECRET must be at least 16 characters",
		"invalid value for SESSION_TTL",
		"GITHUB_CLIENT_ID",
		"GITHUB_CLIENT_SECRET",
		"invalid value for STORE_DRIVER",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestLoadStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")

	cfg, err := LoadStore()
	require.NoError(t, err)
	assert.Equal(t, "data/collabhub.db", cfg.SQLitePath)

	t.Setenv("STORE_DRIVER", "mongo")
	_, err = LoadStore()
	assert.ErrorContains(t, err, "MONGODB_URI")
}
