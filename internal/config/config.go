// Package config loads the server configuration from environment variables.
//
// Every problem found while loading is collected and reported together, so a
// misconfigured deployment fails once with the full list instead of one
// variable at a time. cmd/server loads an optional .env file before calling
// Load.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

const minSessionSecretLen = 16

type ServerConfig struct {
	Port         int
	ServerURL    string // public base URL of this server
	ClientURL    string // frontend origin; CORS and post-login redirect
	CookieSecure bool
	LogLevel     slog.Level
}

type StoreConfig struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	SQLitePath    string
}

type SessionConfig struct {
	Secret   string
	TTL      time.Duration
	RedisURL string // empty selects the in-process store
}

type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	APITimeout   time.Duration
}

type AuthConfig struct {
	FailureURL     string
	AdminUsernames []string
}

type Config struct {
	Server         ServerConfig
	Store          StoreConfig
	Session        SessionConfig
	GitHub         GitHubConfig
	Auth           AuthConfig
	MaxResumeBytes int64
}

func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errs *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvBool(key string, defaultValue bool, errs *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueBool, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected boolean, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueBool
}

// `time.ParseDuration` expects a string like "15m" or "24h".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

func getOptionalEnvLevel(key string, defaultValue slog.Level, errs *[]string) slog.Level {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(valueStr)); err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected debug|info|warn|error, got '%s'", key, valueStr))
		return defaultValue
	}
	return level
}

// splitCSV parses "a, b,,c" into [a b c].
func splitCSV(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func loadStore(errs *[]string) StoreConfig {
	cfg := StoreConfig{
		Driver:        getOptionalEnv("STORE_DRIVER", DriverMongo),
		MongoDatabase: getOptionalEnv("MONGODB_DATABASE", "collabhub"),
		SQLitePath:    getOptionalEnv("SQLITE_PATH", "data/collabhub.db"),
	}
	switch cfg.Driver {
	case DriverMongo:
		cfg.MongoURI = getRequiredEnv("MONGODB_URI", errs)
	case DriverSQLite:
	default:
		*errs = append(*errs, fmt.Sprintf("invalid value for STORE_DRIVER: expected %s|%s, got '%s'", DriverMongo, DriverSQLite, cfg.Driver))
	}
	return cfg
}

func joinErrors(errs []string) error {
	return fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
}

// LoadStore reads only the store settings. The seed command uses it so it
// can run without OAuth credentials.
func LoadStore() (*StoreConfig, error) {
	var errs []string
	cfg := loadStore(&errs)
	if len(errs) > 0 {
		return nil, joinErrors(errs)
	}
	return &cfg, nil
}

// Load reads and validates the full server configuration.
func Load() (*Config, error) {
	var errs []string

	port := getOptionalEnvInt("PORT", 8080, &errs)
	serverURL := strings.TrimSuffix(getOptionalEnv("SERVER_URL", fmt.Sprintf("http://localhost:%d", port)), "/")

	server := ServerConfig{
		Port:         port,
		ServerURL:    serverURL,
		ClientURL:    getOptionalEnv("CLIENT_URL", "http://localhost:3000"),
		CookieSecure: getOptionalEnvBool("COOKIE_SECURE", strings.HasPrefix(serverURL, "https://"), &errs),
		LogLevel:     getOptionalEnvLevel("LOG_LEVEL", slog.LevelInfo, &errs),
	}

	sess := SessionConfig{
		Secret:   getRequiredEnv("SESSION_SECRET", &errs),
		TTL:      getOptionalEnvDuration("SESSION_TTL", 24*time.Hour, &errs),
		RedisURL: getOptionalEnv("REDIS_URL", ""),
	}
	if sess.Secret != "" && len(sess.Secret) < minSessionSecretLen {
		errs = append(errs, fmt.Sprintf("SESSION_SECRET must be at least %d characters", minSessionSecretLen))
	}
	if sess.TTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}

	github := GitHubConfig{
		ClientID:     getRequiredEnv("GITHUB_CLIENT_ID", &errs),
		ClientSecret: getRequiredEnv("GITHUB_CLIENT_SECRET", &errs),
		CallbackURL:  getOptionalEnv("GITHUB_CALLBACK_URL", serverURL+"/auth/github/callback"),
		APITimeout:   getOptionalEnvDuration("GITHUB_API_TIMEOUT", 10*time.Second, &errs),
	}

	authCfg := AuthConfig{
		FailureURL:     getOptionalEnv("AUTH_FAILURE_URL", "/login"),
		AdminUsernames: splitCSV(getOptionalEnv("ADMIN_USERNAMES", "")),
	}

	maxResume := getOptionalEnvInt("MAX_RESUME_BYTES", 5<<20, &errs)
	if maxResume <= 0 {
		errs = append(errs, "MAX_RESUME_BYTES must be positive")
	}

	store := loadStore(&errs)

	if len(errs) > 0 {
		return nil, joinErrors(errs)
	}

	return &Config{
		Server:         server,
		Store:          store,
		Session:        sess,
		GitHub:         github,
		Auth:           authCfg,
		MaxResumeBytes: int64(maxResume),
	}, nil
}
