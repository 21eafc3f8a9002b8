package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Server captures service level configuration.
// Values come from an optional YAML file (HUNTBOARD_CONFIG) with environment
// variables taking precedence, so main stays lean.
type Server struct {
	Addr        string `yaml:"addr"`
	Environment string `yaml:"environment"`
	DatabaseURL string `yaml:"database_url"`

	AdminEmail         string        `yaml:"admin_email"`
	AdminJWTSigningKey string        `yaml:"admin_jwt_signing_key"`
	AdminTokenTTL      time.Duration `yaml:"admin_token_ttl"`
	AdminPasswordHash  string        `yaml:"admin_password_hash"`

	RefreshDebounce time.Duration `yaml:"refresh_debounce"`
	LoadTimeout     time.Duration `yaml:"load_timeout"`
	LoadMaxAttempts int           `yaml:"load_max_attempts"`
	LoadBackoffBase time.Duration `yaml:"load_backoff_base"`

	AutoRefreshEnabled  bool          `yaml:"auto_refresh_enabled"`
	AutoRefreshInterval time.Duration `yaml:"auto_refresh_interval"`
}

// Defaults returns the baseline configuration before file and env overrides.
func Defaults() Server {
	return Server{
		Addr:        ":8080",
		Environment: "development",
		AdminEmail:  "admin@huntboard.dev",
		// Use a default for development - should be overridden in production
		AdminJWTSigningKey:  "dev-secret-key-change-in-production",
		AdminTokenTTL:       15 * time.Minute,
		RefreshDebounce:     300 * time.Millisecond,
		LoadTimeout:         15 * time.Second,
		LoadMaxAttempts:     3,
		LoadBackoffBase:     500 * time.Millisecond,
		AutoRefreshInterval: 5 * time.Minute,
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in that order of precedence.
func Load() (Server, error) {
	cfg := Defaults()

	if path := os.Getenv("HUNTBOARD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Server) {
	setString(&cfg.Addr, "HUNTBOARD_ADDR")
	setString(&cfg.Environment, "HUNTBOARD_ENV")
	setString(&cfg.DatabaseURL, "HUNTBOARD_DATABASE_URL")
	setString(&cfg.AdminEmail, "HUNTBOARD_ADMIN_EMAIL")
	setString(&cfg.AdminJWTSigningKey, "HUNTBOARD_JWT_SIGNING_KEY")
	setString(&cfg.AdminPasswordHash, "HUNTBOARD_ADMIN_PASSWORD_HASH")
	setDuration(&cfg.AdminTokenTTL, "HUNTBOARD_ADMIN_TOKEN_TTL")
	setDuration(&cfg.RefreshDebounce, "HUNTBOARD_REFRESH_DEBOUNCE")
	setDuration(&cfg.LoadTimeout, "HUNTBOARD_LOAD_TIMEOUT")
	setInt(&cfg.LoadMaxAttempts, "HUNTBOARD_LOAD_MAX_ATTEMPTS")
	setDuration(&cfg.LoadBackoffBase, "HUNTBOARD_LOAD_BACKOFF_BASE")
	setBool(&cfg.AutoRefreshEnabled, "HUNTBOARD_AUTO_REFRESH")
	setDuration(&cfg.AutoRefreshInterval, "HUNTBOARD_AUTO_REFRESH_INTERVAL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "true" || v == "1"
	}
}
