package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvAdminToken   = "ADMIN_TOKEN"
	EnvAIAPIKey     = "AI_API_KEY"
	EnvAIBaseURL    = "AI_BASE_URL"
	EnvLogLevel     = "LOG_LEVEL"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

var (
	// ErrMissingDatabaseDSN indicates no database DSN is present in the config file or env.
	ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file, or DB_CONNECTION)")
	// ErrMissingJWTSecret indicates the identity provider signing secret is not configured.
	ErrMissingJWTSecret = errors.New("missing jwt secret (set `auth.jwt-secret` in config file, or JWT_SECRET)")
)

// AuthConfig describes how identity provider tokens are verified.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt-secret"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`

	// AdminToken guards the operator routes; empty disables them.
	AdminToken string `yaml:"admin-token"`
}

// AIConfig describes the upstream chat completion endpoint used for task breakdowns.
type AIConfig struct {
	BaseURL  string        `yaml:"base-url"`
	APIKey   string        `yaml:"api-key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxSteps int           `yaml:"max-steps"`
}

// QuotaConfig holds per-tier monthly AI request limits.
type QuotaConfig struct {
	FreeLimit         int           `yaml:"free-limit"`
	PremiumLimit      int           `yaml:"premium-limit"`
	ResetPollInterval time.Duration `yaml:"reset-poll-interval"`
}

// RedisConfig holds the optional shared rate limit backend.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// RateLimitConfig holds per-second request limits for AI calls by tier.
type RateLimitConfig struct {
	Free    int         `yaml:"free"`
	Premium int         `yaml:"premium"`
	Redis   RedisConfig `yaml:"redis"`
}

// LogConfig controls log level, format and optional file output.
type LogConfig struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
}

// Config is the full service configuration.
type Config struct {
	Port        int    `yaml:"port"`
	DatabaseDSN string `yaml:"database-dsn"`
	Database    struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	AI        AIConfig        `yaml:"ai"`
	Quota     QuotaConfig     `yaml:"quota"`
	RateLimit RateLimitConfig `yaml:"rate-limit"`
	Log       LogConfig       `yaml:"log"`
}

// Defaults applied when the config omits or invalidates a value.
const (
	DefaultPort              = 8080
	DefaultAIBaseURL         = "https://api.groq.com/openai/v1"
	DefaultAIModel           = "llama-3.1-8b-instant"
	DefaultAITimeout         = 20 * time.Second
	DefaultAIMaxSteps        = 12
	DefaultFreeLimit         = 10
	DefaultPremiumLimit      = 200
	DefaultResetPollInterval = time.Hour
	DefaultFreeRateLimit     = 1
	DefaultPremiumRateLimit  = 5
	DefaultRedisPrefix       = "brainpace:rl"
	DefaultLogLevel          = "info"
)

// Load reads the YAML config file, applies env overrides and defaults.
// A missing file is tolerated; the DSN and JWT secret may come from env.
func Load(configPath string) (Config, error) {
	var cfg Config

	data, errRead := os.ReadFile(configPath)
	if errRead != nil && !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("read config file: %w", errRead)
	}
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.DSN() == "" {
		return Config{}, ErrMissingDatabaseDSN
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return Config{}, ErrMissingJWTSecret
	}
	return cfg, nil
}

// DSN returns the effective database DSN.
func (c Config) DSN() string {
	if dsn := strings.TrimSpace(c.DatabaseDSN); dsn != "" {
		return dsn
	}
	return strings.TrimSpace(c.Database.DSN)
}

func applyEnv(cfg *Config) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if token := strings.TrimSpace(os.Getenv(EnvAdminToken)); token != "" {
		cfg.Auth.AdminToken = token
	}
	if key := strings.TrimSpace(os.Getenv(EnvAIAPIKey)); key != "" {
		cfg.AI.APIKey = key
	}
	if baseURL := strings.TrimSpace(os.Getenv(EnvAIBaseURL)); baseURL != "" {
		cfg.AI.BaseURL = baseURL
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.Log.Level = level
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = DefaultPort
	}
	cfg.AI.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.AI.BaseURL), "/")
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = DefaultAIBaseURL
	}
	if strings.TrimSpace(cfg.AI.Model) == "" {
		cfg.AI.Model = DefaultAIModel
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = DefaultAITimeout
	}
	if cfg.AI.MaxSteps <= 0 {
		cfg.AI.MaxSteps = DefaultAIMaxSteps
	}
	if cfg.Quota.FreeLimit <= 0 {
		cfg.Quota.FreeLimit = DefaultFreeLimit
	}
	if cfg.Quota.PremiumLimit <= 0 {
		cfg.Quota.PremiumLimit = DefaultPremiumLimit
	}
	if cfg.Quota.ResetPollInterval <= 0 {
		cfg.Quota.ResetPollInterval = DefaultResetPollInterval
	}
	if cfg.RateLimit.Free < 0 {
		cfg.RateLimit.Free = 0
	}
	if cfg.RateLimit.Free == 0 {
		cfg.RateLimit.Free = DefaultFreeRateLimit
	}
	if cfg.RateLimit.Premium <= 0 {
		cfg.RateLimit.Premium = DefaultPremiumRateLimit
	}
	cfg.RateLimit.Redis.Addr = strings.TrimSpace(cfg.RateLimit.Redis.Addr)
	cfg.RateLimit.Redis.Prefix = strings.TrimSpace(cfg.RateLimit.Redis.Prefix)
	if cfg.RateLimit.Redis.Prefix == "" {
		cfg.RateLimit.Redis.Prefix = DefaultRedisPrefix
	}
	if cfg.RateLimit.Redis.DB < 0 {
		cfg.RateLimit.Redis.DB = 0
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}
