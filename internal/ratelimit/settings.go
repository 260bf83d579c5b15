package ratelimit

import (
	"strings"

	"github.com/brainpace/brainpace/internal/config"
	"github.com/brainpace/brainpace/internal/models"
)

// SettingsConfig captures the per-tier limits and the optional Redis backend.
type SettingsConfig struct {
	FreeLimit     int
	PremiumLimit  int
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// SettingsFromConfig converts the service configuration into a settings snapshot.
func SettingsFromConfig(cfg config.RateLimitConfig) SettingsConfig {
	out := SettingsConfig{
		FreeLimit:     cfg.Free,
		PremiumLimit:  cfg.Premium,
		RedisEnabled:  cfg.Redis.Enabled,
		RedisAddr:     strings.TrimSpace(cfg.Redis.Addr),
		RedisPassword: strings.TrimSpace(cfg.Redis.Password),
		RedisDB:       cfg.Redis.DB,
		RedisPrefix:   strings.TrimSpace(cfg.Redis.Prefix),
	}
	if out.RedisPrefix == "" {
		out.RedisPrefix = config.DefaultRedisPrefix
	}
	if out.RedisDB < 0 {
		out.RedisDB = 0
	}
	if out.FreeLimit < 0 {
		out.FreeLimit = 0
	}
	if out.PremiumLimit < 0 {
		out.PremiumLimit = 0
	}
	return out
}

// StaticSettings returns a provider that always yields cfg.
func StaticSettings(cfg SettingsConfig) SettingsProvider {
	return func() SettingsConfig { return cfg }
}

// LimitFor returns the per-second limit for tier; zero means unlimited.
func (c SettingsConfig) LimitFor(tier models.Tier) int {
	if tier == models.TierPremium {
		return c.PremiumLimit
	}
	return c.FreeLimit
}
