package ratelimit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/brainpace/brainpace/internal/models"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 2 * time.Second

var errMissingRedisAddr = errors.New("rate limit redis: missing address")

// SettingsProvider supplies the latest settings snapshot.
type SettingsProvider func() SettingsConfig

// RedisClientFactory constructs a Redis client for the given options.
type RedisClientFactory func(options *redis.Options) *redis.Client

// redisTarget identifies one Redis connection; a change reconnects.
type redisTarget struct {
	addr     string
	password string
	prefix   string
	db       int
}

func targetFrom(cfg SettingsConfig) redisTarget {
	return redisTarget{
		addr:     strings.TrimSpace(cfg.RedisAddr),
		password: strings.TrimSpace(cfg.RedisPassword),
		prefix:   strings.TrimSpace(cfg.RedisPrefix),
		db:       max(cfg.RedisDB, 0),
	}
}

// Manager applies per-tier limits, using Redis when it is configured and
// reachable and the in-process limiter otherwise.
type Manager struct {
	settings SettingsProvider
	now      func() time.Time
	memory   Limiter
	dial     RedisClientFactory
	breaker  *breaker

	mu     sync.Mutex
	shared *RedisLimiter
	target redisTarget
}

// NewManager constructs a Manager with default dependencies when nil.
// A nil provider disables Redis and every limit.
func NewManager(provider SettingsProvider, nowFn func() time.Time, newRedisClient RedisClientFactory) *Manager {
	if provider == nil {
		provider = StaticSettings(SettingsConfig{})
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	if newRedisClient == nil {
		newRedisClient = redis.NewClient
	}
	return &Manager{
		settings: provider,
		now:      nowFn,
		memory:   NewMemoryLimiter(),
		dial:     newRedisClient,
		breaker:  newBreaker(redisBreakerDuration),
	}
}

// AllowUser applies the tier limit for one user's action.
func (m *Manager) AllowUser(ctx context.Context, userID uint64, tier models.Tier, action Action) (Result, error) {
	if m == nil {
		return Result{Allowed: true}, nil
	}
	return m.Allow(ctx, KeyForUser(userID, action), m.settings().LimitFor(tier))
}

// Allow counts one request against key. Redis errors never reach the caller;
// the request is counted in memory instead.
func (m *Manager) Allow(ctx context.Context, key string, limit int) (Result, error) {
	if m == nil || limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	now := m.now()
	cfg := m.settings()
	if cfg.RedisEnabled && m.breaker.closed(now) {
		result, err := m.allowShared(ctx, cfg, key, limit, now)
		if err == nil {
			return result, nil
		}
		m.breaker.trip(now, err)
	}
	return m.memory.Allow(ctx, key, limit, now)
}

func (m *Manager) allowShared(ctx context.Context, cfg SettingsConfig, key string, limit int, now time.Time) (Result, error) {
	limiter, err := m.connect(ctx, targetFrom(cfg))
	if err != nil {
		return Result{}, err
	}
	return limiter.Allow(ctx, key, limit, now)
}

// connect returns the Redis limiter for target, replacing the current client
// when the target changed.
func (m *Manager) connect(ctx context.Context, target redisTarget) (*RedisLimiter, error) {
	if target.addr == "" {
		return nil, errMissingRedisAddr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shared != nil {
		if m.target == target {
			return m.shared, nil
		}
		_ = m.shared.client.Close()
		m.shared = nil
	}

	client := m.dial(&redis.Options{Addr: target.addr, Password: target.password, DB: target.db})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if errPing := client.Ping(pingCtx).Err(); errPing != nil {
		_ = client.Close()
		return nil, errPing
	}
	m.shared = NewRedisLimiter(client, target.prefix)
	m.target = target
	return m.shared, nil
}

// Backend reports which store currently serves limits: "redis" or "memory".
func (m *Manager) Backend() string {
	if m == nil {
		return "memory"
	}
	m.mu.Lock()
	connected := m.shared != nil
	m.mu.Unlock()
	if connected && !m.breaker.isOpen() {
		return "redis"
	}
	return "memory"
}

// Close releases the Redis client, if one was opened.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shared == nil {
		return nil
	}
	err := m.shared.client.Close()
	m.shared = nil
	return err
}
