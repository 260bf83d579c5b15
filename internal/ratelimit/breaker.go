package ratelimit

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const redisBreakerDuration = 30 * time.Second

// breaker keeps Redis out of the request path for a cool-down period after
// a failure.
type breaker struct {
	mu       sync.Mutex
	cooldown time.Duration
	until    time.Time
}

func newBreaker(cooldown time.Duration) *breaker {
	if cooldown <= 0 {
		cooldown = redisBreakerDuration
	}
	return &breaker{cooldown: cooldown}
}

// closed reports whether Redis may be tried at now. Once the cool-down has
// elapsed the breaker closes again.
func (b *breaker) closed(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.until.IsZero() {
		return true
	}
	if now.Before(b.until) {
		return false
	}
	b.until = time.Time{}
	log.Info("rate limit: retrying redis backend")
	return true
}

// trip opens the breaker unless it is already open.
func (b *breaker) trip(now time.Time, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.until.IsZero() && now.Before(b.until) {
		return
	}
	b.until = now.Add(b.cooldown)
	log.WithError(err).WithField("cooldown", b.cooldown.String()).Warn("rate limit: redis unavailable, using memory")
}

func (b *breaker) isOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.until.IsZero()
}
