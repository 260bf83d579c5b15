package ratelimit

import (
	"context"
	"sync"
	"time"
)

// DefaultWindow is the fixed window length used when none is configured.
const DefaultWindow = time.Second

// memorySweepEvery controls how often stale windows are dropped.
const memorySweepEvery = 1024

type memoryEntry struct {
	window int64
	count  int
}

// MemoryLimiter implements a fixed-window in-memory rate limiter.
type MemoryLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	counters map[string]*memoryEntry
	calls    int
}

// NewMemoryLimiter constructs a MemoryLimiter with the default window.
func NewMemoryLimiter() *MemoryLimiter {
	return NewMemoryLimiterWindow(DefaultWindow)
}

// NewMemoryLimiterWindow constructs a MemoryLimiter with a custom window.
func NewMemoryLimiterWindow(window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &MemoryLimiter{
		window:   window,
		counters: make(map[string]*memoryEntry),
	}
}

// Allow checks whether the request fits in the current window.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	slot, reset := windowSlot(now, l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls >= memorySweepEvery {
		l.calls = 0
		for k, entry := range l.counters {
			if entry.window < slot {
				delete(l.counters, k)
			}
		}
	}

	entry := l.counters[key]
	if entry == nil {
		entry = &memoryEntry{window: slot}
		l.counters[key] = entry
	}
	if entry.window != slot {
		entry.window = slot
		entry.count = 0
	}
	if entry.count >= limit {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	entry.count++
	return Result{Allowed: true, Remaining: limit - entry.count, Reset: reset}, nil
}

// windowSlot returns the window index for now and the instant it ends.
func windowSlot(now time.Time, window time.Duration) (int64, time.Time) {
	slot := now.UnixNano() / int64(window)
	reset := time.Unix(0, (slot+1)*int64(window)).UTC()
	return slot, reset
}
