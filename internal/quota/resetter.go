package quota

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultResetInterval = time.Hour

// Resetter periodically rolls over quota periods.
type Resetter struct {
	gate     *Gate
	interval time.Duration
	now      func() time.Time
}

// NewResetter constructs a resetter for gate.
func NewResetter(gate *Gate, interval time.Duration) *Resetter {
	if gate == nil {
		return nil
	}
	if interval <= 0 {
		interval = defaultResetInterval
	}
	return &Resetter{gate: gate, interval: interval, now: time.Now}
}

// Start runs the reset loop in the background.
func (r *Resetter) Start(ctx context.Context) {
	if r == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	go r.run(ctx)
	log.Infof("quota resetter started (interval=%s)", r.interval)
}

func (r *Resetter) run(ctx context.Context) {
	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce resets every due quota row, logging failures.
func (r *Resetter) RunOnce(ctx context.Context) int64 {
	if r == nil {
		return 0
	}
	clock := r.now
	if clock == nil {
		clock = time.Now
	}
	n, err := r.gate.ResetDue(ctx, clock())
	if err != nil {
		log.WithError(err).Warn("quota resetter: reset failed")
		return 0
	}
	if n > 0 {
		log.Infof("quota resetter: reset %d quota rows", n)
	}
	return n
}
