// Package clock supplies the engine's notion of "now". Expiry checks, usage
// date validation and trend bucketing all read time through a Provider so an
// operator can pin a simulated date and get reproducible results.
package clock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Clock yields the current instant.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

// Now implements Clock.
func (System) Now() time.Time { return time.Now().UTC() }

const overrideKey = "clock:override"

// Provider wraps a base clock with an operator-set override date. The
// override survives restarts when a redis client is supplied; without one it
// is process-local.
type Provider struct {
	mu     sync.RWMutex
	base   Clock
	over   time.Time
	set    bool
	client *redis.Client
	logger *slog.Logger
}

// NewProvider constructs a Provider. client and logger may be nil.
func NewProvider(base Clock, client *redis.Client, logger *slog.Logger) *Provider {
	if base == nil {
		base = System{}
	}
	p := &Provider{base: base, client: client, logger: logger}
	p.restore()
	return p
}

func (p *Provider) restore() {
	if p.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	raw, err := p.client.Get(ctx, overrideKey).Result()
	if err != nil {
		if err != redis.Nil && p.logger != nil {
			p.logger.Warn("clock: restore override", slog.Any("error", err))
		}
		return
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return
	}
	p.over = parsed.UTC()
	p.set = true
}

// Now returns the override when set, otherwise the base clock reading.
func (p *Provider) Now() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.set {
		return p.over
	}
	return p.base.Now()
}

// Today returns the current date truncated to midnight UTC.
func (p *Provider) Today() time.Time {
	return DateOf(p.Now())
}

// Set pins the simulated instant.
func (p *Provider) Set(ctx context.Context, t time.Time) {
	p.mu.Lock()
	p.over = t.UTC()
	p.set = true
	p.mu.Unlock()
	if p.client != nil {
		if err := p.client.Set(ctx, overrideKey, t.UTC().Format(time.RFC3339), 0).Err(); err != nil && p.logger != nil {
			p.logger.Warn("clock: persist override", slog.Any("error", err))
		}
	}
}

// Clear removes the simulated instant, returning to the base clock.
func (p *Provider) Clear(ctx context.Context) {
	p.mu.Lock()
	p.set = false
	p.mu.Unlock()
	if p.client != nil {
		if err := p.client.Del(ctx, overrideKey).Err(); err != nil && p.logger != nil {
			p.logger.Warn("clock: clear override", slog.Any("error", err))
		}
	}
}

// Simulated reports whether an override is active and its value.
func (p *Provider) Simulated() (time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.over, p.set
}

// DateOf truncates t to midnight UTC. All expiry comparisons are date-only.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Fixed returns a Clock pinned to t, for tests.
func Fixed(t time.Time) Clock { return fixed{t: t.UTC()} }

type fixed struct{ t time.Time }

func (f fixed) Now() time.Time { return f.t }
