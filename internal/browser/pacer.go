package browser

import (
	"context"
	"sync"
	"time"
)

// pacerWindow is the fixed sliding window for navigation pacing.
const pacerWindow = 60 * time.Second

// Pacer rate-limits page navigations per host with a sliding window, so
// repeated scraping of the same platform stays polite. A limit of zero
// disables pacing.
type Pacer struct {
	limitPerMinute int
	mutex          sync.Mutex
	hosts          map[string][]time.Time
}

// NewPacer creates a Pacer allowing limitPerMinute navigations per host per
// minute.
func NewPacer(limitPerMinute int) *Pacer {
	return &Pacer{
		limitPerMinute: limitPerMinute,
		hosts:          make(map[string][]time.Time),
	}
}

// Wait blocks until a navigation to the given host is allowed, then records
// it. Returns the context error if cancelled while waiting.
func (p *Pacer) Wait(ctx context.Context, host string) error {
	if p.limitPerMinute <= 0 {
		return nil
	}

	for {
		wait, ok := p.tryAcquire(host, time.Now())
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tryAcquire records a navigation if the window has room. Otherwise it
// returns how long until the oldest recorded navigation leaves the window.
func (p *Pacer) tryAcquire(host string, now time.Time) (time.Duration, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	windowStart := now.Add(-pacerWindow)
	valid := p.hosts[host][:0]
	for _, ts := range p.hosts[host] {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	p.hosts[host] = valid

	if len(valid) < p.limitPerMinute {
		p.hosts[host] = append(valid, now)
		return 0, true
	}

	return valid[0].Sub(windowStart), false
}
