package ratelimit

import (
	"sync"
	"time"
)

// Cooldown is an in-memory per-identifier cooldown gate. A call is admitted
// only when at least the given cooldown has elapsed since the previous
// admitted call for that identifier; a rejected call leaves the stored
// timestamp untouched. Identifiers never seen before are always admitted.
//
// Safe for concurrent use. Intended for single-instance deployments; the
// HTTP surface has a Redis-backed window limiter for anything shared.
type Cooldown struct {
	mu   sync.Mutex
	last map[string]time.Time

	now func() time.Time
}

func NewCooldown() *Cooldown {
	return &Cooldown{
		last: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Admit reports whether id may proceed. When rejected, the second return
// value is how long the caller should wait before retrying.
func (c *Cooldown) Admit(id string, cooldown time.Duration) (bool, time.Duration) {
	if cooldown <= 0 {
		return true, 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if prev, ok := c.last[id]; ok {
		if elapsed := now.Sub(prev); elapsed < cooldown {
			return false, cooldown - elapsed
		}
	}
	c.last[id] = now
	return true, 0
}
