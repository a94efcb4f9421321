package utils

import (
	"sync"
	"time"
)

// CooldownGate admits at most one hit per key per window. Used to throttle
// message XP awards.
type CooldownGate struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

func NewCooldownGate(window time.Duration) *CooldownGate {
	return &CooldownGate{window: window, last: make(map[string]time.Time)}
}

func (g *CooldownGate) Allow(key string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.last[key]; ok && now.Sub(last) < g.window {
		return false
	}
	g.last[key] = now
	return true
}
