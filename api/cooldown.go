package api

import (
	"sync"
	"time"
)

// CooldownManager rate-limits repeated commands per player. A command is
// checked before it runs and armed only after it succeeds, so a rejected
// command never costs the player their window.
type CooldownManager struct {
	window time.Duration

	mu   sync.Mutex
	last map[cooldownKey]time.Time
}

type cooldownKey struct {
	player  string
	command string
}

// NewCooldownManager creates a manager with the given window. A zero or
// negative window disables cooldowns entirely.
func NewCooldownManager(window time.Duration) *CooldownManager {
	return &CooldownManager{
		window: window,
		last:   make(map[cooldownKey]time.Time),
	}
}

// OnCooldown reports whether player ran command inside the window, and if
// so how long until it is allowed again.
func (c *CooldownManager) OnCooldown(player, command string) (time.Duration, bool) {
	if c.window <= 0 {
		return 0, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	at, ok := c.last[cooldownKey{player, command}]
	if !ok {
		return 0, false
	}
	remaining := c.window - time.Since(at)
	if remaining <= 0 {
		delete(c.last, cooldownKey{player, command})
		return 0, false
	}
	return remaining, true
}

// Arm starts the window for player and command.
func (c *CooldownManager) Arm(player, command string) {
	if c.window <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[cooldownKey{player, command}] = time.Now()
}
