package token

import (
	"context"
	"sync"
	"time"
)

// Blacklist is the revocation registry mapping a token's jti to its expiry.
// Add must be visible to any subsequent IsBlacklisted call system-wide.
type Blacklist interface {
	Add(ctx context.Context, jti string, exp time.Time) error
	// Consume atomically records jti and reports whether it was newly
	// recorded. False means a live entry already existed, so the token was
	// already consumed or revoked. Concurrent Consume calls for one jti
	// yield true exactly once.
	Consume(ctx context.Context, jti string, exp time.Time) (bool, error)
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	Cleanup(ctx context.Context) error // Remove expired entries
}

// InMemoryBlacklist is a simple in-memory implementation
type InMemoryBlacklist struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
	nowFunc func() time.Time
}

func NewInMemoryBlacklist() *InMemoryBlacklist {
	return &InMemoryBlacklist{
		revoked: make(map[string]time.Time),
		nowFunc: NowTimeFunc,
	}
}

// NewInMemoryBlacklistWithNow creates a blacklist with an injected clock (for testing)
func NewInMemoryBlacklistWithNow(now func() time.Time) *InMemoryBlacklist {
	b := NewInMemoryBlacklist()
	b.nowFunc = now
	return b
}

func (c *InMemoryBlacklist) Add(_ context.Context, jti string, exp time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
	return nil
}

func (c *InMemoryBlacklist) Consume(_ context.Context, jti string, exp time.Time) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, exists := c.revoked[jti]; exists && c.nowFunc().Before(existing) {
		return false, nil
	}
	c.revoked[jti] = exp
	return true, nil
}

// IsBlacklisted reports whether jti is revoked. An entry whose expiry has
// passed no longer counts as blacklisted even if it has not been swept yet.
func (c *InMemoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	exp, exists := c.revoked[jti]
	if !exists {
		return false, nil
	}
	return c.nowFunc().Before(exp), nil
}

func (c *InMemoryBlacklist) Cleanup(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowFunc()
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
		}
	}
	return nil
}

// StartSweeper runs Cleanup every interval until ctx is cancelled. This keeps
// the registry bounded by the union of live token TTLs under sustained
// login/logout cycles.
func StartSweeper(ctx context.Context, b Blacklist, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = b.Cleanup(ctx)
			}
		}
	}()
}
