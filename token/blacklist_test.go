package token_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/varsityhq/varsity-server/token"
)

func TestBlacklistAddThenLookup(t *testing.T) {
	ctx := context.Background()
	bl := token.NewInMemoryBlacklist()

	revoked, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, bl.Add(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestBlacklistEntryExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := now
	var mu sync.Mutex
	bl := token.NewInMemoryBlacklistWithNow(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	})

	require.NoError(t, bl.Add(ctx, "jti-1", now.Add(time.Minute)))

	revoked, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	// A retained entry past its logical expiry reads as non-blacklisted
	mu.Lock()
	clock = now.Add(2 * time.Minute)
	mu.Unlock()

	revoked, err = bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestBlacklistCleanupRemovesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := now
	var mu sync.Mutex
	bl := token.NewInMemoryBlacklistWithNow(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	})

	require.NoError(t, bl.Add(ctx, "short", now.Add(time.Minute)))
	require.NoError(t, bl.Add(ctx, "long", now.Add(time.Hour)))

	mu.Lock()
	clock = now.Add(10 * time.Minute)
	mu.Unlock()
	require.NoError(t, bl.Cleanup(ctx))

	revoked, err := bl.IsBlacklisted(ctx, "long")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = bl.IsBlacklisted(ctx, "short")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestBlacklistConsumeClaimsOnce(t *testing.T) {
	ctx := context.Background()
	bl := token.NewInMemoryBlacklist()
	exp := time.Now().Add(time.Hour)

	consumed, err := bl.Consume(ctx, "jti-1", exp)
	require.NoError(t, err)
	require.True(t, consumed)

	consumed, err = bl.Consume(ctx, "jti-1", exp)
	require.NoError(t, err)
	require.False(t, consumed)

	// An explicitly revoked jti can never be consumed
	require.NoError(t, bl.Add(ctx, "jti-2", exp))
	consumed, err = bl.Consume(ctx, "jti-2", exp)
	require.NoError(t, err)
	require.False(t, consumed)
}

func TestBlacklistConsumeReclaimsExpiredEntry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := now
	var mu sync.Mutex
	bl := token.NewInMemoryBlacklistWithNow(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	})

	consumed, err := bl.Consume(ctx, "jti-1", now.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, consumed)

	// An unswept entry past its logical expiry no longer blocks the claim
	mu.Lock()
	clock = now.Add(2 * time.Minute)
	mu.Unlock()

	consumed, err = bl.Consume(ctx, "jti-1", clock.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, consumed)
}

func TestBlacklistConcurrentConsumeSingleWinner(t *testing.T) {
	ctx := context.Background()
	bl := token.NewInMemoryBlacklist()
	exp := time.Now().Add(time.Hour)

	const claimers = 16
	wins := make(chan bool, claimers)
	var start sync.WaitGroup
	start.Add(1)

	var wg sync.WaitGroup
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start.Wait()
			consumed, err := bl.Consume(ctx, "contested", exp)
			require.NoError(t, err)
			wins <- consumed
		}()
	}
	start.Done()
	wg.Wait()
	close(wins)

	var winners int
	for consumed := range wins {
		if consumed {
			winners++
		}
	}
	require.Equal(t, 1, winners)
}

func TestBlacklistConcurrentAddAndLookup(t *testing.T) {
	ctx := context.Background()
	bl := token.NewInMemoryBlacklist()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		jti := string(rune('a' + i%26))
		go func() {
			defer wg.Done()
			require.NoError(t, bl.Add(ctx, jti, exp))
		}()
		go func() {
			defer wg.Done()
			_, err := bl.IsBlacklisted(ctx, jti)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	revoked, err := bl.IsBlacklisted(ctx, "a")
	require.NoError(t, err)
	require.True(t, revoked)
}
