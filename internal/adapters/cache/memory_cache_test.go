package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixerhq/fixer-moderation/internal/core"
)

var (
	_ core.VerdictCache = (*MemoryCache)(nil)
	_ core.VerdictCache = (*SQLiteCache)(nil)
	_ core.VerdictCache = (*MySQLCache)(nil)
	_ core.VerdictCache = (*RedisCache)(nil)
)

func newTestMemoryCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	t.Cleanup(c.Stop)
	return c
}

func entry(fingerprint string, approved bool, ttl time.Duration) *core.VerdictEntry {
	return &core.VerdictEntry{
		Fingerprint: fingerprint,
		Approved:    approved,
		Reason:      "reason",
		Rule:        "rule",
		LastSeen:    time.Now(),
		ExpiresAt:   time.Now().Add(ttl),
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("fp-1", true, time.Hour)))

	got, err := c.Get(ctx, "fp-1")
	require.NoError(t, err)
	assert.True(t, got.Approved)
	assert.Equal(t, "fp-1", got.Fingerprint)
}

func TestMemoryCache_GetMissing(t *testing.T) {
	c := newTestMemoryCache(t)

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache_GetExpired(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("fp-old", false, -time.Minute)))

	_, err := c.Get(ctx, "fp-old")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("fp-1", true, time.Hour)))
	require.NoError(t, c.Delete(ctx, "fp-1"))

	_, err := c.Get(ctx, "fp-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache_CleanupDropsExpiredOnly(t *testing.T) {
	c := newTestMemoryCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, entry("fp-live", true, time.Hour)))
	require.NoError(t, c.Set(ctx, entry("fp-old", true, -time.Minute)))

	require.NoError(t, c.Cleanup(ctx))

	_, err := c.Get(ctx, "fp-live")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "fp-old")
	assert.ErrorIs(t, err, ErrNotFound)
}
