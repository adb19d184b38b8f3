package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = Close() })

	ctx := context.Background()

	revoked, err := IsTokenBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, BlacklistToken(ctx, "token-a", time.Minute))

	revoked, err = IsTokenBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = IsTokenBlacklisted(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = IsTokenBlacklisted(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklist_NotInitialized(t *testing.T) {
	SetClient(nil)

	_, err := IsTokenBlacklisted(context.Background(), "token")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, BlacklistToken(context.Background(), "token", time.Minute), ErrNotInitialized)
}
