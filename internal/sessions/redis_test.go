package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), mr
}

func TestRedisStoreCreateResolve(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Hour)

	token, err := store.Create(ctx, "user-1")
	require.NoError(t, err)

	got, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got)
	assert.True(t, mr.Exists(redisKey(token)))
	assert.Equal(t, time.Hour, mr.TTL(redisKey(token)))
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Minute)

	token, err := store.Create(ctx, "user-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRedisStoreCollisionRetry(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t, time.Hour)

	seq := []Token{42, 42, 43}
	store.gen = func() (Token, error) {
		next := seq[0]
		seq = seq[1:]
		return next, nil
	}

	first, err := store.Create(ctx, "a")
	require.NoError(t, err)
	second, err := store.Create(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, Token(42), first)
	assert.Equal(t, Token(43), second)

	owner, err := store.Resolve(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "a", owner)
}

func TestRedisStoreRevokeAndReset(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Hour)

	t1, err := store.Create(ctx, "a")
	require.NoError(t, err)
	t2, err := store.Create(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, t1))
	_, err = store.Resolve(ctx, t1)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, mr.Set("unrelated", "x"))
	require.NoError(t, store.Reset(ctx))
	_, err = store.Resolve(ctx, t2)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, mr.Exists("unrelated"))
}
