package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/simheat/pkg/errors"
)

func TestNewClient_Success(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), &RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := NewClient(context.Background(), &RedisConfig{Addr: addr, DialTimeout: 200 * time.Millisecond, MaxRetries: -1}, nil)
	assert.Nil(t, client)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeServiceUnavailable))
}

func TestClient_Operations(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), &RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	defer client.Close()
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "foo", "bar", time.Minute).Err())
	val, err := client.Get(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, "bar", val)

	keys, _, err := client.Scan(ctx, 0, "f*", 10).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, keys)

	n, err := client.Del(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClient_ClosedRejectsCommands(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), &RedisConfig{Addr: mr.Addr()}, nil)
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	ctx := context.Background()
	assert.ErrorIs(t, client.Ping(ctx), ErrClientClosed)
	assert.ErrorIs(t, client.Get(ctx, "k").Err(), ErrClientClosed)
	assert.ErrorIs(t, client.Set(ctx, "k", 1, 0).Err(), ErrClientClosed)
	assert.ErrorIs(t, client.Del(ctx, "k").Err(), ErrClientClosed)
	assert.ErrorIs(t, client.Scan(ctx, 0, "*", 1).Err(), ErrClientClosed)
}

//Personal.AI order the ending
