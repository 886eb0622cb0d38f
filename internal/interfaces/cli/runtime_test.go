package cli

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/simheat/internal/config"
	"github.com/turtacn/simheat/internal/testutil"
)

func TestNewRuntime_NoBackends(t *testing.T) {
	t.Parallel()
	rt, err := newRuntime(context.Background(), config.Default(), testutil.NewMockLogger(), runtimeOptions{})
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.Service)
	assert.Nil(t, rt.Metrics)
	assert.Nil(t, rt.Collector)
	assert.Empty(t, rt.Checkers)
}

func TestNewRuntime_CacheAndEvents(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Metrics.Namespace = "runtime_test"
	cfg.Cache.Enabled = true
	cfg.Cache.Addr = mr.Addr()
	cfg.Events.Enabled = true
	cfg.Events.Brokers = []string{"127.0.0.1:1"}

	rt, err := newRuntime(context.Background(), cfg, testutil.NewMockLogger(), runtimeOptions{metrics: true})
	require.NoError(t, err)

	assert.NotNil(t, rt.Metrics)
	require.Len(t, rt.Checkers, 1)
	assert.Equal(t, "redis", rt.Checkers[0].Name())
	assert.NoError(t, rt.Checkers[0].Check(context.Background()))
	assert.Len(t, rt.closers, 2)

	svc, err := rt.Rebuild(cfg)
	require.NoError(t, err)
	assert.NotNil(t, svc)

	rt.Close()
	assert.Empty(t, rt.closers)
	rt.Close()
}

func TestNewRuntime_CacheUnreachable(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Cache.Enabled = true
	cfg.Cache.Addr = addr

	_, err := newRuntime(context.Background(), cfg, testutil.NewMockLogger(), runtimeOptions{})
	assert.Error(t, err)
}

//Personal.AI order the ending
