package redis_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acmeshell/pkg/db/redis"
)

func configFor(t *testing.T, addr string) *redis.Config {
	t.Helper()
	host, portStr, _ := strings.Cut(addr, ":")
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := redis.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	return cfg
}

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := redis.NewClient(context.Background(), configFor(t, s.Addr()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewClientConnectionFailure(t *testing.T) {
	cfg := configFor(t, "127.0.0.1:1")
	cfg.ConnectTimeout = 100 * time.Millisecond

	client, err := redis.NewClient(context.Background(), cfg)

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), redis.ErrConnect)
}

func TestDefaultConfig(t *testing.T) {
	cfg := redis.DefaultConfig()
	assert.Equal(t, "localhost:6379", cfg.Address())
	assert.Equal(t, redis.DefaultPoolSize, cfg.PoolSize)
}
