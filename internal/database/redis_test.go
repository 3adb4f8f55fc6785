package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &RedisClient{Client: client}, mr
}

func TestRedisClient_SetGetDelete(t *testing.T) {
	rc, _ := testClient(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "performance:latest_report", "{}", time.Hour))

	got, err := rc.Get(ctx, "performance:latest_report")
	require.NoError(t, err)
	assert.Equal(t, "{}", got)

	require.NoError(t, rc.Delete(ctx, "performance:latest_report"))
	_, err = rc.Get(ctx, "performance:latest_report")
	assert.ErrorIs(t, err, goredis.Nil)
}

func TestRedisClient_SetAppliesTTL(t *testing.T) {
	rc, mr := testClient(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "k", "v", time.Minute))
	assert.Positive(t, mr.TTL("k"))
}

func TestRedisClient_HealthCheck(t *testing.T) {
	rc, mr := testClient(t)
	assert.NoError(t, rc.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, rc.HealthCheck(context.Background()))
}
