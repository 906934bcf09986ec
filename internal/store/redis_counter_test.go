package store_test

import (
	"context"
	"os"
	"testing"

	"commerce-engine/internal/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCounter(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping redis test")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	terminal := "test-" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), "pos:tickets:"+terminal) })

	c, err := store.NewRedisCounter(ctx, client, terminal, 1001)
	require.NoError(t, err)
	n, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1001), n)

	// A restarted process keeps counting from where the last one stopped.
	again, err := store.NewRedisCounter(ctx, client, terminal, 1001)
	require.NoError(t, err)
	n, err = again.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1002), n)
}
