package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter is a ticket counter that survives restarts and is shared by
// every process serving the same terminal.
type RedisCounter struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// NewRedisCounter seeds pos:tickets:{terminalID} so that the first number
// handed out is seed. An existing counter is left as it is.
func NewRedisCounter(ctx context.Context, client *redis.Client, terminalID string, seed int64) (*RedisCounter, error) {
	key := "pos:tickets:" + terminalID
	if err := client.SetNX(ctx, key, seed-1, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to seed ticket counter %s: %w", key, err)
	}
	return &RedisCounter{client: client, key: key, timeout: 2 * time.Second}, nil
}

func (c *RedisCounter) Next() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	n, err := c.client.Incr(ctx, c.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", c.key, err)
	}
	return n, nil
}
