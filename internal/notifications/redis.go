package notifications

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher broadcasts notifications over a shared redis connection.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher wraps an existing redis client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}
