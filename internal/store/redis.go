package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/satrianet/inventaris-backend/pkg/config"
)

// Redis keeps every collection document under a namespaced key. It exists so
// the same snapshot model can run against shared infrastructure without the
// domain noticing; it does not add transactions the contract never promised.
type Redis struct {
	client    *redis.Client
	namespace string
}

// NewRedis bootstraps a redis-backed document store and verifies
// connectivity.
func NewRedis(ctx context.Context, cfg config.RedisConfig, namespace string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if namespace == "" {
		namespace = "inventaris"
	}
	return &Redis{client: client, namespace: namespace}, nil
}

// Client exposes the underlying connection for collaborators (notification
// publishing) that share it.
func (r *Redis) Client() *redis.Client {
	return r.client
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(key string) string {
	return r.namespace + ":" + key
}

func (r *Redis) Load(ctx context.Context, key string, out any) error {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("loading document %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding document %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding document %q: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), raw, 0).Err(); err != nil {
		return fmt.Errorf("saving document %q: %w", key, err)
	}
	return nil
}
