package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/oranba/product-catalog/pkg/logger"
)

// Redis is a Store backed by a Redis instance. Keys are namespaced so several
// services can share one database without collisions.
type Redis struct {
	client    *redis.Client
	namespace string
	logger    logger.Logger
}

// RedisOptions configures the Redis cache backend.
type RedisOptions struct {
	// URL in redis://[user:pass@]host:port/db form.
	URL string
	// Namespace prefixes every key, e.g. "catalog:cache".
	Namespace string
	Logger    logger.Logger
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(opts RedisOptions) (*Redis, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NoOp{}
	}

	if opts.URL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}

	redisOpt, err := redis.ParseURL(opts.URL)
	if err != nil {
		log.Error("Failed to parse Redis URL", logger.Fields{
			"error": err,
			"url":   opts.URL,
		})
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(redisOpt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", logger.Fields{
			"error":     err,
			"namespace": opts.Namespace,
		})
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis cache connected", logger.Fields{
		"namespace": opts.Namespace,
		"db":        redisOpt.DB,
	})

	return &Redis{
		client:    client,
		namespace: opts.Namespace,
		logger:    log,
	}, nil
}

// formatKey prefixes a key with the namespace.
func (r *Redis) formatKey(key string) string {
	if r.namespace != "" {
		return fmt.Sprintf("%s:%s", r.namespace, key)
	}
	return key
}

// Get retrieves a cached value.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.formatKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores a value with optional TTL. A zero TTL never expires.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.formatKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys.
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	formatted := make([]string, len(keys))
	for i, key := range keys {
		formatted[i] = r.formatKey(key)
	}
	if err := r.client.Del(ctx, formatted...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// DeletePrefix removes every key beginning with prefix using SCAN so large
// regions do not block the server the way KEYS would.
func (r *Redis) DeletePrefix(ctx context.Context, prefix string) error {
	pattern := r.formatKey(prefix) + "*"
	var cursor uint64
	removed := 0
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			removed += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	r.logger.Debug("Cache region evicted", logger.Fields{
		"prefix":  prefix,
		"removed": removed,
	})
	return nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying connection pool.
func (r *Redis) Close() error {
	r.logger.Info("Closing Redis cache connection", logger.Fields{
		"namespace": r.namespace,
	})
	return r.client.Close()
}
