package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/authd/internal/errors"
)

// Config holds the Redis connection settings.
type Config struct {
	// Addr is the host:port of the Redis server.
	Addr string
	// DB is the Redis logical database number.
	DB int
	// ConnectAttempts is the number of PING attempts before Connect gives up.
	ConnectAttempts int
	// ConnectBackoff is the fixed delay between PING attempts.
	ConnectBackoff time.Duration
}

// RedisStore implements HashStore on a Redis client.
type RedisStore struct {
	client *redis.Client
}

// Connect creates a Redis client and verifies connectivity with a bounded
// retry loop. Service startup ordering means the store may not be reachable
// immediately; after the configured attempts the last error propagates as a
// startup failure.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = client.Ping(ctx).Err(); err == nil {
			return &RedisStore{client: client}, nil
		}
		logger.Warn("store connection failed",
			slog.String("addr", cfg.Addr),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
		if attempt < attempts {
			select {
			case <-time.After(cfg.ConnectBackoff):
			case <-ctx.Done():
				_ = client.Close()
				return nil, ctx.Err()
			}
		}
	}
	_ = client.Close()
	return nil, apperrors.Wrap(err, "failed to connect to store")
}

// NewRedisStore wraps an existing Redis client. Used by tests that provide a
// miniredis-backed client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// HSet sets one or more field/value pairs on the named collection.
func (s *RedisStore) HSet(ctx context.Context, collection string, fieldvals ...string) error {
	args := make([]interface{}, len(fieldvals))
	for i, fv := range fieldvals {
		args[i] = fv
	}
	if err := s.client.HSet(ctx, collection, args...).Err(); err != nil {
		return apperrors.Wrapf(err, "hset %s", collection)
	}
	return nil
}

// HGet returns the value of a field, or ErrNotFound when absent.
func (s *RedisStore) HGet(ctx context.Context, collection, field string) (string, error) {
	value, err := s.client.HGet(ctx, collection, field).Result()
	if err == redis.Nil {
		return "", apperrors.Wrapf(apperrors.ErrNotFound, "field %s in %s", field, collection)
	}
	if err != nil {
		return "", apperrors.Wrapf(err, "hget %s %s", collection, field)
	}
	return value, nil
}

// HKeys lists the fields of the named collection.
func (s *RedisStore) HKeys(ctx context.Context, collection string) ([]string, error) {
	fields, err := s.client.HKeys(ctx, collection).Result()
	if err != nil {
		return nil, apperrors.Wrapf(err, "hkeys %s", collection)
	}
	return fields, nil
}

// HGetAll returns all field/value pairs of the named collection. A missing
// collection yields an empty map, matching Redis semantics.
func (s *RedisStore) HGetAll(ctx context.Context, collection string) (map[string]string, error) {
	values, err := s.client.HGetAll(ctx, collection).Result()
	if err != nil {
		return nil, apperrors.Wrapf(err, "hgetall %s", collection)
	}
	return values, nil
}

// HExists reports whether the field exists on the named collection.
func (s *RedisStore) HExists(ctx context.Context, collection, field string) (bool, error) {
	exists, err := s.client.HExists(ctx, collection, field).Result()
	if err != nil {
		return false, apperrors.Wrapf(err, "hexists %s %s", collection, field)
	}
	return exists, nil
}

// HDel deletes the given fields from the named collection.
func (s *RedisStore) HDel(ctx context.Context, collection string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, collection, fields...).Err(); err != nil {
		return apperrors.Wrapf(err, "hdel %s", collection)
	}
	return nil
}

// Set writes a scalar key.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return apperrors.Wrapf(err, "set %s", key)
	}
	return nil
}

// Get reads a scalar key, or ErrNotFound when absent.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", apperrors.Wrapf(apperrors.ErrNotFound, "key %s", key)
	}
	if err != nil {
		return "", apperrors.Wrapf(err, "get %s", key)
	}
	return value, nil
}

// Del deletes entire collections or scalar keys.
func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.Wrapf(err, "del %v", keys)
	}
	return nil
}

// Exists reports whether the given key exists in any form.
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, apperrors.Wrapf(err, "exists %s", key)
	}
	return n == 1, nil
}

// FlushAll wipes every key in the store.
func (s *RedisStore) FlushAll(ctx context.Context) error {
	if err := s.client.FlushAll(ctx).Err(); err != nil {
		return apperrors.Wrap(err, "flushall")
	}
	return nil
}

// Ping verifies connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return apperrors.Wrap(err, "ping")
	}
	return nil
}

// Close releases the underlying connection resources.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
