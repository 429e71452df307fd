// Package cache is a small TTL-aware key/value store backed by Redis.
// Values are JSON encoded. The package knows nothing about the domain
// on top of it and is safe to reuse for any short-lived state.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	rdb   *redis.Client
	group singleflight.Group
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// Set stores value under key, replacing any previous value and TTL.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %q: %w", key, err)
	}
	return nil
}

// Get decodes the value under key into dest. The second return value is
// false when the key is absent or expired, which is a normal outcome and
// not an error.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache key %q: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache value: %w", err)
	}
	return true, nil
}

// GetWithTTL reads the value and its remaining TTL in a single pipelined
// round trip. Reading them separately would race against expiry between
// the two commands.
func (c *Cache) GetWithTTL(ctx context.Context, key string, dest any) (time.Duration, bool, error) {
	pipe := c.rdb.TxPipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.TTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get cache key %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(getCmd.Val()), dest); err != nil {
		return 0, false, fmt.Errorf("failed to decode cache value: %w", err)
	}
	return ttlCmd.Val(), true, nil
}

// Update rewrites the value under key while keeping the original expiry
// deadline. It is a no-op when the key is absent.
func (c *Cache) Update(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}

	// XX + KEEPTTL: only touch existing keys and leave the TTL alone.
	err = c.rdb.SetArgs(ctx, key, data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to update cache key %q: %w", key, err)
	}
	return nil
}

// Delete removes the entry. Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key %q: %w", key, err)
	}
	return nil
}

type fetched[T any] struct {
	value T
	ttl   time.Duration
}

// Fetch returns the cached value and its remaining TTL when an entry for
// key exists. Otherwise it invokes supplier once, stores the result with
// the given TTL and returns it.
//
// Concurrent callers for the same key are collapsed into a single
// supplier invocation, and the store itself uses SET NX so that two
// processes racing the same absent key converge on one stored value per
// expiry window.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration,
	supplier func(context.Context) (T, error)) (T, time.Duration, error) {

	res, err, _ := c.group.Do(key, func() (any, error) {
		var existing T
		remaining, ok, err := c.GetWithTTL(ctx, key, &existing)
		if err != nil {
			return nil, err
		}
		if ok {
			return fetched[T]{value: existing, ttl: remaining}, nil
		}

		value, err := supplier(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode cache value: %w", err)
		}

		stored, err := c.rdb.SetNX(ctx, key, data, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to set cache key %q: %w", key, err)
		}
		if stored {
			return fetched[T]{value: value, ttl: ttl}, nil
		}

		// Another process won the SET NX. Use its entry instead of ours.
		remaining, ok, err = c.GetWithTTL(ctx, key, &existing)
		if err != nil {
			return nil, err
		}
		if ok {
			return fetched[T]{value: existing, ttl: remaining}, nil
		}

		// The winner expired between the SET NX and our read. Store ours.
		if err := c.Set(ctx, key, value, ttl); err != nil {
			return nil, err
		}
		return fetched[T]{value: value, ttl: ttl}, nil
	})
	if err != nil {
		var zero T
		return zero, 0, err
	}

	f := res.(fetched[T])
	return f.value, f.ttl, nil
}
