package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb), mr
}

func TestSetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "otp:1", "483920", 2*time.Minute)
	assert.NoError(t, err)

	var got string
	ok, err := c.Get(ctx, "otp:1", &got)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "483920", got)
}

func TestGetAbsentKey(t *testing.T) {
	c, _ := newTestCache(t)

	var got string
	ok, err := c.Get(context.Background(), "missing", &got)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestGetDecodeFailure(t *testing.T) {
	c, mr := newTestCache(t)

	// Raw bytes that were never JSON encoded.
	mr.Set("broken", "not-json")

	var got int
	_, err := c.Get(context.Background(), "broken", &got)
	assert.Error(t, err)
}

func TestGetWithTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "otp:1", "483920", 120*time.Second)
	assert.NoError(t, err)

	var got string
	ttl, ok, err := c.GetWithTTL(ctx, "otp:1", &got)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "483920", got)
	assert.Equal(t, 120*time.Second, ttl)

	mr.FastForward(30 * time.Second)

	ttl, ok, err = c.GetWithTTL(ctx, "otp:1", &got)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 90*time.Second, ttl)
}

func TestGetWithTTLAbsentKey(t *testing.T) {
	c, _ := newTestCache(t)

	var got string
	_, ok, err := c.GetWithTTL(context.Background(), "missing", &got)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdatePreservesTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "otp:1", "483920", 120*time.Second)
	assert.NoError(t, err)

	mr.FastForward(20 * time.Second)

	err = c.Update(ctx, "otp:1", "000000")
	assert.NoError(t, err)

	var got string
	ttl, ok, err := c.GetWithTTL(ctx, "otp:1", &got)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "000000", got)
	// The expiry deadline must not move on update.
	assert.Equal(t, 100*time.Second, ttl)
}

func TestUpdateAbsentKeyIsNoop(t *testing.T) {
	c, mr := newTestCache(t)

	err := c.Update(context.Background(), "missing", "value")
	assert.NoError(t, err)
	assert.False(t, mr.Exists("missing"))
}

func TestDeleteIsIdempotent(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "otp:1", "483920", time.Minute)
	assert.NoError(t, err)

	assert.NoError(t, c.Delete(ctx, "otp:1"))
	assert.NoError(t, c.Delete(ctx, "otp:1"))

	var got string
	ok, err := c.Get(ctx, "otp:1", &got)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFetchStoresSuppliedValue(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	value, ttl, err := Fetch(ctx, c, "otp:1", 120*time.Second,
		func(ctx context.Context) (string, error) {
			return "483920", nil
		})
	assert.NoError(t, err)
	assert.Equal(t, "483920", value)
	assert.Equal(t, 120*time.Second, ttl)

	var got string
	ok, err := c.Get(ctx, "otp:1", &got)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "483920", got)
}

func TestFetchReturnsExistingEntry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "otp:1", "111111", 120*time.Second)
	assert.NoError(t, err)
	mr.FastForward(50 * time.Second)

	value, ttl, err := Fetch(ctx, c, "otp:1", 120*time.Second,
		func(ctx context.Context) (string, error) {
			t.Fatal("supplier must not run for a live entry")
			return "", nil
		})
	assert.NoError(t, err)
	assert.Equal(t, "111111", value)
	assert.Equal(t, 70*time.Second, ttl)
}

func TestFetchAfterExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	err := c.Set(ctx, "otp:1", "111111", 120*time.Second)
	assert.NoError(t, err)
	mr.FastForward(121 * time.Second)

	value, ttl, err := Fetch(ctx, c, "otp:1", 120*time.Second,
		func(ctx context.Context) (string, error) {
			return "222222", nil
		})
	assert.NoError(t, err)
	assert.Equal(t, "222222", value)
	assert.Equal(t, 120*time.Second, ttl)
}

func TestFetchSupplierRunsOnceUnderConcurrency(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var calls atomic.Int64
	supplier := func(ctx context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "483920", nil
	}

	const n = 20
	values := make([]string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value, _, err := Fetch(ctx, c, "otp:1", 120*time.Second, supplier)
			assert.NoError(t, err)
			values[i] = value
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	for _, value := range values {
		assert.Equal(t, "483920", value)
	}
}
