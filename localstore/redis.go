package localstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// RedisSlots stores slots in Redis so several storefront replicas can share
// session state.
type RedisSlots struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlots accepts either a redis:// URL or a plain host:port. A zero
// ttl keeps slots forever.
func NewRedisSlots(addr string, ttl time.Duration) *RedisSlots {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		}
	}
	return &RedisSlots{client: redis.NewClient(opts), ttl: ttl}
}

// Ping retries with capped exponential backoff until Redis answers or ctx ends.
func (r *RedisSlots) Ping(ctx context.Context, attempts int) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = r.client.Ping(ctx).Err(); err == nil {
			return nil
		}
		backoff := time.Duration(100*(1<<uint(i))) * time.Millisecond
		if backoff > 5*time.Second {
			backoff = 5 * time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return errors.Wrapf(err, "redis ping failed after %d attempts", attempts)
}

func (r *RedisSlots) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redis get %s", key)
	}
	return v, true, nil
}

func (r *RedisSlots) Set(ctx context.Context, key string, value []byte) error {
	return errors.Wrapf(r.client.Set(ctx, key, value, r.ttl).Err(), "redis set %s", key)
}

func (r *RedisSlots) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(r.client.Del(ctx, key).Err(), "redis del %s", key)
}

func (r *RedisSlots) Close() error { return r.client.Close() }
