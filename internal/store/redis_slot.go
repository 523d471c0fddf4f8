package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces slot keys on a shared Redis server.
const DefaultRedisPrefix = "gigtrack:"

// RedisSlot stores each slot as a plain Redis string.
type RedisSlot struct {
	client *redis.Client
	prefix string
}

func NewRedisSlot(client *redis.Client, prefix string) *RedisSlot {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisSlot{client: client, prefix: prefix}
}

// OpenRedisSlot connects to url (redis://...) and pings it once.
func OpenRedisSlot(ctx context.Context, url, prefix string) (*RedisSlot, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("redis backend: missing url")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis backend: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis backend: %w", err)
	}
	return NewRedisSlot(client, prefix), nil
}

func (r *RedisSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisSlot) Put(ctx context.Context, key string, b []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, b, 0).Err()
}

func (r *RedisSlot) Close() error { return r.client.Close() }
