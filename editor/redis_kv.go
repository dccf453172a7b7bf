package editor

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisKV keeps drafts in Redis so several workstations share them.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOptions configures NewRedisKV.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	// TTL expires drafts nobody touched; zero keeps them forever.
	TTL time.Duration
}

func NewRedisKV(opts RedisOptions) *RedisKV {
	return &RedisKV{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Address,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		ttl: opts.TTL,
	}
}

// NewRedisKVWithClient wraps an existing client.
func NewRedisKVWithClient(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

func (r *RedisKV) Get(key string) ([]byte, error) {
	v, err := r.client.Get(context.Background(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return v, err
}

func (r *RedisKV) Set(key string, value []byte) error {
	return r.client.Set(context.Background(), key, value, r.ttl).Err()
}

func (r *RedisKV) Delete(key string) error {
	return r.client.Del(context.Background(), key).Err()
}

func (r *RedisKV) Keys(prefix string) ([]string, error) {
	ctx := context.Background()
	var keys []string
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}
