package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix    = "storefront:"
	redisTimeout = 2 * time.Second
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		v  string
		ok bool
	)
	err := withTimeout(ctx, redisTimeout, func(ctx context.Context) error {
		res, err := s.client.Get(ctx, keyPrefix+key).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("redis get %s: %w", key, err)
		}
		v, ok = res, true
		return nil
	})
	return v, ok, err
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return withTimeout(ctx, redisTimeout, func(ctx context.Context) error {
		if err := s.client.Set(ctx, keyPrefix+key, value, 0).Err(); err != nil {
			return fmt.Errorf("redis set %s: %w", key, err)
		}
		return nil
	})
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, redisTimeout, func(ctx context.Context) error {
		return s.client.Ping(ctx).Err()
	})
}
