// Package kv is the persistent key-value store behind the storefront: one
// string value per logical key, the server-side stand-in for browser local
// storage.
package kv

import (
	"context"
	"fmt"
	"time"
)

type Store interface {
	// Get returns ok=false, err=nil when key has never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
}

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Options struct {
	Backend string

	FilePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DatabaseURL string
}

// Open builds the configured backend. The returned close func is never nil.
func Open(ctx context.Context, opts Options) (Store, func(), error) {
	noop := func() {}

	switch opts.Backend {
	case BackendMemory:
		return NewMemStore(), noop, nil

	case BackendFile:
		s, err := NewFileStore(opts.FilePath)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case BackendRedis:
		client, err := NewRedisClient(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisStore(client), func() { _ = client.Close() }, nil

	case BackendPostgres:
		pool, err := NewPool(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		s := NewPostgresStore(pool)
		if err := s.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return s, pool.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown kv backend %q", opts.Backend)
	}
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
