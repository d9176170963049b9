// Package redis implements session.KV on top of Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/iudanet/socialauth/internal/server/session"
)

// Config содержит параметры подключения к Redis
type Config struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KV is a Redis-backed session.KV. Expiry is native (PX).
type KV struct {
	client *goredis.Client
}

var _ session.KV = (*KV)(nil)

// New parses cfg.URL, connects and pings the server.
func New(ctx context.Context, cfg Config) (*KV, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &KV{client: client}, nil
}

// Set stores value for ttl.
func (k *KV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	return k.client.Set(ctx, key, value, ttl).Err()
}

// Get returns the value or session.ErrNotFound.
func (k *KV) Get(ctx context.Context, key string) (string, error) {
	val, err := k.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", session.ErrNotFound
		}
		return "", err
	}
	return val, nil
}

// Delete removes key.
func (k *KV) Delete(ctx context.Context, key string) error {
	return k.client.Del(ctx, key).Err()
}

// Exists reports whether key is present.
func (k *KV) Exists(ctx context.Context, key string) (bool, error) {
	n, err := k.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Ping checks the connection.
func (k *KV) Ping(ctx context.Context) error {
	return k.client.Ping(ctx).Err()
}

// Close closes the client.
func (k *KV) Close() error {
	return k.client.Close()
}
