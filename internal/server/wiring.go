package server

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/iudanet/socialauth/internal/config"
	"github.com/iudanet/socialauth/internal/events"
	"github.com/iudanet/socialauth/internal/server/oauth"
	"github.com/iudanet/socialauth/internal/server/session"
	"github.com/iudanet/socialauth/internal/server/session/boltdb"
	"github.com/iudanet/socialauth/internal/server/session/redis"
	"github.com/iudanet/socialauth/internal/server/storage"
	"github.com/iudanet/socialauth/internal/server/storage/postgres"
	"github.com/iudanet/socialauth/internal/server/storage/sqlite"
)

// OpenUserStorage opens the identity store selected by cfg.Driver and
// applies pending migrations.
func OpenUserStorage(ctx context.Context, cfg config.DatabaseConfig) (storage.UserStorage, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, postgres.Config{
			DSN:      cfg.DSN,
			MaxConns: cfg.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// OpenSessionKV opens the session backend selected by cfg.Backend. The bolt
// backend starts its expiry sweeper; Close stops it.
func OpenSessionKV(ctx context.Context, cfg config.SessionsConfig, logger *slog.Logger) (session.KV, error) {
	switch cfg.Backend {
	case config.SessionsRedis:
		kv, err := redis.New(ctx, redis.Config{
			URL:          cfg.RedisURL,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
		if err != nil {
			return nil, err
		}
		return kv, nil
	case config.SessionsBolt:
		kv, err := boltdb.New(cfg.BoltPath, logger)
		if err != nil {
			return nil, err
		}
		kv.StartSweeper(cfg.SweepInterval)
		return kv, nil
	}
	return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
}

// NewProviders builds a client for every enabled provider. All clients share
// one bounded HTTP client.
func NewProviders(cfg *config.Config, logger *slog.Logger) (*oauth.Registry, error) {
	httpClient := oauth.NewHTTPClient(oauth.HTTPConfig{
		ConnectTimeout:  cfg.HTTP.ConnectTimeout,
		ResponseTimeout: cfg.HTTP.ResponseTimeout,
		MaxBodyBytes:    cfg.HTTP.MaxBodyBytes,
	})

	enabled := cfg.EnabledProviders()
	names := make([]string, 0, len(enabled))
	for name := range enabled {
		names = append(names, name)
	}
	sort.Strings(names)

	providers := make([]oauth.Provider, 0, len(names))
	for _, name := range names {
		client, err := oauth.New(name, enabled[name], httpClient, logger.With("provider", name))
		if err != nil {
			return nil, fmt.Errorf("failed to configure provider %s: %w", name, err)
		}
		providers = append(providers, client)
	}
	return oauth.NewRegistry(providers...), nil
}

// NewPublisher returns the AMQP publisher, or events.Noop when no broker
// url is configured.
func NewPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.Noop{}, nil
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange, cfg.PublishTimeout)
	if err != nil {
		return nil, err
	}
	return p, nil
}
