package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/socialauth/internal/crypto"
)

// Префиксы ключей в KV
const (
	refreshPrefix   = "refresh:"
	blacklistPrefix = "blacklist:"
	blacklistValue  = "logout"
)

// Значения по умолчанию
const (
	DefaultRefreshTTL       = 7 * 24 * time.Hour
	DefaultOperationTimeout = 2 * time.Second
)

// Store keeps the single valid refresh token per user and the access
// token blacklist on top of a KV backend.
type Store struct {
	kv         KV
	refreshTTL time.Duration
	opTimeout  time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
	}
}

// WithOperationTimeout bounds every KV call.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// NewStore creates a new session store.
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		refreshTTL: DefaultRefreshTTL,
		opTimeout:  DefaultOperationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func refreshKey(userID string) string { return refreshPrefix + userID }

// Ключ blacklist строится из дайджеста, сырой токен в KV не попадает
func blacklistKey(token string) string { return blacklistPrefix + crypto.HashToken(token) }

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

// SaveRefreshToken stores token as the only valid refresh token of userID.
// Any previously stored token for the user is overwritten.
func (s *Store) SaveRefreshToken(ctx context.Context, userID, token string) error {
	if userID == "" || token == "" {
		return fmt.Errorf("user id and token are required")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.kv.Set(ctx, refreshKey(userID), token, s.refreshTTL); err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

// IsValidRefreshToken reports whether token is the stored, unexpired
// refresh token of userID.
func (s *Store) IsValidRefreshToken(ctx context.Context, userID, token string) (bool, error) {
	if userID == "" || token == "" {
		return false, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	stored, err := s.kv.Get(ctx, refreshKey(userID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read refresh token: %w", err)
	}

	return crypto.Equal(stored, token), nil
}

// DeleteRefreshToken removes the refresh token of userID. Idempotent.
func (s *Store) DeleteRefreshToken(ctx context.Context, userID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.kv.Delete(ctx, refreshKey(userID)); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// Blacklist revokes token for ttl. Non-positive ttl is a no-op: the token
// has already expired on its own.
func (s *Store) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if token == "" {
		return fmt.Errorf("token is required")
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.kv.Set(ctx, blacklistKey(token), blacklistValue, ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether token has been revoked.
func (s *Store) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ok, err := s.kv.Exists(ctx, blacklistKey(token))
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return ok, nil
}

// Ping checks the backing store.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.kv.Ping(ctx)
}
