// Package identity maps a federated identity onto a local user record.
// It is the only place where users are created.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/socialauth/internal/models"
	"github.com/iudanet/socialauth/internal/server/storage"
)

var (
	// ErrInternalInconsistency means the store reported a uniqueness
	// conflict but the conflicting row cannot be read back.
	ErrInternalInconsistency = errors.New("identity store is inconsistent")

	// ErrInvalidProfile is returned for profiles without an external id
	// or provider.
	ErrInvalidProfile = errors.New("invalid provider profile")
)

// Resolver finds or creates the user for a (provider, external id) pair.
// It holds no lock: the store's unique constraint arbitrates concurrent
// first logins, and the loser re-reads exactly once.
type Resolver struct {
	users  storage.UserStorage
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewResolver creates a new identity resolver.
func NewResolver(users storage.UserStorage, logger *slog.Logger) *Resolver {
	return &Resolver{
		users:  users,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Resolve returns the user bound to profile at provider and whether it was
// created by this call. Existing users are returned as stored; profile
// fields are only written on first login.
func (r *Resolver) Resolve(ctx context.Context, profile *models.ProviderProfile, provider string) (*models.User, bool, error) {
	if profile == nil || strings.TrimSpace(profile.ExternalID) == "" {
		return nil, false, fmt.Errorf("%w: missing external id", ErrInvalidProfile)
	}
	if strings.TrimSpace(provider) == "" {
		return nil, false, fmt.Errorf("%w: missing provider", ErrInvalidProfile)
	}

	user, err := r.users.GetUserByProviderAndExternalID(ctx, provider, profile.ExternalID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}

	nickname := profile.Nickname
	if strings.TrimSpace(nickname) == "" {
		nickname = models.DefaultNickname
	}

	candidate := &models.User{
		ID:         r.newID(),
		Provider:   provider,
		ExternalID: profile.ExternalID,
		Nickname:   nickname,
		Email:      profile.Email,
		AvatarURL:  profile.AvatarURL,
		Role:       models.RoleUser,
		CreatedAt:  r.now().UTC(),
	}

	err = r.users.CreateUser(ctx, candidate)
	if err == nil {
		r.logger.Info("user registered",
			"user_id", candidate.ID,
			"provider", provider,
		)
		return candidate, true, nil
	}
	if !errors.Is(err, storage.ErrUserAlreadyExists) {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	// Параллельный первый вход выиграл гонку: перечитываем один раз
	user, err = r.users.GetUserByProviderAndExternalID(ctx, provider, profile.ExternalID)
	if err == nil {
		return user, false, nil
	}
	if errors.Is(err, storage.ErrUserNotFound) {
		r.logger.Error("unique conflict but user is missing on re-read",
			"provider", provider,
			"external_id", profile.ExternalID,
		)
		return nil, false, fmt.Errorf("%w: provider=%s", ErrInternalInconsistency, provider)
	}
	return nil, false, fmt.Errorf("failed to re-read user after conflict: %w", err)
}
