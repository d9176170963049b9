// Package auth orchestrates federated login and the token lifecycle.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/iudanet/socialauth/internal/events"
	"github.com/iudanet/socialauth/internal/models"
	"github.com/iudanet/socialauth/internal/server/jwt"
	"github.com/iudanet/socialauth/internal/server/oauth"
	"github.com/iudanet/socialauth/internal/server/storage"
)

var (
	// ErrLoginFailed wraps every login failure except an unknown provider.
	ErrLoginFailed = errors.New("login failed")

	// ErrAccessDenied is returned when the actor lacks the ADMIN role.
	ErrAccessDenied = errors.New("access denied")

	// ErrPrivilegedRole is returned when ADMIN is requested over the API.
	ErrPrivilegedRole = errors.New("role cannot be granted over the api")

	// ErrInvalidRole is returned for unknown role names.
	ErrInvalidRole = errors.New("invalid role")
)

// Providers resolves provider names.
type Providers interface {
	Lookup(name string) (oauth.Provider, error)
}

// Resolver maps a provider profile onto a local user.
type Resolver interface {
	Resolve(ctx context.Context, profile *models.ProviderProfile, provider string) (*models.User, bool, error)
}

// Tokens issues and verifies signed tokens.
type Tokens interface {
	CreateAccessToken(userID string, roles []string) (string, error)
	CreateRefreshToken(userID string) (string, error)
	VerifyAccessToken(token string) (*jwt.Claims, error)
	VerifyRefreshToken(token string) (*jwt.Claims, error)
}

// Sessions stores refresh tokens and the access token blacklist.
type Sessions interface {
	SaveRefreshToken(ctx context.Context, userID, token string) error
	IsValidRefreshToken(ctx context.Context, userID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID string) error
	Blacklist(ctx context.Context, token string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// LoginResult is the token pair issued on a successful login.
type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	IsNewUser    bool
}

// Service is the login orchestrator.
type Service struct {
	providers Providers
	resolver  Resolver
	tokens    Tokens
	sessions  Sessions
	users     storage.UserStorage
	events    events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new auth service. A nil publisher disables events.
func NewService(
	providers Providers,
	resolver Resolver,
	tokens Tokens,
	sessions Sessions,
	users storage.UserStorage,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		providers: providers,
		resolver:  resolver,
		tokens:    tokens,
		sessions:  sessions,
		users:     users,
		events:    publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Login exchanges code at providerName and issues a token pair.
// An unknown provider surfaces as oauth.ErrUnsupportedProvider; every other
// failure is ErrLoginFailed wrapping the cause.
func (s *Service) Login(ctx context.Context, code, providerName string) (*LoginResult, error) {
	provider, err := s.providers.Lookup(providerName)
	if err != nil {
		return nil, err
	}
	name := provider.Name()

	fail := func(step string, err error) (*LoginResult, error) {
		s.logger.Warn("login failed", "provider", name, "step", step, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrLoginFailed, step, err)
	}

	token, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		return fail("exchange code", err)
	}

	profile, err := provider.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		return fail("fetch profile", err)
	}

	user, isNew, err := s.resolver.Resolve(ctx, profile, name)
	if err != nil {
		return fail("resolve identity", err)
	}

	accessToken, err := s.tokens.CreateAccessToken(user.ID, []string{user.Role})
	if err != nil {
		return fail("issue access token", err)
	}
	refreshToken, err := s.tokens.CreateRefreshToken(user.ID)
	if err != nil {
		return fail("issue refresh token", err)
	}

	if err := s.sessions.SaveRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return fail("save refresh token", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "provider", name, "new_user", isNew)

	if isNew {
		s.publish(ctx, events.Event{Type: events.TypeUserRegistered, UserID: user.ID, Provider: name})
	}
	s.publish(ctx, events.Event{Type: events.TypeUserLoggedIn, UserID: user.ID, Provider: name})

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		IsNewUser:    isNew,
	}, nil
}

// Refresh issues a new access token for a valid, stored refresh token.
// The refresh token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}
	userID := claims.Subject

	valid, err := s.sessions.IsValidRefreshToken(ctx, userID, refreshToken)
	if err != nil {
		// Хранилище недоступно: отказываем, а не пропускаем
		s.logger.Error("refresh token check failed", "user_id", userID, "error", err)
		return "", fmt.Errorf("%w: session store: %w", jwt.ErrInvalidToken, err)
	}
	if !valid {
		return "", fmt.Errorf("%w: refresh token is not active", jwt.ErrInvalidToken)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", fmt.Errorf("%w: user no longer exists", jwt.ErrInvalidToken)
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	accessToken, err := s.tokens.CreateAccessToken(user.ID, []string{user.Role})
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes accessToken for its remaining lifetime and drops the
// user's refresh token. Only valid, not yet revoked access tokens are accepted.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return err
	}

	revoked, err := s.sessions.IsBlacklisted(ctx, accessToken)
	if err != nil {
		return fmt.Errorf("failed to check blacklist: %w", err)
	}
	if revoked {
		return fmt.Errorf("%w: token already revoked", jwt.ErrInvalidToken)
	}

	if err := s.sessions.DeleteRefreshToken(ctx, claims.Subject); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	if err := s.sessions.Blacklist(ctx, accessToken, claims.RemainingTTL(s.now())); err != nil {
		return fmt.Errorf("failed to blacklist access token: %w", err)
	}

	s.logger.Info("user logged out", "user_id", claims.Subject)
	s.publish(ctx, events.Event{Type: events.TypeUserLoggedOut, UserID: claims.Subject})
	return nil
}

// ChangeRole sets the role of targetUserID. The actor must be ADMIN and
// only non-privileged roles can be assigned; ADMIN is granted offline.
func (s *Service) ChangeRole(ctx context.Context, actorID string, actorRoles []string, targetUserID, role string) error {
	s.logger.Warn("role change requested",
		"actor_id", actorID,
		"target_user_id", targetUserID,
		"role", role,
	)

	if !slices.Contains(actorRoles, models.RoleAdmin) {
		return ErrAccessDenied
	}
	if !models.IsKnownRole(role) {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if role == models.RoleAdmin {
		return ErrPrivilegedRole
	}

	if err := s.users.UpdateUserRole(ctx, targetUserID, role); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:    events.TypeRoleChanged,
		UserID:  targetUserID,
		Role:    role,
		ActorID: actorID,
	})
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	event.OccurredAt = s.now().UTC()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "type", event.Type, "error", err)
	}
}
