package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/iudanet/socialauth/internal/models"
	"github.com/iudanet/socialauth/internal/server/handlers"
	"github.com/iudanet/socialauth/internal/server/jwt"
	"github.com/iudanet/socialauth/internal/server/storage"
	"github.com/iudanet/socialauth/pkg/api"
)

// TokenVerifier verifies access tokens.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*jwt.Claims, error)
}

// Revocations reports blacklisted access tokens.
type Revocations interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// Authenticator resolves the bearer token of a request into a principal.
//
// Outcomes per request:
//   - no usable Authorization header: the request continues anonymously;
//   - revoked, invalid or unverifiable token: 401 with code E102;
//   - otherwise the principal is attached to the request context.
type Authenticator struct {
	logger      *slog.Logger
	revocations Revocations
	tokens      TokenVerifier
	users       handlers.UserLookup
}

// NewAuthenticator создает Authenticator
func NewAuthenticator(logger *slog.Logger, revocations Revocations, tokens TokenVerifier, users handlers.UserLookup) *Authenticator {
	return &Authenticator{
		logger:      logger,
		revocations: revocations,
		tokens:      tokens,
		users:       users,
	}
}

// Middleware returns the authenticating middleware.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := handlers.BearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		p, err := a.Authenticate(r.Context(), token)
		if err != nil {
			a.logger.WarnContext(r.Context(), "request authentication rejected",
				"path", r.URL.Path,
				"error", err,
			)
			handlers.WriteError(w, a.logger, http.StatusUnauthorized, api.CodeInvalidToken, "invalid or expired access token")
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithPrincipal(r.Context(), p)))
	})
}

// Authenticate checks revocation first, then the signature, then resolves
// roles. Every failure is jwt.ErrInvalidToken.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*handlers.Principal, error) {
	revoked, err := a.revocations.IsBlacklisted(ctx, token)
	if err != nil {
		// Хранилище недоступно: запрос отклоняется
		return nil, fmt.Errorf("%w: blacklist check: %w", jwt.ErrInvalidToken, err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", jwt.ErrInvalidToken)
	}

	claims, err := a.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	var user *models.User
	u, err := a.users.GetUserByID(ctx, claims.Subject)
	switch {
	case err == nil:
		user = u
	case errors.Is(err, storage.ErrUserNotFound):
	default:
		// Поиск best-effort: роль берётся из токена
		a.logger.WarnContext(ctx, "user lookup failed during authentication",
			"user_id", claims.Subject,
			"error", err,
		)
	}

	provider := handlers.UnknownProvider
	if user != nil && user.Provider != "" {
		provider = user.Provider
	}

	return &handlers.Principal{
		UserID:   claims.Subject,
		Provider: provider,
		Roles:    EffectiveRoles(user, claims.Roles),
	}, nil
}

// EffectiveRoles applies the role precedence: the stored role of user,
// then the non-blank token roles, then USER.
func EffectiveRoles(user *models.User, tokenRoles []string) []string {
	if user != nil {
		if role := strings.TrimSpace(user.Role); role != "" {
			return []string{role}
		}
	}
	return models.NormalizeRoles(tokenRoles)
}

// RequireAuth отклоняет анонимные запросы с 401
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := handlers.PrincipalFrom(r.Context()); !ok {
				handlers.WriteError(w, logger, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole пропускает только принципалов с ролью role
func RequireRole(logger *slog.Logger, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := handlers.PrincipalFrom(r.Context())
			if !ok {
				handlers.WriteError(w, logger, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
				return
			}
			if !slices.Contains(p.Roles, role) {
				logger.WarnContext(r.Context(), "access denied",
					"user_id", p.UserID,
					"required_role", role,
					"path", r.URL.Path,
				)
				handlers.WriteError(w, logger, http.StatusForbidden, api.CodeAccessDenied, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
