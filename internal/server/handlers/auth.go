package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/socialauth/internal/models"
	"github.com/iudanet/socialauth/internal/server/auth"
	"github.com/iudanet/socialauth/internal/server/identity"
	"github.com/iudanet/socialauth/internal/server/jwt"
	"github.com/iudanet/socialauth/internal/server/oauth"
	"github.com/iudanet/socialauth/internal/server/storage"
	"github.com/iudanet/socialauth/internal/validation"
	"github.com/iudanet/socialauth/pkg/api"
)

// maxBodyBytes ограничивает размер тела запроса
const maxBodyBytes = 16 << 10

// AuthService is the login orchestrator as seen by the HTTP layer.
type AuthService interface {
	Login(ctx context.Context, code, provider string) (*auth.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, accessToken string) error
	ChangeRole(ctx context.Context, actorID string, actorRoles []string, targetUserID, role string) error
}

// UserLookup loads users by id.
type UserLookup interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// AuthHandler обрабатывает запросы входа и жизненного цикла токенов
type AuthHandler struct {
	logger  *slog.Logger
	service AuthService
	users   UserLookup
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, service AuthService, users UserLookup) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		service: service,
		users:   users,
	}
}

// Login обрабатывает POST /oauth/login/{provider}
// Обмен authorization code провайдера на пару токенов
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := r.PathValue("provider")

	var req api.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		WriteError(w, h.logger, http.StatusBadRequest, api.CodeInvalidInput, "invalid request body")
		return
	}

	// Код не логируем и не возвращаем: это одноразовый секрет
	if err := validation.ValidateCode(req.Code); err != nil {
		WriteError(w, h.logger, http.StatusBadRequest, api.CodeInvalidInput, "invalid request",
			api.FieldError{Field: "code", Reason: err.Error()})
		return
	}

	result, err := h.service.Login(ctx, req.Code, provider)
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrUnsupportedProvider):
			h.logger.WarnContext(ctx, "unsupported provider", slog.String("provider", provider))
			WriteError(w, h.logger, http.StatusBadRequest, api.CodeUnsupportedProvider, "unsupported provider",
				api.FieldError{Field: "provider", Value: provider, Reason: "unknown provider"})
		case errors.Is(err, identity.ErrInternalInconsistency):
			h.logger.ErrorContext(ctx, "login failed: identity store is inconsistent", slog.Any("error", err))
			WriteError(w, h.logger, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		case errors.Is(err, auth.ErrLoginFailed):
			WriteError(w, h.logger, http.StatusBadRequest, api.CodeLoginFailed, "login failed")
		default:
			h.logger.ErrorContext(ctx, "login failed", slog.Any("error", err))
			WriteError(w, h.logger, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		}
		return
	}

	resp := api.LoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		IsNewUser:    result.IsNewUser,
	}

	WriteJSON(w, h.logger, resp, http.StatusOK)
}

// Refresh обрабатывает POST /auth/refresh
// Выдаёт новый access token по refresh token из Authorization header
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	refreshToken, ok := BearerToken(r)
	if !ok {
		WriteError(w, h.logger, http.StatusUnauthorized, api.CodeUnauthorized, "refresh token is required")
		return
	}

	accessToken, err := h.service.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrInvalidToken) {
			h.logger.WarnContext(ctx, "refresh rejected", slog.Any("error", err))
			WriteError(w, h.logger, http.StatusUnauthorized, api.CodeInvalidToken, "invalid or expired refresh token")
			return
		}
		h.logger.ErrorContext(ctx, "failed to refresh access token", slog.Any("error", err))
		WriteError(w, h.logger, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	WriteJSON(w, h.logger, api.RefreshResponse{AccessToken: accessToken}, http.StatusOK)
}

// Logout обрабатывает POST /auth/logout
// Отзывает access token и удаляет refresh token пользователя
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accessToken, ok := BearerToken(r)
	if !ok {
		WriteError(w, h.logger, http.StatusUnauthorized, api.CodeUnauthorized, "access token is required")
		return
	}

	if err := h.service.Logout(ctx, accessToken); err != nil {
		if errors.Is(err, jwt.ErrInvalidToken) {
			h.logger.WarnContext(ctx, "logout rejected", slog.Any("error", err))
			WriteError(w, h.logger, http.StatusUnauthorized, api.CodeInvalidToken, "invalid or expired access token")
			return
		}
		h.logger.ErrorContext(ctx, "failed to logout", slog.Any("error", err))
		WriteError(w, h.logger, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	WriteJSON(w, h.logger, api.MessageResponse{Message: "logged out"}, http.StatusOK)
}

// Me обрабатывает GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := PrincipalFrom(ctx)
	if !ok {
		WriteError(w, h.logger, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
		return
	}

	user, err := h.users.GetUserByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			WriteError(w, h.logger, http.StatusNotFound, api.CodeUserNotFound, "user not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		WriteError(w, h.logger, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		return
	}

	resp := api.MeResponse{
		UserID:   user.ID,
		Provider: user.Provider,
		Nickname: user.Nickname,
		Email:    user.Email,
		Avatar:   user.AvatarURL,
		Roles:    p.Roles,
	}

	WriteJSON(w, h.logger, resp, http.StatusOK)
}

// ChangeRole обрабатывает PUT /admin/users/{id}/role
func (h *AuthHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := PrincipalFrom(ctx)
	if !ok {
		WriteError(w, h.logger, http.StatusUnauthorized, api.CodeUnauthorized, "authentication required")
		return
	}

	targetID := r.PathValue("id")
	if err := validation.ValidateUserID(targetID); err != nil {
		WriteError(w, h.logger, http.StatusBadRequest, api.CodeInvalidInput, "invalid request",
			api.FieldError{Field: "id", Value: targetID, Reason: err.Error()})
		return
	}

	var req api.ChangeRoleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		WriteError(w, h.logger, http.StatusBadRequest, api.CodeInvalidInput, "invalid request body")
		return
	}
	if err := validation.ValidateRole(req.Role); err != nil {
		WriteError(w, h.logger, http.StatusBadRequest, api.CodeInvalidInput, "invalid request",
			api.FieldError{Field: "role", Value: req.Role, Reason: err.Error()})
		return
	}

	err := h.service.ChangeRole(ctx, p.UserID, p.Roles, targetID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAccessDenied), errors.Is(err, auth.ErrPrivilegedRole):
			WriteError(w, h.logger, http.StatusForbidden, api.CodeAccessDenied, err.Error())
		case errors.Is(err, auth.ErrInvalidRole):
			WriteError(w, h.logger, http.StatusBadRequest, api.CodeInvalidInput, "invalid request",
				api.FieldError{Field: "role", Value: req.Role, Reason: "unknown role"})
		case errors.Is(err, storage.ErrUserNotFound):
			WriteError(w, h.logger, http.StatusNotFound, api.CodeUserNotFound, "user not found")
		default:
			h.logger.ErrorContext(ctx, "failed to change role", slog.Any("error", err))
			WriteError(w, h.logger, http.StatusInternalServerError, api.CodeInternal, "internal server error")
		}
		return
	}

	h.logger.InfoContext(ctx, "user role changed",
		slog.String("actor_id", p.UserID),
		slog.String("user_id", targetID),
		slog.String("role", req.Role))

	WriteJSON(w, h.logger, api.ChangeRoleResponse{UserID: targetID, Role: req.Role}, http.StatusOK)
}
