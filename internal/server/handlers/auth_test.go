package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/socialauth/internal/models"
	"github.com/iudanet/socialauth/internal/server/auth"
	"github.com/iudanet/socialauth/internal/server/identity"
	"github.com/iudanet/socialauth/internal/server/jwt"
	"github.com/iudanet/socialauth/internal/server/oauth"
	"github.com/iudanet/socialauth/internal/server/storage"
	"github.com/iudanet/socialauth/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockAuthService is a mock implementation of AuthService for testing
type mockAuthService struct {
	login      func(ctx context.Context, code, provider string) (*auth.LoginResult, error)
	refresh    func(ctx context.Context, refreshToken string) (string, error)
	logout     func(ctx context.Context, accessToken string) error
	changeRole func(ctx context.Context, actorID string, actorRoles []string, targetUserID, role string) error
}

func (m *mockAuthService) Login(ctx context.Context, code, provider string) (*auth.LoginResult, error) {
	return m.login(ctx, code, provider)
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return m.refresh(ctx, refreshToken)
}

func (m *mockAuthService) Logout(ctx context.Context, accessToken string) error {
	return m.logout(ctx, accessToken)
}

func (m *mockAuthService) ChangeRole(ctx context.Context, actorID string, actorRoles []string, targetUserID, role string) error {
	return m.changeRole(ctx, actorID, actorRoles, targetUserID, role)
}

// mockUsers is a mock implementation of UserLookup for testing
type mockUsers struct {
	users map[string]*models.User
	err   error
}

func (m *mockUsers) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return u, nil
}

func decodeError(t *testing.T, body io.Reader) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

// loginRouter регистрирует Login на шаблоне с {provider}, чтобы работал PathValue
func loginRouter(h *AuthHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/login/{provider}", h.Login)
	mux.HandleFunc("PUT /admin/users/{id}/role", h.ChangeRole)
	return mux
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		loginErr     error
		name         string
		body         string
		provider     string
		wantCode     api.ErrorCode
		wantStatus   int
		expectCalled bool
	}{
		{
			name:         "successful login",
			provider:     "google",
			body:         `{"code":"validcode123"}`,
			wantStatus:   http.StatusOK,
			expectCalled: true,
		},
		{
			name:       "invalid JSON",
			provider:   "google",
			body:       `{invalid json}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   api.CodeInvalidInput,
		},
		{
			name:       "empty code",
			provider:   "google",
			body:       `{"code":"  "}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   api.CodeInvalidInput,
		},
		{
			name:       "code too long",
			provider:   "google",
			body:       fmt.Sprintf(`{"code":%q}`, strings.Repeat("c", 2001)),
			wantStatus: http.StatusBadRequest,
			wantCode:   api.CodeInvalidInput,
		},
		{
			name:         "unsupported provider",
			provider:     "github",
			body:         `{"code":"validcode123"}`,
			loginErr:     fmt.Errorf("%w: %q", oauth.ErrUnsupportedProvider, "github"),
			wantStatus:   http.StatusBadRequest,
			wantCode:     api.CodeUnsupportedProvider,
			expectCalled: true,
		},
		{
			name:         "upstream failure",
			provider:     "kakao",
			body:         `{"code":"validcode123"}`,
			loginErr:     fmt.Errorf("%w: exchange code: %w", auth.ErrLoginFailed, oauth.ErrUpstreamUnavailable),
			wantStatus:   http.StatusBadRequest,
			wantCode:     api.CodeLoginFailed,
			expectCalled: true,
		},
		{
			name:         "identity store inconsistency",
			provider:     "naver",
			body:         `{"code":"validcode123"}`,
			loginErr:     fmt.Errorf("%w: resolve identity: %w", auth.ErrLoginFailed, identity.ErrInternalInconsistency),
			wantStatus:   http.StatusInternalServerError,
			wantCode:     api.CodeInternal,
			expectCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			svc := &mockAuthService{
				login: func(ctx context.Context, code, provider string) (*auth.LoginResult, error) {
					called = true
					assert.Equal(t, tt.provider, provider)
					if tt.loginErr != nil {
						return nil, tt.loginErr
					}
					return &auth.LoginResult{
						User:         &models.User{ID: "u-1"},
						AccessToken:  "access",
						RefreshToken: "refresh",
						IsNewUser:    true,
					}, nil
				},
			}
			h := NewAuthHandler(setupTestLogger(), svc, &mockUsers{})

			req := httptest.NewRequest(http.MethodPost, "/oauth/login/"+tt.provider, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			loginRouter(h).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.expectCalled, called)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			if tt.wantStatus == http.StatusOK {
				var resp api.LoginResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "access", resp.AccessToken)
				assert.Equal(t, "refresh", resp.RefreshToken)
				assert.True(t, resp.IsNewUser)
				return
			}

			errResp := decodeError(t, w.Body)
			assert.Equal(t, tt.wantCode, errResp.Code)
			assert.Equal(t, tt.wantStatus, errResp.Status)
			assert.False(t, errResp.Timestamp.IsZero())
		})
	}
}

func TestAuthHandler_Login_DoesNotEchoUpstreamDetails(t *testing.T) {
	svc := &mockAuthService{
		login: func(ctx context.Context, code, provider string) (*auth.LoginResult, error) {
			return nil, fmt.Errorf("%w: fetch profile: %w: secret upstream body", auth.ErrLoginFailed, oauth.ErrUpstreamProfileInvalid)
		},
	}
	h := NewAuthHandler(setupTestLogger(), svc, &mockUsers{})

	req := httptest.NewRequest(http.MethodPost, "/oauth/login/google", bytes.NewBufferString(`{"code":"c"}`))
	w := httptest.NewRecorder()
	loginRouter(h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "secret upstream body")
}

func TestAuthHandler_Refresh(t *testing.T) {
	tests := []struct {
		refreshErr error
		name       string
		header     string
		wantCode   api.ErrorCode
		wantStatus int
	}{
		{name: "successful refresh", header: "Bearer refresh-token", wantStatus: http.StatusOK},
		{name: "lower-case scheme", header: "bearer refresh-token", wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantCode: api.CodeUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: api.CodeUnauthorized},
		{name: "blank token", header: "Bearer    ", wantStatus: http.StatusUnauthorized, wantCode: api.CodeUnauthorized},
		{
			name:       "invalid token",
			header:     "Bearer refresh-token",
			refreshErr: jwt.ErrInvalidToken,
			wantStatus: http.StatusUnauthorized,
			wantCode:   api.CodeInvalidToken,
		},
		{
			name:       "store failure",
			header:     "Bearer refresh-token",
			refreshErr: errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   api.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				refresh: func(ctx context.Context, refreshToken string) (string, error) {
					assert.Equal(t, "refresh-token", refreshToken)
					if tt.refreshErr != nil {
						return "", tt.refreshErr
					}
					return "new-access", nil
				},
			}
			h := NewAuthHandler(setupTestLogger(), svc, &mockUsers{})

			req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.Refresh(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp api.RefreshResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "new-access", resp.AccessToken)
				return
			}
			assert.Equal(t, tt.wantCode, decodeError(t, w.Body).Code)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	tests := []struct {
		logoutErr  error
		name       string
		header     string
		wantStatus int
	}{
		{name: "successful logout", header: "Bearer access-token", wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer access-token", logoutErr: jwt.ErrInvalidToken, wantStatus: http.StatusUnauthorized},
		{name: "session store down", header: "Bearer access-token", logoutErr: errors.New("redis down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				logout: func(ctx context.Context, accessToken string) error {
					assert.Equal(t, "access-token", accessToken)
					return tt.logoutErr
				},
			}
			h := NewAuthHandler(setupTestLogger(), svc, &mockUsers{})

			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.Logout(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp api.MessageResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.NotEmpty(t, resp.Message)
			}
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	users := &mockUsers{users: map[string]*models.User{
		"u-1": {ID: "u-1", Provider: "google", Nickname: "Ann", Email: "a@b.com", Role: models.RoleUser},
	}}
	h := NewAuthHandler(setupTestLogger(), &mockAuthService{}, users)

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(WithPrincipal(req.Context(), &Principal{UserID: "u-1", Provider: "google", Roles: []string{"USER"}}))
		w := httptest.NewRecorder()
		h.Me(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp api.MeResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "u-1", resp.UserID)
		assert.Equal(t, "Ann", resp.Nickname)
		assert.Equal(t, []string{"USER"}, resp.Roles)
	})

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Me(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("user vanished", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(WithPrincipal(req.Context(), &Principal{UserID: "gone", Provider: UnknownProvider, Roles: []string{"USER"}}))
		w := httptest.NewRecorder()
		h.Me(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, api.CodeUserNotFound, decodeError(t, w.Body).Code)
	})
}

func TestAuthHandler_ChangeRole(t *testing.T) {
	target := uuid.New().String()
	admin := &Principal{UserID: "admin-1", Provider: "google", Roles: []string{models.RoleAdmin}}

	tests := []struct {
		serviceErr error
		principal  *Principal
		name       string
		targetID   string
		body       string
		wantCode   api.ErrorCode
		wantStatus int
	}{
		{name: "promote to moderator", principal: admin, targetID: target, body: `{"role":"MODERATOR"}`, wantStatus: http.StatusOK},
		{name: "anonymous", targetID: target, body: `{"role":"MODERATOR"}`, wantStatus: http.StatusUnauthorized, wantCode: api.CodeUnauthorized},
		{name: "bad id", principal: admin, targetID: "not-a-uuid", body: `{"role":"MODERATOR"}`, wantStatus: http.StatusBadRequest, wantCode: api.CodeInvalidInput},
		{name: "bad body", principal: admin, targetID: target, body: `{`, wantStatus: http.StatusBadRequest, wantCode: api.CodeInvalidInput},
		{name: "malformed role", principal: admin, targetID: target, body: `{"role":"moderator"}`, wantStatus: http.StatusBadRequest, wantCode: api.CodeInvalidInput},
		{name: "unknown role", principal: admin, targetID: target, body: `{"role":"ROOT"}`, serviceErr: auth.ErrInvalidRole, wantStatus: http.StatusBadRequest, wantCode: api.CodeInvalidInput},
		{name: "grant admin", principal: admin, targetID: target, body: `{"role":"ADMIN"}`, serviceErr: auth.ErrPrivilegedRole, wantStatus: http.StatusForbidden, wantCode: api.CodeAccessDenied},
		{name: "not an admin", principal: &Principal{UserID: "u", Roles: []string{"USER"}}, targetID: target, body: `{"role":"MODERATOR"}`, serviceErr: auth.ErrAccessDenied, wantStatus: http.StatusForbidden, wantCode: api.CodeAccessDenied},
		{name: "unknown user", principal: admin, targetID: target, body: `{"role":"MODERATOR"}`, serviceErr: storage.ErrUserNotFound, wantStatus: http.StatusNotFound, wantCode: api.CodeUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				changeRole: func(ctx context.Context, actorID string, actorRoles []string, targetUserID, role string) error {
					assert.Equal(t, tt.principal.UserID, actorID)
					assert.Equal(t, tt.targetID, targetUserID)
					return tt.serviceErr
				},
			}
			h := NewAuthHandler(setupTestLogger(), svc, &mockUsers{})

			req := httptest.NewRequest(http.MethodPut, "/admin/users/"+tt.targetID+"/role", bytes.NewBufferString(tt.body))
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), tt.principal))
			}
			w := httptest.NewRecorder()
			loginRouter(h).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp api.ChangeRoleResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, tt.targetID, resp.UserID)
				assert.Equal(t, "MODERATOR", resp.Role)
				return
			}
			assert.Equal(t, tt.wantCode, decodeError(t, w.Body).Code)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "standard", header: "Bearer abc", want: "abc", ok: true},
		{name: "upper case scheme", header: "BEARER abc", want: "abc", ok: true},
		{name: "surrounding spaces", header: "  Bearer   abc  ", want: "abc", ok: true},
		{name: "empty", header: "", ok: false},
		{name: "scheme only", header: "Bearer", ok: false},
		{name: "blank token", header: "Bearer   ", ok: false},
		{name: "other scheme", header: "Token abc", ok: false},
		{name: "no space", header: "Bearerabc", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, ok := BearerToken(req)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
