// Package server assembles the HTTP surface of the authentication service.
package server

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/iudanet/socialauth/internal/models"
	"github.com/iudanet/socialauth/internal/server/handlers"
	"github.com/iudanet/socialauth/internal/server/middleware"
)

// healthPath не логируется на каждый запрос
const healthPath = "/health"

// Deps are the components the router mounts.
type Deps struct {
	Logger         *slog.Logger
	Auth           *handlers.AuthHandler
	Health         *handlers.HealthHandler
	Authenticator  *middleware.Authenticator
	LoginLimiter   *middleware.RateLimiter
	// TrustedProxies - от них принимаются X-Forwarded-For и X-Real-IP
	TrustedProxies []netip.Prefix
}

// NewRouter mounts every route and wraps the mux with the global chain:
// request id, access log, panic recovery and security headers.
//
// Only /auth/me and /admin/ routes run the Authenticator. /auth/refresh and
// /auth/logout read their bearer token themselves, refresh with a refresh
// token that the Authenticator would reject.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	login := http.HandlerFunc(d.Auth.Login)
	if d.LoginLimiter != nil {
		mux.Handle("POST /oauth/login/{provider}", middleware.RateLimitMiddleware(d.LoginLimiter, d.Logger, d.TrustedProxies)(login))
	} else {
		mux.Handle("POST /oauth/login/{provider}", login)
	}

	mux.HandleFunc("POST /auth/refresh", d.Auth.Refresh)
	mux.HandleFunc("POST /auth/logout", d.Auth.Logout)

	protected := func(h http.HandlerFunc, guards ...func(http.Handler) http.Handler) http.Handler {
		var out http.Handler = h
		for i := len(guards) - 1; i >= 0; i-- {
			out = guards[i](out)
		}
		return d.Authenticator.Middleware(out)
	}

	mux.Handle("GET /auth/me", protected(d.Auth.Me, middleware.RequireAuth(d.Logger)))
	mux.Handle("PUT /admin/users/{id}/role", protected(d.Auth.ChangeRole, middleware.RequireRole(d.Logger, models.RoleAdmin)))

	mux.HandleFunc("GET "+healthPath, d.Health.Health)

	var handler http.Handler = mux
	handler = middleware.SecurityHeaders(handler)
	handler = middleware.RecoveryMiddleware(d.Logger)(handler)
	handler = middleware.LoggingMiddleware(d.Logger, healthPath)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
