package handlers

import (
	"context"
	"net/http"
	"strings"
)

// contextKey тип для ключей контекста
type contextKey string

const principalKey contextKey = "principal"

// UnknownProvider is the principal provider when no user record was found.
const UnknownProvider = "unknown"

// Principal is the authenticated caller attached to a request context.
type Principal struct {
	UserID   string
	Provider string
	Roles    []string
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal attached to ctx, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// BearerToken извлекает токен из заголовка Authorization
// Формат "Bearer <token>", схема без учёта регистра, токен не пустой
func BearerToken(r *http.Request) (string, bool) {
	const bearerPrefix = "bearer "

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(authHeader) < len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(authHeader[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
