package oauth

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iudanet/socialauth/internal/models"
)

// Поддерживаемые провайдеры
const (
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
	ProviderNaver  = "naver"
)

// ProviderToken is the access credential returned by a provider's token endpoint.
type ProviderToken struct {
	AccessToken  string
	TokenType    string
	RefreshToken string
	ExpiresIn    int64 // секунды, 0 если неизвестно
}

//go:generate moq -out provider_mock.go . Provider

// Provider is the capability set of one identity provider.
type Provider interface {
	// Name returns the lower-case registry name.
	Name() string
	// ExchangeCode trades an authorization code for a provider access token.
	ExchangeCode(ctx context.Context, code string) (*ProviderToken, error)
	// FetchProfile loads the user's profile with the provider access token.
	FetchProfile(ctx context.Context, accessToken string) (*models.ProviderProfile, error)
}

// Registry maps provider names to implementations. It is read-only after construction.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a registry from the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[normalizeName(p.Name())] = p
	}
	return r
}

// Lookup returns the provider registered under name (case-insensitive).
func (r *Registry) Lookup(name string) (Provider, error) {
	p, ok := r.providers[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
