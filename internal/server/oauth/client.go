package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/iudanet/socialauth/internal/models"
)

// maxLoggedBody - сколько байт тела ответа провайдера попадает в лог
const maxLoggedBody = 500

// ProviderConfig describes one provider's client registration and endpoints.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenURL     string
	UserInfoURL  string
}

// DefaultEndpoints returns the public token and user-info endpoints of a
// known provider.
func DefaultEndpoints(name string) (tokenURL, userInfoURL string, ok bool) {
	switch normalizeName(name) {
	case ProviderGoogle:
		return "https://oauth2.googleapis.com/token", "https://openidconnect.googleapis.com/v1/userinfo", true
	case ProviderKakao:
		return "https://kauth.kakao.com/oauth/token", "https://kapi.kakao.com/v2/user/me", true
	case ProviderNaver:
		return "https://nid.naver.com/oauth2.0/token", "https://openapi.naver.com/v1/nid/me", true
	}
	return "", "", false
}

var decoders = map[string]ProfileDecoder{
	ProviderGoogle: decodeGoogle,
	ProviderKakao:  decodeKakao,
	ProviderNaver:  decodeNaver,
}

// Client is the generic Provider implementation. Provider specifics are
// limited to endpoints and the profile decoder.
type Client struct {
	httpClient *http.Client
	tokenHTTP  *http.Client
	logger     *slog.Logger
	decode     ProfileDecoder
	oauth      *oauth2.Config
	name       string
	userInfo   string
}

var _ Provider = (*Client)(nil)

// New creates a client for a known provider name. Empty endpoints in cfg
// are filled from DefaultEndpoints.
func New(name string, cfg ProviderConfig, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	name = normalizeName(name)
	decode, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}

	tokenURL, userInfoURL, _ := DefaultEndpoints(name)
	if cfg.TokenURL == "" {
		cfg.TokenURL = tokenURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = userInfoURL
	}

	return NewClient(name, cfg, decode, httpClient, logger)
}

// NewClient creates a client with an explicit profile decoder.
func NewClient(name string, cfg ProviderConfig, decode ProfileDecoder, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%s: client id is required", name)
	}
	if cfg.TokenURL == "" || cfg.UserInfoURL == "" {
		return nil, fmt.Errorf("%s: token and user-info urls are required", name)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(HTTPConfig{})
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		tokenHTTP:  newTokenHTTPClient(httpClient),
		logger:     logger.With("provider", name),
		decode:     decode,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		name:     name,
		userInfo: cfg.UserInfoURL,
	}, nil
}

// Name returns the provider name.
func (c *Client) Name() string { return c.name }

// ExchangeCode trades code for a provider access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*ProviderToken, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: empty authorization code", ErrUpstreamRejected)
	}

	// x/oauth2 берёт HTTP клиент из контекста
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.tokenHTTP)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		kind := classifyTokenError(err)
		c.logTokenFailure(kind, err)
		return nil, fmt.Errorf("%w: token exchange: %w", kind, err)
	}

	if e, ok := tok.Extra("error").(string); ok && e != "" {
		c.logger.Warn("provider token response carries an error", "error_code", e)
		return nil, fmt.Errorf("%w: token response error %q", ErrUpstreamRejected, e)
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", ErrUpstreamRejected)
	}

	return &ProviderToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    parseExpiresIn(tok.Extra("expires_in")),
	}, nil
}

// FetchProfile loads and normalizes the user's profile.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*models.ProviderProfile, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, fmt.Errorf("%w: empty provider access token", ErrUpstreamRejected)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfo, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build user-info request: %w", ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, errResponseTooLarge) {
			c.logger.Warn("provider user-info response too large")
			return nil, fmt.Errorf("%w: %w", ErrUpstreamProfileInvalid, err)
		}
		c.logger.Warn("provider user-info request failed", "error", err)
		return nil, fmt.Errorf("%w: user-info: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read user-info: %w", ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := classifyStatus(resp.StatusCode)
		c.logger.Warn("provider user-info request rejected",
			"status", resp.StatusCode,
			"body", truncate(body, maxLoggedBody),
		)
		return nil, fmt.Errorf("%w: user-info status %d", kind, resp.StatusCode)
	}

	profile, err := c.decode(body)
	if err != nil {
		c.logger.Warn("provider profile is invalid", "error", err, "body", truncate(body, maxLoggedBody))
		return nil, fmt.Errorf("%w: %w", ErrUpstreamProfileInvalid, err)
	}

	return normalizeProfile(profile), nil
}

func (c *Client) logTokenFailure(kind, err error) {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		c.logger.Warn("provider token exchange failed",
			"kind", kind.Error(),
			"status", re.Response.StatusCode,
			"error_code", re.ErrorCode,
			"body", truncate(re.Body, maxLoggedBody),
		)
		return
	}
	c.logger.Warn("provider token exchange failed", "kind", kind.Error(), "error", err)
}

// classifyTokenError maps x/oauth2 and transport errors onto the provider
// error kinds.
func classifyTokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.Response != nil {
			return classifyStatus(re.Response.StatusCode)
		}
		return ErrUpstreamRejected
	}

	if errors.Is(err, errResponseTooLarge) {
		return ErrUpstreamRejected
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrUpstreamUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrUpstreamUnavailable
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ErrUpstreamUnavailable
	}

	// missing access_token, невалидный JSON и т.п.
	return ErrUpstreamRejected
}

func classifyStatus(status int) error {
	if status >= 500 || status == http.StatusTooManyRequests {
		return ErrUpstreamUnavailable
	}
	return ErrUpstreamRejected
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
