package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/socialauth/internal/models"
)

// MinSecretLength is the minimum HMAC secret size in bytes.
const MinSecretLength = 32

// Значения claim token_use
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

var (
	// ErrInvalidToken is returned for any token that fails verification:
	// bad signature, malformed, expired, wrong issuer or wrong kind.
	ErrInvalidToken = errors.New("invalid token")

	// ErrWeakSecret is returned by NewService for secrets shorter than MinSecretLength.
	ErrWeakSecret = errors.New("jwt secret is too short")
)

// Config содержит параметры выпуска токенов
type Config struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	NodeID     int64 // snowflake node для jti
}

// Claims represents the signed payload of both access and refresh tokens.
type Claims struct {
	Roles    []string `json:"roles,omitempty"`
	TokenUse string   `json:"token_use"`
	gojwt.RegisteredClaims
}

// RemainingTTL returns how long the token stays valid after now.
func (c *Claims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Service issues and verifies HS256 tokens. The key is fixed at construction.
type Service struct {
	node       *snowflake.Node
	now        func() time.Time
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a new token service.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrWeakSecret, len(cfg.Secret), MinSecretLength)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive")
	}

	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Service{
		node:       node,
		now:        time.Now,
		secret:     secret,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// CreateAccessToken signs an access token carrying the user's roles.
func (s *Service) CreateAccessToken(userID string, roles []string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	return s.sign(userID, models.NormalizeRoles(roles), UseAccess, s.accessTTL)
}

// CreateRefreshToken signs a refresh token. Refresh tokens carry no roles.
func (s *Service) CreateRefreshToken(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required")
	}
	return s.sign(userID, nil, UseRefresh, s.refreshTTL)
}

func (s *Service) sign(userID string, roles []string, use string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Roles:    roles,
		TokenUse: use,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			ID:        s.node.Generate().String(),
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry and issuer. It does not look at token_use.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, func(*gojwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyAccessToken verifies the token and requires token_use=access.
func (s *Service) VerifyAccessToken(tokenString string) (*Claims, error) {
	return s.verifyUse(tokenString, UseAccess)
}

// VerifyRefreshToken verifies the token and requires token_use=refresh.
func (s *Service) VerifyRefreshToken(tokenString string) (*Claims, error) {
	return s.verifyUse(tokenString, UseRefresh)
}

func (s *Service) verifyUse(tokenString, use string) (*Claims, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenUse != use {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrInvalidToken, use, claims.TokenUse)
	}
	return claims, nil
}

// ExtractUserID returns the subject of a verified token.
func (s *Service) ExtractUserID(tokenString string) (string, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractRoles returns the roles of a verified token, defaulting to USER.
func (s *Service) ExtractRoles(tokenString string) ([]string, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	return models.NormalizeRoles(claims.Roles), nil
}
