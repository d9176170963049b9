// Package config loads server configuration from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/iudanet/socialauth/internal/logging"
	"github.com/iudanet/socialauth/internal/server/jwt"
	"github.com/iudanet/socialauth/internal/server/middleware"
	"github.com/iudanet/socialauth/internal/server/oauth"
)

// Prefix is prepended to every environment variable name.
const Prefix = "SOCIALAUTH_"

// Бэкенды хранилищ
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SessionsRedis = "redis"
	SessionsBolt  = "bolt"
)

// Config is the complete server configuration.
type Config struct {
	Providers map[string]ProviderSettings

	Addr            string        `env:"ADDR"             envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT"       envDefault:"json"`
	ProvidersFile   string        `env:"PROVIDERS_FILE"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	TrustedProxies  []string      `env:"TRUSTED_PROXIES"  envSeparator:","`

	JWT       JWTConfig       `envPrefix:"JWT_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Sessions  SessionsConfig  `envPrefix:"SESSIONS_"`
	HTTP      ProviderHTTP    `envPrefix:"PROVIDER_HTTP_"`
	Events    EventsConfig    `envPrefix:"EVENTS_"`
	RateLimit RateLimitConfig `envPrefix:"LOGIN_RATE_"`

	Google ProviderSettings `envPrefix:"GOOGLE_"`
	Kakao  ProviderSettings `envPrefix:"KAKAO_"`
	Naver  ProviderSettings `envPrefix:"NAVER_"`
}

// JWTConfig configures token signing.
type JWTConfig struct {
	Secret     string        `env:"SECRET"`
	Issuer     string        `env:"ISSUER"      envDefault:"socialauth"`
	AccessTTL  time.Duration `env:"ACCESS_TTL"  envDefault:"30m"`
	RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"168h"`
	NodeID     int64         `env:"NODE_ID"     envDefault:"1"`
}

// DatabaseConfig configures the identity store.
type DatabaseConfig struct {
	Driver   string `env:"DRIVER"    envDefault:"sqlite"`
	DSN      string `env:"DSN"       envDefault:"socialauth.db"`
	MaxConns int    `env:"MAX_CONNS" envDefault:"10"`
}

// SessionsConfig configures the session store.
type SessionsConfig struct {
	Backend          string        `env:"BACKEND"           envDefault:"redis"`
	RedisURL         string        `env:"REDIS_URL"         envDefault:"redis://localhost:6379/0"`
	BoltPath         string        `env:"BOLT_PATH"         envDefault:"sessions.db"`
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL"    envDefault:"1m"`
	OperationTimeout time.Duration `env:"OPERATION_TIMEOUT" envDefault:"2s"`
	DialTimeout      time.Duration `env:"DIAL_TIMEOUT"      envDefault:"2s"`
	ReadTimeout      time.Duration `env:"READ_TIMEOUT"      envDefault:"1s"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT"     envDefault:"1s"`
}

// ProviderHTTP bounds calls to identity providers.
type ProviderHTTP struct {
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT"  envDefault:"3s"`
	ResponseTimeout time.Duration `env:"RESPONSE_TIMEOUT" envDefault:"5s"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES"   envDefault:"1048576"`
}

// EventsConfig configures the optional AMQP event publisher.
type EventsConfig struct {
	AMQPURL        string        `env:"AMQP_URL"`
	Exchange       string        `env:"EXCHANGE"        envDefault:"socialauth.events"`
	PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"2s"`
}

// RateLimitConfig limits login attempts per client address.
type RateLimitConfig struct {
	Requests int           `env:"REQUESTS" envDefault:"20"`
	Window   time.Duration `env:"WINDOW"   envDefault:"1m"`
}

// ProviderSettings is one provider's client registration. Empty endpoints
// fall back to the provider defaults.
type ProviderSettings struct {
	ClientID     string `env:"CLIENT_ID"     yaml:"client_id"`
	ClientSecret string `env:"CLIENT_SECRET" yaml:"client_secret"`
	RedirectURI  string `env:"REDIRECT_URI"  yaml:"redirect_uri"`
	TokenURL     string `env:"TOKEN_URL"     yaml:"token_url"`
	UserInfoURL  string `env:"USER_INFO_URL" yaml:"user_info_url"`
}

// Load reads .env files and, when configured, AWS Secrets Manager into the
// process environment, then parses it.
func Load(ctx context.Context) (*Config, error) {
	loadDotEnv()

	if err := loadAWSSecretsIntoEnv(ctx); err != nil {
		return nil, err
	}

	return Parse(env.ToMap(os.Environ()))
}

// LoadDatabase is Load restricted to the database settings, for tools that
// only need the identity store.
func LoadDatabase(ctx context.Context) (*DatabaseConfig, error) {
	loadDotEnv()

	if err := loadAWSSecretsIntoEnv(ctx); err != nil {
		return nil, err
	}

	var db DatabaseConfig
	if err := env.ParseWithOptions(&db, env.Options{
		Environment: env.ToMap(os.Environ()),
		Prefix:      Prefix + "DB_",
	}); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}
	return &db, nil
}

// Parse builds and validates a Config from environ.
func Parse(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{
		Environment: environ,
		Prefix:      Prefix,
	}); err != nil {
		return nil, fmt.Errorf("failed to parse env: %w", err)
	}

	fromEnv := map[string]ProviderSettings{
		oauth.ProviderGoogle: cfg.Google,
		oauth.ProviderKakao:  cfg.Kakao,
		oauth.ProviderNaver:  cfg.Naver,
	}

	fromFile := map[string]ProviderSettings{}
	if cfg.ProvidersFile != "" {
		var err error
		if fromFile, err = loadProvidersFile(cfg.ProvidersFile); err != nil {
			return nil, err
		}
	}

	cfg.Providers = mergeProviders(fromFile, fromEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWT.Secret) < jwt.MinSecretLength {
		errs = append(errs, fmt.Errorf("%sJWT_SECRET must be at least %d bytes", Prefix, jwt.MinSecretLength))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.JWT.NodeID < 0 || c.JWT.NodeID > 1023 {
		errs = append(errs, fmt.Errorf("%sJWT_NODE_ID must be in [0, 1023]", Prefix))
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, fmt.Errorf("%sDB_DSN is required", Prefix))
	}

	switch c.Sessions.Backend {
	case SessionsRedis:
		if c.Sessions.RedisURL == "" {
			errs = append(errs, fmt.Errorf("%sSESSIONS_REDIS_URL is required", Prefix))
		}
	case SessionsBolt:
		if c.Sessions.BoltPath == "" {
			errs = append(errs, fmt.Errorf("%sSESSIONS_BOLT_PATH is required", Prefix))
		}
		if c.Sessions.SweepInterval <= 0 {
			errs = append(errs, errors.New("session sweep interval must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q", c.Sessions.Backend))
	}
	if c.Sessions.OperationTimeout <= 0 {
		errs = append(errs, errors.New("session operation timeout must be positive"))
	}

	if c.HTTP.ConnectTimeout <= 0 || c.HTTP.ResponseTimeout <= 0 || c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("provider http limits must be positive"))
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("login rate limit must be positive"))
	}
	if _, err := middleware.ParseTrustedProxies(c.TrustedProxies); err != nil {
		errs = append(errs, err)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	if len(c.EnabledProviders()) == 0 {
		errs = append(errs, errors.New("no identity provider is configured"))
	}
	for name := range c.Providers {
		if _, _, ok := oauth.DefaultEndpoints(name); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", oauth.ErrUnsupportedProvider, name))
		}
	}

	return errors.Join(errs...)
}

// EnabledProviders returns the providers that have a client id.
func (c *Config) EnabledProviders() map[string]oauth.ProviderConfig {
	out := make(map[string]oauth.ProviderConfig, len(c.Providers))
	for name, p := range c.Providers {
		if p.ClientID == "" {
			continue
		}
		out[name] = oauth.ProviderConfig{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURI:  p.RedirectURI,
			TokenURL:     p.TokenURL,
			UserInfoURL:  p.UserInfoURL,
		}
	}
	return out
}

func loadDotEnv() {
	envFile := os.Getenv(Prefix + "ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// Файла может не быть: в контейнере окружение задаётся снаружи
	_ = godotenv.Load(envFile)
}

func loadProvidersFile(path string) (map[string]ProviderSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read providers file: %w", err)
	}

	var file struct {
		Providers map[string]ProviderSettings `yaml:"providers"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse providers file %s: %w", path, err)
	}

	out := make(map[string]ProviderSettings, len(file.Providers))
	for name, p := range file.Providers {
		out[strings.ToLower(strings.TrimSpace(name))] = p
	}
	return out, nil
}

// mergeProviders накладывает непустые поля из env поверх файла
func mergeProviders(file, fromEnv map[string]ProviderSettings) map[string]ProviderSettings {
	out := make(map[string]ProviderSettings, len(file)+len(fromEnv))
	for name, p := range file {
		out[name] = p
	}
	for name, e := range fromEnv {
		p := out[name]
		p.ClientID = firstNonEmpty(e.ClientID, p.ClientID)
		p.ClientSecret = firstNonEmpty(e.ClientSecret, p.ClientSecret)
		p.RedirectURI = firstNonEmpty(e.RedirectURI, p.RedirectURI)
		p.TokenURL = firstNonEmpty(e.TokenURL, p.TokenURL)
		p.UserInfoURL = firstNonEmpty(e.UserInfoURL, p.UserInfoURL)
		if p != (ProviderSettings{}) {
			out[name] = p
		}
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
