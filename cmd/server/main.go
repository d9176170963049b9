package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/socialauth/internal/config"
	"github.com/iudanet/socialauth/internal/logging"
	"github.com/iudanet/socialauth/internal/server"
	"github.com/iudanet/socialauth/internal/server/auth"
	"github.com/iudanet/socialauth/internal/server/handlers"
	"github.com/iudanet/socialauth/internal/server/identity"
	"github.com/iudanet/socialauth/internal/server/jwt"
	"github.com/iudanet/socialauth/internal/server/middleware"
	"github.com/iudanet/socialauth/internal/server/session"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "socialauth: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return err
	}
	logger = logger.With("version", Version)
	slog.SetDefault(logger)

	users, err := server.OpenUserStorage(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open user storage: %w", err)
	}
	defer users.Close()
	logger.Info("user storage ready", "driver", cfg.Database.Driver)

	kv, err := server.OpenSessionKV(ctx, cfg.Sessions, logger)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer kv.Close()
	logger.Info("session store ready", "backend", cfg.Sessions.Backend)

	tokens, err := jwt.NewService(jwt.Config{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
		NodeID:     cfg.JWT.NodeID,
	})
	if err != nil {
		return fmt.Errorf("failed to init token service: %w", err)
	}

	sessions := session.NewStore(kv,
		session.WithRefreshTTL(cfg.JWT.RefreshTTL),
		session.WithOperationTimeout(cfg.Sessions.OperationTimeout),
	)

	providers, err := server.NewProviders(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("identity providers configured", "providers", providers.Names())

	publisher, err := server.NewPublisher(cfg.Events)
	if err != nil {
		return fmt.Errorf("failed to init event publisher: %w", err)
	}
	defer publisher.Close()

	service := auth.NewService(
		providers,
		identity.NewResolver(users, logger),
		tokens,
		sessions,
		users,
		publisher,
		logger,
	)

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, logger)
	defer limiter.Stop()

	handler := server.NewRouter(server.Deps{
		Logger: logger,
		Auth:   handlers.NewAuthHandler(logger, service, users),
		Health: handlers.NewHealthHandler(logger, Version, map[string]handlers.Pinger{
			"database": users,
			"sessions": sessions,
		}),
		Authenticator:  middleware.NewAuthenticator(logger, sessions, tokens, users),
		LoginLimiter:   limiter,
		TrustedProxies: trustedProxies,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func printVersion() {
	fmt.Printf("socialauth server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
