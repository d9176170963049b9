package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/iudanet/socialauth/internal/models"
	"github.com/iudanet/socialauth/internal/server/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = pq.ErrorCode("23505")

// Config holds connection pool settings.
type Config struct {
	DSN         string
	MaxConns    int
	PingTimeout time.Duration
}

// Storage is the PostgreSQL implementation of storage.UserStorage.
type Storage struct {
	db *sqlx.DB
}

type userRow struct {
	CreatedAt  time.Time      `db:"created_at"`
	ID         string         `db:"id"`
	Provider   string         `db:"provider"`
	ExternalID string         `db:"external_id"`
	Nickname   string         `db:"nickname"`
	Role       string         `db:"role"`
	Email      sql.NullString `db:"email"`
	AvatarURL  sql.NullString `db:"avatar_url"`
}

func (r userRow) toModel() *models.User {
	return &models.User{
		ID:         r.ID,
		Provider:   r.Provider,
		ExternalID: r.ExternalID,
		Nickname:   r.Nickname,
		Email:      r.Email.String,
		AvatarURL:  r.AvatarURL.String,
		Role:       r.Role,
		CreatedAt:  r.CreatedAt,
	}
}

// New connects, verifies connectivity and applies migrations.
func New(ctx context.Context, cfg Config) (*Storage, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 5
	}
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

func (s *Storage) runMigrations(ctx context.Context) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, s.db.DB, migrations,
		goose.WithDisableGlobalRegistry(true))
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	q := `INSERT INTO users (id, provider, external_id, nickname, email, avatar_url, role, created_at)
		  VALUES (:id, :provider, :external_id, :nickname, :email, :avatar_url, :role, :created_at)`

	row := userRow{
		ID:         user.ID,
		Provider:   user.Provider,
		ExternalID: user.ExternalID,
		Nickname:   user.Nickname,
		Email:      sql.NullString{String: user.Email, Valid: user.Email != ""},
		AvatarURL:  sql.NullString{String: user.AvatarURL, Valid: user.AvatarURL != ""},
		Role:       user.Role,
		CreatedAt:  user.CreatedAt.UTC(),
	}

	if _, err := s.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUserByProviderAndExternalID retrieves user by provider and external id
func (s *Storage) GetUserByProviderAndExternalID(ctx context.Context, provider, externalID string) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, provider, external_id, nickname, email, avatar_url, role, created_at
		   FROM users WHERE provider = $1 AND external_id = $2`, provider, externalID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return row.toModel(), nil
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, provider, external_id, nickname, email, avatar_url, role, created_at
		   FROM users WHERE id = $1`, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return row.toModel(), nil
}

// UpdateUserRole sets the role of an existing user
func (s *Storage) UpdateUserRole(ctx context.Context, userID, role string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, userID)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrUserNotFound
	}
	// uuid колонка отвергает невалидный id, для вызывающего это тот же "не найден"
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
		return storage.ErrUserNotFound
	}
	return fmt.Errorf("failed to get user: %w", err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
