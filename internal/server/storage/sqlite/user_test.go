package sqlite

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/socialauth/internal/models"
	"github.com/iudanet/socialauth/internal/server/storage"
)

func setupTestStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	// Используем in-memory database для тестов
	s, err := New(ctx, ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}

	return s, cleanup
}

func newTestUser(provider, externalID string) *models.User {
	return &models.User{
		ID:         uuid.New().String(),
		Provider:   provider,
		ExternalID: externalID,
		Nickname:   "tester",
		Email:      "tester@example.com",
		AvatarURL:  "https://example.com/a.png",
		Role:       models.RoleUser,
		CreatedAt:  time.Now(),
	}
}

func TestUserStorage_CreateUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		user *models.User
		name string
	}{
		{
			name: "full profile",
			user: newTestUser("google", "g-1"),
		},
		{
			name: "profile without email and avatar",
			user: &models.User{
				ID:         uuid.New().String(),
				Provider:   "kakao",
				ExternalID: "123456",
				Nickname:   models.DefaultNickname,
				Role:       models.RoleUser,
				CreatedAt:  time.Now(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.CreateUser(ctx, tt.user))

			retrieved, err := s.GetUserByID(ctx, tt.user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.user.ID, retrieved.ID)
			assert.Equal(t, tt.user.Provider, retrieved.Provider)
			assert.Equal(t, tt.user.ExternalID, retrieved.ExternalID)
			assert.Equal(t, tt.user.Nickname, retrieved.Nickname)
			assert.Equal(t, tt.user.Email, retrieved.Email)
			assert.Equal(t, tt.user.AvatarURL, retrieved.AvatarURL)
			assert.Equal(t, tt.user.Role, retrieved.Role)
			assert.WithinDuration(t, tt.user.CreatedAt, retrieved.CreatedAt, time.Second)
		})
	}
}

func TestUserStorage_CreateUser_Duplicate(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.CreateUser(ctx, newTestUser("naver", "n-1")))

	// Та же пара (provider, external_id) с другим ID
	err := s.CreateUser(ctx, newTestUser("naver", "n-1"))
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)

	// Тот же external_id у другого провайдера допустим
	require.NoError(t, s.CreateUser(ctx, newTestUser("google", "n-1")))
}

func TestUserStorage_CreateUser_ConcurrentSameIdentity(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		conflict int
	)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateUser(ctx, newTestUser("google", "race"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case assert.ErrorIs(t, err, storage.ErrUserAlreadyExists):
				conflict++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflict)
}

func TestUserStorage_GetUserByProviderAndExternalID(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := newTestUser("kakao", "42")
	require.NoError(t, s.CreateUser(ctx, user))

	tests := []struct {
		wantError  error
		name       string
		provider   string
		externalID string
	}{
		{name: "found", provider: "kakao", externalID: "42"},
		{name: "wrong provider", provider: "naver", externalID: "42", wantError: storage.ErrUserNotFound},
		{name: "wrong external id", provider: "kakao", externalID: "43", wantError: storage.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.GetUserByProviderAndExternalID(ctx, tt.provider, tt.externalID)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
		})
	}
}

func TestUserStorage_GetUserByID_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetUserByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUserStorage_UpdateUserRole(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := newTestUser("google", "g-2")
	require.NoError(t, s.CreateUser(ctx, user))

	require.NoError(t, s.UpdateUserRole(ctx, user.ID, models.RoleModerator))

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, got.Role)

	err = s.UpdateUserRole(ctx, uuid.New().String(), models.RoleModerator)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestStorage_Ping(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	assert.NoError(t, s.Ping(context.Background()))
}
