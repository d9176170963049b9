package models

import (
	"strings"
	"time"
)

// Роли пользователей
const (
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

// DefaultNickname is used when a provider profile carries no nickname.
const DefaultNickname = "Unknown"

// Ограничения длины колонок в таблице users
const (
	MaxNicknameLength  = 50
	MaxEmailLength     = 100
	MaxAvatarURLLength = 255
)

// User представляет локального пользователя, привязанного к внешнему провайдеру
type User struct {
	CreatedAt  time.Time `json:"created_at"`  // время первого входа
	ID         string    `json:"id"`          // UUID пользователя
	Provider   string    `json:"provider"`    // google, kakao, naver
	ExternalID string    `json:"external_id"` // идентификатор у провайдера
	Nickname   string    `json:"nickname"`
	Email      string    `json:"email,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Role       string    `json:"role"` // USER, MODERATOR, ADMIN
}

// ProviderProfile is the normalized identity returned by a provider's
// user-info endpoint.
type ProviderProfile struct {
	ExternalID string
	Nickname   string
	Email      string
	AvatarURL  string
}

// IsKnownRole reports whether role is one of the defined roles.
func IsKnownRole(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// NormalizeRoles drops blank entries and trims the rest.
// An empty result falls back to USER.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return []string{RoleUser}
	}
	return out
}
