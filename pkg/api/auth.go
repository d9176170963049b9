package api

// LoginRequest представляет тело POST /oauth/login/{provider}
type LoginRequest struct {
	Code string `json:"code"` // authorization code, выданный провайдером
}

// LoginResponse представляет ответ на успешный вход
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	IsNewUser    bool   `json:"isNewUser"`
}

// RefreshResponse представляет ответ POST /auth/refresh
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageResponse представляет ответ без данных, например на logout
type MessageResponse struct {
	Message string `json:"message"`
}

// MeResponse описывает аутентифицированного пользователя
type MeResponse struct {
	UserID   string   `json:"userId"`
	Provider string   `json:"provider"`
	Nickname string   `json:"nickname,omitempty"`
	Email    string   `json:"email,omitempty"`
	Avatar   string   `json:"avatarUrl,omitempty"`
	Roles    []string `json:"roles"`
}

// ChangeRoleRequest представляет тело PUT /admin/users/{id}/role
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeRoleResponse представляет ответ на смену роли
type ChangeRoleResponse struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}
