package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// MinCodeLen минимальная длина authorization code
	MinCodeLen = 1
	// MaxCodeLen максимальная длина authorization code
	MaxCodeLen = 2000
)

// RolePattern определяет допустимый формат имени роли:
// заглавные латинские буквы и нижнее подчеркивание, 1-32 символа
var RolePattern = regexp.MustCompile(`^[A-Z_]{1,32}$`)

// ValidateCode проверяет authorization code из тела запроса на вход
// Длина: 1-2000 символов, не только пробелы
func ValidateCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("code cannot be empty")
	}

	if n := utf8.RuneCountInString(code); n < MinCodeLen || n > MaxCodeLen {
		return fmt.Errorf("code must be between %d and %d characters long", MinCodeLen, MaxCodeLen)
	}

	return nil
}

// ValidateRole проверяет формат имени роли. Известна ли роль, решает сервис.
func ValidateRole(role string) error {
	if role == "" {
		return fmt.Errorf("role cannot be empty")
	}

	if !RolePattern.MatchString(role) {
		return fmt.Errorf("role can only contain upper-case letters (A-Z) and underscores (_)")
	}

	return nil
}

// ValidateUserID проверяет, что id пользователя является UUID
func ValidateUserID(id string) error {
	if id == "" {
		return fmt.Errorf("user id cannot be empty")
	}

	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("user id must be a valid UUID")
	}

	return nil
}
