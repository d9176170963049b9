package api

import "time"

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

// Коды ошибок. Первая цифра - категория: 0 ввод, 1 аутентификация,
// 2 авторизация, 3 ресурсы, 5 сервер, 6 вход через провайдера.
const (
	CodeInvalidInput        ErrorCode = "E001"
	CodeUnauthorized        ErrorCode = "E101"
	CodeInvalidToken        ErrorCode = "E102"
	CodeAccessDenied        ErrorCode = "E201"
	CodeUserNotFound        ErrorCode = "E302"
	CodeInternal            ErrorCode = "E501"
	CodeServiceUnavailable  ErrorCode = "E502"
	CodeUnsupportedProvider ErrorCode = "E601"
	CodeLoginFailed         ErrorCode = "E602"
	CodeTooManyRequests     ErrorCode = "E603"
)

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Timestamp time.Time    `json:"timestamp"`
	Message   string       `json:"message"`
	Code      ErrorCode    `json:"code"`
	Errors    []FieldError `json:"errors,omitempty"`
	Status    int          `json:"status"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field  string `json:"field"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}
