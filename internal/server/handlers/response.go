package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/socialauth/pkg/api"
)

// WriteJSON отправляет JSON ответ
func WriteJSON(w http.ResponseWriter, logger *slog.Logger, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// WriteError отправляет конверт ошибки api.ErrorResponse
func WriteError(w http.ResponseWriter, logger *slog.Logger, statusCode int, code api.ErrorCode, message string, fieldErrors ...api.FieldError) {
	resp := api.ErrorResponse{
		Timestamp: time.Now().UTC(),
		Message:   message,
		Code:      code,
		Errors:    fieldErrors,
		Status:    statusCode,
	}
	WriteJSON(w, logger, resp, statusCode)
}
