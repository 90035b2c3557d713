package middlewares

import (
	"encoding/json"
	"net/http"

	"github.com/Renal37/cardledger/internal/logger"
	"go.uber.org/zap"
)

// FieldError - ошибка проверки одного поля тела запроса.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type ErrorBody struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

type errorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteError отвечает в формате {"error": {"code", "message"}}.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteErrorBody(w, status, ErrorBody{Code: code, Message: message})
}

// WriteErrorBody пишет ошибку в формате {"code", "message"}.
func WriteErrorBody(w http.ResponseWriter, status int, body ErrorBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errorResponse{Error: body}); err != nil {
		logger.Log.Error("failed to write error response", zap.Error(err))
	}
}
