package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/Renal37/cardledger/internal/logger"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type parsedJSONDataFieldType string

const parsedJSONDataField parsedJSONDataFieldType = "parsedJSONDataField"

const maxBodySize = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// JSONMiddleware читает тело запроса в Model, проверяет теги validate и кладет
// результат в контекст. Достать его можно через GetParsedJSONData.
func JSONMiddleware[Model any](next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType != "application/json" {
			WriteError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type is not application/json")
			return
		}

		var parsedData Model
		var buf bytes.Buffer

		if _, err := buf.ReadFrom(http.MaxBytesReader(w, r.Body, maxBodySize)); err != nil {
			WriteError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("Error occurred during reading from the body: %s", err.Error()))
			return
		}

		if err := json.Unmarshal(buf.Bytes(), &parsedData); err != nil {
			WriteError(w, http.StatusBadRequest, "BAD_REQUEST", fmt.Sprintf("Error occurred during unmarshaling data: %s", err.Error()))
			return
		}

		if details := ValidateRequest(parsedData); len(details) > 0 {
			WriteErrorBody(w, http.StatusBadRequest, ErrorBody{
				Code:    "VALIDATION_ERROR",
				Message: "Invalid request data",
				Details: details,
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), parsedJSONDataField, parsedData)))
	})
}

// ValidateRequest возвращает ошибки по полям или nil.
func ValidateRequest(obj any) []FieldError {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Не структура - проверять нечего.
		return nil
	}

	details := make([]FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details = append(details, FieldError{
			Field:   fieldErr.Field(),
			Message: fieldErrorMessage(fieldErr),
			Type:    fieldErr.Tag(),
		})
	}
	return details
}

func fieldErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "max":
		return "Value is too long"
	case "oneof":
		return "Value must be one of: " + err.Param()
	default:
		return "Invalid value"
	}
}

// GetParsedJSONData достает тело, разобранное JSONMiddleware.
func GetParsedJSONData[Model any](w http.ResponseWriter, r *http.Request) (Model, bool) {
	data, ok := r.Context().Value(parsedJSONDataField).(Model)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not retrieve data from context")
		var empty Model
		return empty, false
	}

	return data, true
}

// EncodeJSONResponse отвечает JSON с указанным статусом.
func EncodeJSONResponse[Model any](w http.ResponseWriter, status int, data Model) {
	resp, err := json.Marshal(data)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fmt.Sprintf("Error occurred during encoding response: %s", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(resp); err != nil {
		logger.Log.Error("failed to write response", zap.Error(err))
	}
}
