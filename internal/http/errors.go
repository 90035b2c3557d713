package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Renal37/cardledger/internal/backend"
	"github.com/Renal37/cardledger/internal/logger"
	"github.com/Renal37/cardledger/internal/middlewares"
	"github.com/Renal37/cardledger/internal/services"
	"github.com/Renal37/cardledger/internal/table"
	"go.uber.org/zap"
)

// statusFor подбирает HTTP-статус ответа для ошибки сервиса.
func statusFor(err error) int {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr), errors.Is(err, backend.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, table.ErrUnknownField), errors.Is(err, backend.ErrRejected):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrOperationInProgress),
		errors.Is(err, services.ErrQuotePending),
		errors.Is(err, services.ErrQuoteStale),
		errors.Is(err, services.ErrQuoteSuperseded):
		return http.StatusConflict
	case errors.Is(err, services.ErrCardNotFound),
		errors.Is(err, services.ErrDepositNotFound),
		errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, backend.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, backend.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, backend.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, backend.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError отвечает ошибкой в формате API. Если клиент уже ушел,
// ничего не пишет.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) && r.Context().Err() != nil {
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Log.Error("request failed", zap.String("uri", r.RequestURI), zap.Error(err))
	}

	if retryAfter := backend.RetryAfter(err); retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	}

	code := services.ErrorCode(err)
	message := services.UserMessage(err)
	if errors.Is(err, table.ErrUnknownField) {
		code = "BAD_REQUEST"
		message = err.Error()
	}

	middlewares.WriteError(w, status, code, message)
}
