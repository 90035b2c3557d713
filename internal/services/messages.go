package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Renal37/cardledger/internal/backend"
)

const genericMessage = "Something went wrong, please try again"

type messageKey struct {
	status int
	code   string
}

// Сообщения для ответов бэкенда. Сначала ищется точная пара (статус, код),
// затем статус без кода. Все 5xx сводятся к 500.
var backendMessages = map[messageKey]string{
	{http.StatusBadRequest, backend.CodeInsufficientBalance}: "Insufficient balance for this operation",
	{http.StatusBadRequest, "CARD_HAS_BALANCE"}:              "The card still holds funds. Lower its limit to the spent amount before deleting it",
	{http.StatusBadRequest, "CARD_HAS_PENDING_TRANSACTIONS"}: "The card has pending transactions and cannot be deleted yet",
	{http.StatusBadRequest, "LIMIT_BELOW_SPENT"}:             "The new limit is below the amount already spent",
	{http.StatusConflict, "CARD_STATE_CONFLICT"}:             "The card status has changed, refresh and try again",
	{http.StatusUnauthorized, ""}:                            "Your session has expired, please sign in again",
	{http.StatusForbidden, ""}:                               "You don't have permission to perform this action",
	{http.StatusForbidden, "KYC_REQUIRED"}:                   "Complete identity verification to unlock this action",
	{http.StatusNotFound, ""}:                                "This item no longer exists, the list has been refreshed",
	{http.StatusInternalServerError, ""}:                     "The service is temporarily unavailable, please try again later",
}

// UserMessage превращает любую ошибку сервиса в текст для пользователя.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	switch {
	case errors.Is(err, ErrOperationInProgress):
		return "Another operation on this card is in progress"
	case errors.Is(err, ErrQuotePending), errors.Is(err, ErrQuoteStale), errors.Is(err, ErrQuoteSuperseded):
		return "The fee is being recalculated, please wait"
	case errors.Is(err, ErrCardNotFound), errors.Is(err, ErrDepositNotFound):
		return backendMessages[messageKey{http.StatusNotFound, ""}]
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled"
	case errors.Is(err, backend.ErrNetwork):
		return "Network error, check your connection and try again"
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusTooManyRequests {
			return fmt.Sprintf("Too many requests, retry in %d seconds", int(apiErr.RetryAfter.Seconds()))
		}

		status := apiErr.Status
		if status >= http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}

		if msg, ok := backendMessages[messageKey{status, apiErr.Code}]; ok {
			return msg
		}
		if msg, ok := backendMessages[messageKey{status, ""}]; ok && apiErr.Code == "" {
			return msg
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if msg, ok := backendMessages[messageKey{status, ""}]; ok {
			return msg
		}
	}

	return genericMessage
}

// ErrorCode - машинный код ошибки для ответа API.
func ErrorCode(err error) string {
	var validationErr *ValidationError

	switch {
	case errors.As(err, &validationErr):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrOperationInProgress):
		return "OPERATION_IN_PROGRESS"
	case errors.Is(err, ErrQuotePending):
		return "QUOTE_PENDING"
	case errors.Is(err, ErrQuoteStale):
		return "QUOTE_STALE"
	case errors.Is(err, ErrQuoteSuperseded):
		return "QUOTE_SUPERSEDED"
	case errors.Is(err, ErrCardNotFound), errors.Is(err, ErrDepositNotFound), errors.Is(err, backend.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, backend.ErrInsufficientBalance):
		return backend.CodeInsufficientBalance
	case errors.Is(err, backend.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, backend.ErrPermission):
		return "PERMISSION_DENIED"
	case errors.Is(err, backend.ErrRateLimited):
		return "RATE_LIMITED"
	case errors.Is(err, backend.ErrUnavailable):
		return "SERVICE_UNAVAILABLE"
	case errors.Is(err, backend.ErrNetwork):
		return "NETWORK_ERROR"
	case errors.Is(err, backend.ErrRejected):
		return "REJECTED"
	default:
		return "INTERNAL_ERROR"
	}
}
