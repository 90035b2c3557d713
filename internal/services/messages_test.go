package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Renal37/cardledger/internal/backend"
	"github.com/stretchr/testify/assert"
)

func TestUserMessageAndErrorCode(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
		code    string
	}{
		{
			name:    "validation",
			err:     &ValidationError{Field: "spendingLimit", Reason: ReasonBelowSpent, Amount: money("50")},
			message: "limit cannot be below spent amount $50.00",
			code:    "VALIDATION_ERROR",
		},
		{
			name:    "in progress",
			err:     ErrOperationInProgress,
			message: "Another operation on this card is in progress",
			code:    "OPERATION_IN_PROGRESS",
		},
		{
			name:    "quote pending",
			err:     ErrQuotePending,
			message: "The fee is being recalculated, please wait",
			code:    "QUOTE_PENDING",
		},
		{
			name:    "card not found",
			err:     fmt.Errorf("%w: c1", ErrCardNotFound),
			message: "This item no longer exists, the list has been refreshed",
			code:    "NOT_FOUND",
		},
		{
			name:    "rate limited",
			err:     &backend.APIError{Status: http.StatusTooManyRequests, RetryAfter: 30 * time.Second},
			message: "Too many requests, retry in 30 seconds",
			code:    "RATE_LIMITED",
		},
		{
			name:    "any 5xx",
			err:     &backend.APIError{Status: http.StatusBadGateway},
			message: "The service is temporarily unavailable, please try again later",
			code:    "SERVICE_UNAVAILABLE",
		},
		{
			name:    "status and code",
			err:     &backend.APIError{Status: http.StatusForbidden, Code: "KYC_REQUIRED"},
			message: "Complete identity verification to unlock this action",
			code:    "PERMISSION_DENIED",
		},
		{
			name:    "insufficient balance",
			err:     &backend.APIError{Status: http.StatusBadRequest, Code: backend.CodeInsufficientBalance},
			message: "Insufficient balance for this operation",
			code:    backend.CodeInsufficientBalance,
		},
		{
			name:    "unknown code falls back to backend message",
			err:     &backend.APIError{Status: http.StatusBadRequest, Code: "PROGRAM_CLOSED", Message: "Program closed"},
			message: "Program closed",
			code:    "REJECTED",
		},
		{
			name:    "session expired",
			err:     fmt.Errorf("wrapped: %w", &backend.APIError{Status: http.StatusUnauthorized}),
			message: "Your session has expired, please sign in again",
			code:    "UNAUTHORIZED",
		},
		{
			name:    "network",
			err:     fmt.Errorf("%w: dial tcp", backend.ErrNetwork),
			message: "Network error, check your connection and try again",
			code:    "NETWORK_ERROR",
		},
		{
			name:    "cancelled",
			err:     context.Canceled,
			message: "The request was cancelled",
			code:    "INTERNAL_ERROR",
		},
		{
			name:    "unknown",
			err:     errors.New("boom"),
			message: genericMessage,
			code:    "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, UserMessage(tt.err))
			assert.Equal(t, tt.code, ErrorCode(tt.err))
		})
	}

	assert.Empty(t, UserMessage(nil))
}
