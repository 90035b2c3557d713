package backend

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Категории ошибок бэкенда. APIError разворачивается в одну из них,
// поэтому вызывающий код проверяет errors.Is(err, backend.ErrNotFound) и т.п.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrRejected            = errors.New("request rejected")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrPermission          = errors.New("permission denied")
	ErrNotFound            = errors.New("not found")
	ErrRateLimited         = errors.New("rate limited")
	ErrUnavailable         = errors.New("service unavailable")
	ErrNetwork             = errors.New("network error")
)

const CodeInsufficientBalance = "INSUFFICIENT_BALANCE"

// APIError - ответ бэкенда вида {error: {code, message}}.
type APIError struct {
	Status     int
	Code       string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend responded %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Code == CodeInsufficientBalance {
		return ErrInsufficientBalance
	}

	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrPermission
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.Status >= http.StatusInternalServerError:
		return ErrUnavailable
	default:
		return ErrRejected
	}
}

// RetryAfter достает задержку из ошибки 429. Для остальных ошибок 0.
func RetryAfter(err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests {
		return apiErr.RetryAfter
	}
	return 0
}
