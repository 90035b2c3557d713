package middlewares

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Renal37/cardledger/internal/models"
)

type key int

const (
	JwtServiceKey key = iota
	BalanceServiceKey
	FeeServiceKey
	CardServiceKey
	FeedServiceKey
	DepositWatcherKey
)

// Services - все сервисы, которые роутер раскладывает в контекст запроса.
type Services struct {
	JWT      models.JWTService
	Balance  models.BalanceService
	Fees     models.FeeService
	Cards    models.CardService
	Feed     models.FeedService
	Deposits models.DepositWatcher
}

// ServiceInjectorMiddleware кладет сервисы в контекст запроса.
func ServiceInjectorMiddleware(services Services) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), JwtServiceKey, services.JWT)
			ctx = context.WithValue(ctx, BalanceServiceKey, services.Balance)
			ctx = context.WithValue(ctx, FeeServiceKey, services.Fees)
			ctx = context.WithValue(ctx, CardServiceKey, services.Cards)
			ctx = context.WithValue(ctx, FeedServiceKey, services.Feed)
			ctx = context.WithValue(ctx, DepositWatcherKey, services.Deposits)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetServiceFromContext достает сервис, положенный ServiceInjectorMiddleware.
// Если сервиса нет, отвечает 500 и возвращает false.
func GetServiceFromContext[Service any](w http.ResponseWriter, r *http.Request, serviceKey key) (Service, bool) {
	foundService, ok := r.Context().Value(serviceKey).(Service)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", fmt.Sprintf("Service wasn't found in context by key %v", serviceKey))
		var empty Service
		return empty, false
	}

	return foundService, true
}
