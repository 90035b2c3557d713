package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Renal37/cardledger/internal/backend"
	"github.com/Renal37/cardledger/internal/models"
	"github.com/Renal37/cardledger/internal/services"
)

type userFieldType string

const userField userFieldType = "userField"

type AuthMiddlewareConfig struct {
	excludePaths []string
}

// AuthMiddleware создает проверку JWT для всех путей, кроме исключенных.
func AuthMiddleware() *AuthMiddlewareConfig {
	return &AuthMiddlewareConfig{}
}

// WithExcludedPaths задает пути, доступные без токена.
func (a *AuthMiddlewareConfig) WithExcludedPaths(paths ...string) *AuthMiddlewareConfig {
	a.excludePaths = paths
	return a
}

// Middleware проверяет bearer-токен и кладет в контекст пользователя.
// Тот же токен уходит в бэкенд с каждым запросом этого пользователя.
func (a *AuthMiddlewareConfig) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, path := range a.excludePaths {
			if strings.HasPrefix(r.URL.Path, path) {
				next.ServeHTTP(w, r)
				return
			}
		}

		jwtService, ok := GetServiceFromContext[models.JWTService](w, r, JwtServiceKey)
		if !ok {
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header is required")
			return
		}

		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token is empty")
			return
		}

		subject, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, services.ErrTokenIsExpired) {
				message = "Your session has expired, please sign in again"
			}
			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
			return
		}

		user := models.User{ID: subject, Token: tokenString}
		ctx := context.WithValue(r.Context(), userField, user)
		ctx = backend.WithToken(ctx, tokenString)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext достает пользователя из контекста. Если его нет, пишет 500 и возвращает false.
func GetUserFromContext(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := r.Context().Value(userField).(models.User)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not get user from context")
		return models.User{}, false
	}

	return user, true
}
