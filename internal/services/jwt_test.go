package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTServiceValidateToken(t *testing.T) {
	service := NewJWTService(testSecret)
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		token   string
		subject string
		wantErr error
	}{
		{
			name:    "valid",
			token:   signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "user-1", "exp": future}),
			subject: "user-1",
		},
		{
			name:    "expired",
			token:   signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantErr: ErrTokenIsExpired,
		},
		{
			name:    "wrong secret",
			token:   signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "user-1", "exp": future}),
			wantErr: ErrTokenIsInvalid,
		},
		{
			name:    "other algorithm",
			token:   signToken(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"sub": "user-1", "exp": future}),
			wantErr: ErrTokenIsInvalid,
		},
		{
			name:    "unsigned",
			token:   signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "user-1", "exp": future}),
			wantErr: ErrTokenIsInvalid,
		},
		{
			name:    "no expiration",
			token:   signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "user-1"}),
			wantErr: ErrTokenIsInvalid,
		},
		{
			name:    "no subject",
			token:   signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": future}),
			wantErr: ErrTokenNoSubject,
		},
		{
			name:    "garbage",
			token:   "not-a-token",
			wantErr: ErrTokenIsInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := service.ValidateToken(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, subject)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.subject, subject)
		})
	}
}
