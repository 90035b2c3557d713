package services

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenIsInvalid = errors.New("token is invalid")
	ErrTokenIsExpired = errors.New("token is expired")
	ErrTokenNoSubject = errors.New("token has no subject")
)

// JWTService проверяет токены, выпущенные сервисом авторизации платформы.
// Сами токены cardledger не выпускает.
type JWTService struct {
	authSecretKey string
	parser        *jwt.Parser
}

func NewJWTService(authSecretKey string) *JWTService {
	return &JWTService{
		authSecretKey: authSecretKey,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// ValidateToken проверяет подпись и срок действия и возвращает subject - id пользователя.
func (j *JWTService) ValidateToken(tokenString string) (string, error) {
	parsedToken, err := j.parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(j.authSecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenIsExpired
		}
		return "", fmt.Errorf("%w: %w", ErrTokenIsInvalid, err)
	}

	if !parsedToken.Valid {
		return "", ErrTokenIsInvalid
	}

	subject, err := parsedToken.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrTokenNoSubject
	}

	return subject, nil
}
