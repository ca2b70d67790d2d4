package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type AppClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager подписывает и проверяет токены доступа. Секрет живет в
// конфигурации процесса, никакого глобального состояния.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(cfg *Config) *Manager {
	return &Manager{
		secret: []byte(cfg.Secret),
		ttl:    time.Duration(cfg.TokenTTLMinutes) * time.Minute,
	}
}

func (m *Manager) GenerateToken(userID string) (string, error) {
	claims := &AppClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "velodrive",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (m *Manager) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AppClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*AppClaims)
	if !ok || claims.UserID == "" {
		return "", fmt.Errorf("invalid token claims")
	}

	return claims.UserID, nil
}

// VerifyRequest извлекает владельца из заголовка Authorization.
// Хендлеры зовут его первым, до разбора тела запроса.
func (m *Manager) VerifyRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("no authorization header")
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header format")
	}

	return m.VerifyToken(parts[1])
}
