package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Manager signs and verifies identity tokens with one HS256 secret.
// Tokens are issued by the account service; this API only needs to
// verify them, GenerateToken exists for tooling and tests.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret), ttl: 72 * time.Hour}
}

// GenerateToken creates a new JWT for a given user ID.
func (m *Manager) GenerateToken(userID int64) (string, error) {
	// 1. Create the claims. "sub" is the standard claim for the user ID.
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(m.ttl).Unix(),
		"iat": now.Unix(),
	}

	// 2. Sign it with HS256 and our secret.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a JWT token string.
// It returns the user ID (subject) if the token is valid.
func (m *Manager) ValidateToken(tokenString string) (int64, error) {
	// 1. Parse, rejecting anything not signed with HMAC.
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}

	// 2. Get the user ID ("sub") from the claims.
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		// JSON numbers decode as float64.
		userIDFloat, ok := claims["sub"].(float64)
		if !ok || userIDFloat < 1 {
			return 0, errors.New("invalid subject claim")
		}
		return int64(userIDFloat), nil
	}

	return 0, errors.New("invalid token")
}
