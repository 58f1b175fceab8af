// File: internal/auth/jwt.go
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identifies the user and the server-side session a token was issued for.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// GenerateJWT signs an HS256 token for userID bound to sessionID.
func GenerateJWT(userID, sessionID string, secretKey []byte, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user ID cannot be empty")
	}
	if sessionID == "" {
		return "", errors.New("session ID cannot be empty")
	}
	if len(secretKey) == 0 {
		return "", errors.New("secret key cannot be empty")
	}

	now := time.Now()
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// ValidateToken checks the signature and expiry and returns the claims.
func ValidateToken(tokenString string, secretKey []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.Subject == "" || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
