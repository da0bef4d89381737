package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Rejection reasons surfaced to clients at connection time. The strings
// are part of the handshake contract.
var (
	ErrNoToken      = errors.New("No token")
	ErrInvalidToken = errors.New("Invalid token")
)

// Claims is the payload carried by every credential this service issues
// or accepts.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier resolves a bearer credential to a stable user identity.
// It is a pure function of the credential and the process-wide signing
// secret; the secret is set once at startup and never mutated.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify validates the credential and returns the user identity it was
// issued for. A missing credential yields ErrNoToken; a malformed,
// expired or tampered one yields ErrInvalidToken.
func (v *TokenVerifier) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrNoToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}
