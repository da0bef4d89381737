package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(userID string) *Claims {
	return &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func TestVerifyValidToken(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)
	tokenString := signToken(t, testSecret, validClaims("42"))

	userID, err := verifier.Verify(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "42", userID)
}

func TestVerifyMissingToken(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	_, err := verifier.Verify("")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestVerifyRejections(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	expired := validClaims("42")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-jwt"},
		{"expired", signToken(t, testSecret, expired)},
		{"wrong secret", signToken(t, "some-other-secret", validClaims("42"))},
		{"missing user id claim", signToken(t, testSecret, validClaims(""))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)
	tokenString := signToken(t, testSecret, validClaims("42"))

	// Flip a character in the signature segment.
	tampered := tokenString[:len(tokenString)-2] + "xx"

	_, err := verifier.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsNonHMACAlgorithm(t *testing.T) {
	verifier := NewTokenVerifier(testSecret)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims("42"))
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
