package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue("9876543210")
	require.NoError(t, err)

	phone, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", phone)
}

func TestTokenExpired(t *testing.T) {
	expired := &TokenService{secret: []byte("test-secret"), ttl: -time.Minute}

	token, err := expired.Issue("9876543210")
	require.NoError(t, err)

	_, err = NewTokenService("test-secret").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-one").Issue("9876543210")
	require.NoError(t, err)

	_, err = NewTokenService("secret-two").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenUnexpectedSigningMethod(t *testing.T) {
	// HS384 with the right secret still fails, the method is pinned to HS256
	claims := &Claims{
		Phone: "9876543210",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewTokenService("test-secret").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenGarbage(t *testing.T) {
	_, err := NewTokenService("test-secret").Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
