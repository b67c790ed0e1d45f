package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbane-subscription-api/models"
	"urbane-subscription-api/services/auth"
)

func newService(secret string) *auth.JWTService {
	return auth.NewJWTService(secret, "urbane-subscription-api", nil)
}

func TestIssueAndValidateToken(t *testing.T) {
	t.Parallel()

	svc := newService("test-secret")
	user := &models.AuthUser{
		Email:            "reader@example.com",
		Name:             "Reader One",
		HasDigitalAccess: true,
		ActivePlanID:     "digital-annual",
	}

	resp, err := svc.IssueToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.WithinDuration(t, time.Now().Add(auth.AccessTokenDuration), resp.ExpiresAt, 5*time.Second)
	assert.Equal(t, *user, resp.User)

	got, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestValidateTokenRejects(t *testing.T) {
	t.Parallel()

	svc := newService("test-secret")

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := newService("different-secret")
		resp, err := other.IssueToken(&models.AuthUser{Email: "a@b.com"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(resp.Token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		claims := jwt.RegisteredClaims{
			Subject:   "a@b.com",
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(past),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "a@b.com"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateToken(signed)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
