package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superapp/auth-service/internal/core/domain"
)

func TestTokenIssuer_IssueAndParse(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour)
	issuer.now = func() time.Time { return now }

	token, exp, err := issuer.Issue(&domain.Account{ID: 7, Email: "a@x.com", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.ID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
}

func TestTokenIssuer_UniqueTokenIDs(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0)
	a, _, err := issuer.Issue(&domain.Account{ID: 1})
	require.NoError(t, err)
	b, _, err := issuer.Issue(&domain.Account{ID: 1})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", time.Hour)
	issuer.now = func() time.Time { return now }

	token, _, err := issuer.Issue(&domain.Account{ID: 1, Role: domain.RoleUser})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewTokenIssuer("secret", time.Hour)
		later.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err := later.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("other", time.Hour)
		other.now = issuer.now
		_, err := other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"id":  1,
			"exp": now.Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": 1}).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = issuer.Parse(noExp)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
