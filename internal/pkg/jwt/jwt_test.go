package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, v *Verifier, claims map[string]interface{}) string {
	t.Helper()
	_, token, err := v.JWTAuth().Encode(claims)
	require.NoError(t, err)
	return token
}

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(testSecret, 30*time.Second)
	exp := time.Now().Add(time.Hour).Unix()

	t.Run("access token", func(t *testing.T) {
		token := sign(t, v, map[string]interface{}{
			"user_id": "user-1", "company_id": "company-1", "role": "manager", "type": "access", "exp": exp,
		})

		claims, err := v.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, Claims{UserID: "user-1", CompanyID: "company-1", Role: RoleManager}, claims)
		assert.True(t, claims.Role.CanRunPayroll())
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		token := sign(t, v, map[string]interface{}{"user_id": "user-1", "type": "refresh", "exp": exp})
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing company", func(t *testing.T) {
		token := sign(t, v, map[string]interface{}{"user_id": "user-1", "type": "access", "exp": exp})
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrCompanyIDRequired)
	})

	t.Run("expired", func(t *testing.T) {
		token := sign(t, v, map[string]interface{}{
			"user_id": "user-1", "company_id": "company-1", "type": "access", "exp": time.Now().Add(-time.Hour).Unix(),
		})
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewVerifier("other-secret", 0)
		token := sign(t, other, map[string]interface{}{
			"user_id": "user-1", "company_id": "company-1", "type": "access", "exp": exp,
		})
		_, err := v.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestFromContext(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrInvalidToken)

	v := NewVerifier(testSecret, 0)
	token, err := v.JWTAuth().Decode(sign(t, v, map[string]interface{}{
		"user_id": "user-1", "company_id": "company-1", "role": "employee", "type": "access",
		"exp": time.Now().Add(time.Hour).Unix(),
	}))
	require.NoError(t, err)

	claims, err := FromContext(jwtauth.NewContext(context.Background(), token, nil))
	require.NoError(t, err)
	assert.Equal(t, "company-1", claims.CompanyID)
	assert.False(t, claims.Role.CanRunPayroll())
}
