package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wabdevconsult/batuta/domain"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestJWTInspector_Inspect(t *testing.T) {
	now := time.Now()
	inspector := NewJWTInspector()

	tests := []struct {
		name         string
		token        string
		expectErr    error
		expectClaims *domain.TokenClaims
	}{
		{
			name:      "empty token",
			token:     "",
			expectErr: domain.ErrTokenInvalid,
		},
		{
			name:         "demo token",
			token:        DemoToken(domain.RoleTechnicien),
			expectClaims: &domain.TokenClaims{Role: domain.RoleTechnicien, Demo: true},
		},
		{
			name:      "demo token with unknown role",
			token:     DemoTokenPrefix + "plombier",
			expectErr: domain.ErrTokenMalformed,
		},
		{
			name:      "garbage",
			token:     "not-a-jwt",
			expectErr: domain.ErrTokenMalformed,
		},
		{
			name: "standard claims",
			token: signed(t, jwt.MapClaims{
				"sub":  "u42",
				"role": "admin",
				"iat":  now.Add(-time.Minute).Unix(),
				"exp":  now.Add(time.Hour).Unix(),
			}),
			expectClaims: &domain.TokenClaims{
				Subject:   "u42",
				Role:      domain.RoleAdmin,
				IssuedAt:  now.Add(-time.Minute).Unix(),
				ExpiresAt: now.Add(time.Hour).Unix(),
			},
		},
		{
			name:         "user id in custom claim",
			token:        signed(t, jwt.MapClaims{"userId": "u7", "role": "client"}),
			expectClaims: &domain.TokenClaims{Subject: "u7", Role: domain.RoleClient},
		},
		{
			name: "expired token is still readable",
			token: signed(t, jwt.MapClaims{
				"sub": "u1",
				"exp": now.Add(-time.Hour).Unix(),
			}),
			expectClaims: &domain.TokenClaims{Subject: "u1", ExpiresAt: now.Add(-time.Hour).Unix()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := inspector.Inspect(tt.token)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectClaims, claims)
		})
	}
}

func TestJWTInspector_Expiry(t *testing.T) {
	inspector := NewJWTInspector()
	now := time.Now()

	claims, err := inspector.Inspect(signed(t, jwt.MapClaims{"sub": "u1", "exp": now.Add(-time.Second).Unix()}))
	require.NoError(t, err)
	assert.True(t, claims.Expired(now))

	claims, err = inspector.Inspect(DemoToken(domain.RoleAdmin))
	require.NoError(t, err)
	assert.False(t, claims.Expired(now), "demo tokens never expire")
}

func TestJWTInspector_IsDemo(t *testing.T) {
	inspector := NewJWTInspector()
	assert.True(t, inspector.IsDemo("demo-token-admin"))
	assert.False(t, inspector.IsDemo("eyJhbGciOi"))
	assert.False(t, inspector.IsDemo(""))
}
