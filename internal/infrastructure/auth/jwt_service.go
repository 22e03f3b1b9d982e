package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wabdevconsult/batuta/domain"
)

// DemoTokenPrefix starts every placeholder token issued for demo credentials
const DemoTokenPrefix = "demo-token-"

// JWTInspector implements domain.TokenInspector.
// The backend signs and verifies its tokens; the console only reads them to
// know the role and when a refresh is due, so signatures are not checked here.
type JWTInspector struct {
	parser *jwt.Parser
}

// NewJWTInspector creates a new token inspector
func NewJWTInspector() domain.TokenInspector {
	return &JWTInspector{parser: jwt.NewParser()}
}

// DemoToken returns the placeholder token for a demo role
func DemoToken(role domain.Role) string {
	return DemoTokenPrefix + string(role)
}

// IsDemo implements domain.TokenInspector
func (j *JWTInspector) IsDemo(token string) bool {
	return strings.HasPrefix(token, DemoTokenPrefix)
}

// Inspect implements domain.TokenInspector
func (j *JWTInspector) Inspect(tokenString string) (*domain.TokenClaims, error) {
	if tokenString == "" {
		return nil, domain.ErrTokenInvalid
	}

	if j.IsDemo(tokenString) {
		role := domain.Role(strings.TrimPrefix(tokenString, DemoTokenPrefix))
		if !role.Valid() {
			return nil, domain.ErrTokenMalformed
		}
		return &domain.TokenClaims{Role: role, Demo: true}, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := j.parser.ParseUnverified(tokenString, claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, domain.ErrTokenMalformed
		}
		return nil, domain.ErrTokenInvalid
	}

	tokenClaims := &domain.TokenClaims{}

	if sub, err := claims.GetSubject(); err == nil {
		tokenClaims.Subject = sub
	}
	// Some backends put the user id in a custom claim instead of sub
	if tokenClaims.Subject == "" {
		for _, key := range []string{"user_id", "userId", "id"} {
			if v, ok := claims[key].(string); ok && v != "" {
				tokenClaims.Subject = v
				break
			}
		}
	}

	if role, ok := claims["role"].(string); ok {
		tokenClaims.Role = domain.Role(role)
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		tokenClaims.IssuedAt = iat.Unix()
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tokenClaims.ExpiresAt = exp.Unix()
	}

	return tokenClaims, nil
}
