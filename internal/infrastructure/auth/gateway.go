package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/wabdevconsult/batuta/domain"
	"github.com/wabdevconsult/batuta/internal/infrastructure/api"
)

// Messages shown when the backend gives no explanation
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
	MsgMissingCredentials = "Email and password are required"
)

// Gateway implements domain.AuthGateway against the REST backend,
// short-circuiting the demo credential table when enabled.
type Gateway struct {
	client *api.Client
	demo   *DemoDirectory
	tokens domain.TokenInspector
}

// NewGateway creates an auth gateway. demo may be nil to disable demo logins.
func NewGateway(client *api.Client, demo *DemoDirectory, tokens domain.TokenInspector) *Gateway {
	return &Gateway{client: client, demo: demo, tokens: tokens}
}

type authResponse struct {
	User        *domain.User `json:"user"`
	Token       string       `json:"token"`
	AccessToken string       `json:"access_token"`
}

func (r *authResponse) result() *domain.AuthResult {
	token := r.Token
	if token == "" {
		token = r.AccessToken
	}
	return &domain.AuthResult{User: r.User, Token: token}
}

// Login implements domain.AuthGateway
func (g *Gateway) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	if result, ok := g.demo.Match(creds); ok {
		return result, nil
	}

	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, &domain.AuthError{Message: MsgMissingCredentials, Err: domain.ErrMissingCredentials}
	}

	var resp authResponse
	if err := g.client.Post(ctx, "/auth/login", creds, &resp); err != nil {
		return nil, normalize(err, MsgLoginFailed, domain.ErrInvalidCredentials)
	}
	return complete(&resp, MsgLoginFailed)
}

// Register implements domain.AuthGateway
func (g *Gateway) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResult, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, &domain.AuthError{Message: MsgMissingCredentials, Err: domain.ErrMissingCredentials}
	}

	var resp authResponse
	if err := g.client.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, normalize(err, MsgRegistrationFailed, nil)
	}
	return complete(&resp, MsgRegistrationFailed)
}

// Logout implements domain.AuthGateway. Demo tokens never reach the backend.
func (g *Gateway) Logout(ctx context.Context, token string) {
	if token == "" || g.tokens.IsDemo(token) {
		return
	}
	if err := g.client.WithToken(token).Post(ctx, "/auth/logout", nil, nil); err != nil {
		log.Printf("auth: backend logout failed: %v", err)
	}
}

// CurrentUser implements domain.AuthGateway
func (g *Gateway) CurrentUser(ctx context.Context, token string) *domain.User {
	if token == "" {
		return nil
	}
	if g.tokens.IsDemo(token) {
		claims, err := g.tokens.Inspect(token)
		if err != nil {
			return nil
		}
		user, _ := g.demo.Profile(claims.Role)
		return user
	}

	var resp struct {
		domain.User
		Nested *domain.User `json:"user"`
	}
	if err := g.client.WithToken(token).Get(ctx, "/auth/me", &resp); err != nil {
		log.Printf("auth: current user lookup failed: %v", err)
		return nil
	}
	if resp.Nested != nil {
		return resp.Nested
	}
	if resp.User.ID == "" {
		return nil
	}
	user := resp.User
	return &user
}

// RefreshToken implements domain.AuthGateway
func (g *Gateway) RefreshToken(ctx context.Context, token string) string {
	if token == "" {
		return ""
	}
	if g.tokens.IsDemo(token) {
		return token
	}

	var resp authResponse
	if err := g.client.WithToken(token).Post(ctx, "/auth/refresh", nil, &resp); err != nil {
		log.Printf("auth: token refresh failed: %v", err)
		return ""
	}
	return resp.result().Token
}

func complete(resp *authResponse, fallback string) (*domain.AuthResult, error) {
	result := resp.result()
	if result.User == nil || result.Token == "" {
		return nil, &domain.AuthError{Message: fallback, Err: domain.ErrTokenMalformed}
	}
	return result, nil
}

// normalize turns any backend failure into an AuthError with a display message
func normalize(err error, fallback string, onUnauthorized error) error {
	cause := err
	switch {
	case errors.Is(err, domain.ErrBackendUnavailable):
		cause = domain.ErrBackendUnavailable
	case onUnauthorized != nil && errors.Is(err, domain.ErrUnauthorized):
		cause = onUnauthorized
	case errors.Is(err, domain.ErrUserAlreadyExists):
		cause = domain.ErrUserAlreadyExists
	}

	msg := api.MessageOf(err)
	if msg == "" {
		msg = fallback
	}
	return &domain.AuthError{Message: msg, Err: cause}
}
