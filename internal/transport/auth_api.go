package transport

import (
	"context"
	"errors"
	"net/http"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// authData is the wire shape of a login/register success payload. Older
// backend builds return the principal under "rider", newer ones under
// "user"; both are checked, first match wins.
type authData struct {
	User  *domain.User `json:"user"`
	Rider *domain.User `json:"rider"`
	Token string       `json:"token"`
}

func (d *authData) principal() *domain.User {
	if d.User != nil {
		return d.User
	}
	return d.Rider
}

// AuthClient implements domain.AuthAPI.
type AuthClient struct {
	client *Client
}

// NewAuthClient creates the authentication transport.
func NewAuthClient(client *Client) *AuthClient {
	return &AuthClient{client: client}
}

// Login implements domain.AuthAPI.
func (a *AuthClient) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthPayload, error) {
	env, err := a.client.do(ctx, http.MethodPost, "/auth/login", req, "Login failed")
	if err != nil {
		return nil, err
	}
	return normalizeAuthPayload(env)
}

// Register implements domain.AuthAPI.
func (a *AuthClient) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthPayload, error) {
	env, err := a.client.do(ctx, http.MethodPost, "/auth/register", req, "Registration failed")
	if err != nil {
		return nil, err
	}
	return normalizeAuthPayload(env)
}

// Me implements domain.AuthAPI.
func (a *AuthClient) Me(ctx context.Context) (*domain.User, error) {
	env, err := a.client.do(ctx, http.MethodGet, "/auth/me", nil, "Failed to get user data")
	if err != nil {
		return nil, err
	}
	var data authData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}
	user := data.principal()
	if user == nil {
		return nil, &APIError{Message: "Failed to get user data"}
	}
	return user, nil
}

// TestAuth implements domain.AuthAPI. An invalid token reports false
// rather than an error; the transport has already torn the session down.
func (a *AuthClient) TestAuth(ctx context.Context) (bool, error) {
	env, err := a.client.do(ctx, http.MethodGet, "/auth/test", nil, "Auth test failed")
	if err != nil {
		if errors.Is(err, domain.ErrAuthInvalid) {
			return false, nil
		}
		return false, err
	}
	return env.Success, nil
}

// Logout implements domain.AuthAPI.
func (a *AuthClient) Logout(ctx context.Context) error {
	_, err := a.client.do(ctx, http.MethodPost, "/auth/logout", nil, "Logout failed")
	return err
}

// normalizeAuthPayload resolves the user-versus-rider wire quirk once, at
// the transport boundary.
func normalizeAuthPayload(env *envelope) (*domain.AuthPayload, error) {
	var data authData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}
	user := data.principal()
	if user == nil {
		return nil, &APIError{Message: "Authentication response carried no user"}
	}
	if data.Token == "" {
		return nil, &APIError{Message: "Authentication response carried no token"}
	}
	return &domain.AuthPayload{User: user, Token: data.Token}, nil
}
