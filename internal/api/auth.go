package api

import (
	"context"
	"net/http"

	"github.com/spec-kit/dealroom-client/internal/domain"
	"github.com/spec-kit/dealroom-client/pkg/util"
)

// AuthAPI talks to the auth collaborator. Login and register are
// unauthenticated, so this rides on a client without a token source.
type AuthAPI struct {
	client *Client
}

// NewAuthAPI constructs the auth collaborator client.
func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. Any rejection, whatever
// the status, surfaces as an auth failure with the server's message when
// one is provided.
func (a *AuthAPI) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	var resp loginResponse
	if err := a.client.do(ctx, http.MethodPost, "/auth/login", creds, &resp); err != nil {
		if util.IsCode(err, util.CodeNetworkError) {
			return "", err
		}
		return "", util.NewAuthError(util.ToClientError(err).Message)
	}
	if resp.Token == "" {
		return "", util.NewAuthError("login failed: backend returned no token")
	}
	return resp.Token, nil
}

type registerRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// Register creates an account with the given role.
func (a *AuthAPI) Register(ctx context.Context, creds domain.Credentials, role domain.Role) error {
	req := registerRequest{Username: creds.Username, Password: creds.Password, Role: role}
	return a.client.do(ctx, http.MethodPost, "/auth/register", req, nil)
}
