package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ashendes/restaurant-admin/internal/models"
)

// Login exchanges credentials for a token; it does not touch any session
func (c *Client) Login(ctx context.Context, creds models.LoginRequest) (*models.LoginResponse, error) {
	body, err := c.send(ctx, call{
		method:   http.MethodPost,
		resource: "auth",
		path:     "/auth/login",
		body:     creds,
		public:   true,
	})
	if err != nil {
		return nil, err
	}

	var resp models.LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse login response: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login response carries no token")
	}
	return &resp, nil
}

// Logout tells the API the token is no longer in use
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.send(ctx, get("auth", "/auth/logout"))
	return err
}

// Me returns the authenticated user
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, get("auth", "/auth/me"), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateDetails changes the account details
func (c *Client) UpdateDetails(ctx context.Context, req models.UpdateDetailsRequest) (*models.User, error) {
	var user models.User
	err := c.do(ctx, call{method: http.MethodPut, resource: "auth", path: "/auth/updatedetails", body: req}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePassword changes the account password
func (c *Client) UpdatePassword(ctx context.Context, req models.UpdatePasswordRequest) error {
	_, err := c.send(ctx, call{method: http.MethodPut, resource: "auth", path: "/auth/updatepassword", body: req})
	return err
}

// ForgotPassword requests a reset email
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	_, err := c.send(ctx, call{
		method:   http.MethodPost,
		resource: "auth",
		path:     "/auth/forgotpassword",
		body:     map[string]string{"email": email},
		public:   true,
	})
	return err
}

// ResetPassword sets a new password using the emailed reset token
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	_, err := c.send(ctx, call{
		method:   http.MethodPut,
		resource: "auth",
		path:     "/auth/resetpassword/" + url.PathEscape(resetToken),
		body:     map[string]string{"password": password},
		public:   true,
	})
	return err
}
