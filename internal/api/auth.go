package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// Auth endpoints.
const (
	SessionPath       = "auth"
	LoginPath         = "auth/login"
	SignupPath        = "auth/signup"
	RequestResetPath  = "auth/requestResetPassword"
	resetPasswordPath = "auth/resetPassword/"
)

// Login starts a session for the given credentials. On success the session
// cookie is kept by the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	if err := c.Post(ctx, LoginPath, body, nil); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	return nil
}

// Signup registers a new account from the registration form values.
func (c *Client) Signup(ctx context.Context, values map[string]any) error {
	if err := c.Post(ctx, SignupPath, values, nil); err != nil {
		return fmt.Errorf("failed to sign up: %w", err)
	}
	return nil
}

// RequestPasswordReset asks the server to mail a reset link to email.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := c.Post(ctx, RequestResetPath, body, nil); err != nil {
		return fmt.Errorf("failed to request password reset: %w", err)
	}
	return nil
}

// ResetPassword sets a new password using the token from the reset link.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"password": password}
	if err := c.Post(ctx, ResetPasswordPath(token), body, nil); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// ResetPasswordPath is the endpoint for one reset token.
func ResetPasswordPath(token string) string {
	return resetPasswordPath + url.PathEscape(token)
}

// CheckSession reports whether the client holds a live session. Any non-2xx
// answer means "not authenticated"; only transport failures are errors.
func (c *Client) CheckSession(ctx context.Context) (bool, error) {
	err := c.Post(ctx, SessionPath, nil, nil)
	if err == nil {
		return true, nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check session: %w", err)
}
