package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/RakhaaNZ/CompVerse-app/internal/models"
)

// TokenPair is the credential pair issued by the auth endpoints.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SignUp creates an account.
func (c *Client) SignUp(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	body := map[string]string{
		"first_name": firstName,
		"last_name":  lastName,
		"email":      email,
		"password":   password,
	}
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/auth/register/", nil, body, &user); err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	return &user, nil
}

// ObtainToken exchanges credentials for a token pair.
func (c *Client) ObtainToken(ctx context.Context, email, password string) (*TokenPair, error) {
	body := map[string]string{"email": email, "password": password}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/token/", nil, body, &pair); err != nil {
		return nil, fmt.Errorf("failed to obtain token: %w", err)
	}
	return &pair, nil
}

// RefreshToken exchanges a refresh token for a fresh pair.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (*TokenPair, error) {
	body := map[string]string{"refresh": refresh}
	var pair TokenPair
	if err := c.do(ctx, http.MethodPost, "/token/refresh/", nil, body, &pair); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return &pair, nil
}
