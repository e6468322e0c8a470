package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrNotConfigured = errors.New("auth endpoint not configured")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// User é a identidade resolvida pelo provedor hospedado.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verifier troca um bearer token por uma identidade de usuário.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// Client fala com o endpoint de identidade hospedado (GET /auth/v1/user).
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

// Verify valida o token contra o provedor. Config ausente é erro de
// configuração (500), não de autenticação.
func (c *Client) Verify(ctx context.Context, token string) (*User, error) {
	if c.BaseURL == "" || c.APIKey == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.APIKey)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	if res.StatusCode >= 300 {
		return nil, fmt.Errorf("auth endpoint http %d", res.StatusCode)
	}

	var u User
	if err := json.NewDecoder(res.Body).Decode(&u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, ErrInvalidToken
	}
	return &u, nil
}
