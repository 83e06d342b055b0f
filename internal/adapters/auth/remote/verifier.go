// Package remote verifica tokens contra el servicio de identidad externo.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rural-health-core/internal/platform/httpclient"
	"rural-health-core/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("identity service not configured")
	ErrUnauthorized  = errors.New("token rejected")
	ErrUpstream      = errors.New("identity service error")
)

const verifyPath = "/v1/tokens/verify"

type Config struct {
	BaseURL string
	APIKey  string

	// APIKeyHeader por defecto "X-Api-Key".
	APIKeyHeader string
	Timeout      time.Duration

	Transport http.RoundTripper
}

// Verifier implementa auth.AuthVerifier.
type Verifier struct {
	client *httpclient.Client
}

func NewVerifier(cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c, err := httpclient.New(httpclient.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   timeout,
		Headers:   map[string]string{header: strings.TrimSpace(cfg.APIKey)},
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, err
	}
	return &Verifier{client: c}, nil
}

type verifyResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	var out verifyResponse
	err := v.client.DoJSON(ctx, http.MethodPost, verifyPath,
		map[string]string{"Authorization": "Bearer " + token},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		switch httpclient.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			return auth.Claims{}, ErrUnauthorized
		default:
			return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}

	uid := strings.TrimSpace(out.UserID)
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: response missing user_id", ErrUpstream)
	}
	return auth.Claims{UserID: uid, Email: strings.TrimSpace(out.Email)}, nil
}
