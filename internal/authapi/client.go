// Package authapi is the gateway's client for the upstream auth service. The
// service itself is an external collaborator: this package only forwards
// credentials and tokens and decodes the responses, it never issues or
// validates tokens.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Authenticator is the slice of the auth service the session layer depends
// on. The HTTP client implements it; tests substitute a stub.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

// Client talks JSON over HTTP to the auth service.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Authenticate exchanges credentials for a role, profile, and token pair.
// A rejected login (bad credentials, disabled account) comes back as a
// response with Success=false, not as an error; errors mean the service
// could not be reached or answered with something unreadable.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*AuthResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})

	start := time.Now()
	log.Printf("[authapi] POST %s/authenticate user=%s", c.cfg.BaseURL, username)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/authenticate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[authapi] authenticate error: %v", err)
		return nil, fmt.Errorf("auth service unreachable: %w", err)
	}
	defer resp.Body.Close()

	var payload AuthResponse
	if err := decodeBody(resp.Body, &payload); err != nil {
		log.Printf("[authapi] authenticate decode error: %v", err)
		return nil, fmt.Errorf("auth service returned an unreadable response: %w", err)
	}

	log.Printf("[authapi] authenticate status=%d success=%t duration=%dms",
		resp.StatusCode, payload.Success, time.Since(start).Milliseconds())

	if !payload.Success && payload.Message == "" {
		payload.Message = fmt.Sprintf("authentication failed (status %d)", resp.StatusCode)
	}
	return &payload, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"refresh_token": refreshToken,
	})

	log.Printf("[authapi] POST %s/refresh", c.cfg.BaseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/refresh", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[authapi] refresh error: %v", err)
		return nil, fmt.Errorf("auth service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[authapi] refresh rejected status=%d", resp.StatusCode)
		return nil, fmt.Errorf("refresh rejected (status %d)", resp.StatusCode)
	}

	var payload RefreshResponse
	if err := decodeBody(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("auth service returned an unreadable response: %w", err)
	}
	return &payload, nil
}

// Logout tells the auth service to invalidate the token server-side. Best
// effort: callers proceed with local teardown whatever happens here.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[authapi] logout error: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		log.Printf("[authapi] logout rejected status=%d", resp.StatusCode)
		return fmt.Errorf("logout rejected (status %d)", resp.StatusCode)
	}
	return nil
}

// decodeBody reads at most 1MB of the response, which is far beyond any
// legitimate auth payload.
func decodeBody(r io.Reader, v any) error {
	return json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(v)
}
