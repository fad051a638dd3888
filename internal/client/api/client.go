// Package api implements the HTTP client for the cashbook server endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cashbook/cashbook/internal/domain/entity"
)

// ErrUnauthorized is returned when the server rejects the session token.
// Callers treat it uniformly as "force logout".
var ErrUnauthorized = errors.New("unauthorized")

// StatusError is a non-2xx response that is not an auth rejection. The sync
// engine surfaces these as non-fatal warnings.
type StatusError struct {
	StatusCode int
	Msg        string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Msg)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Client talks to the cashbook HTTP/JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Register creates an account and returns the session token.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "/api/register", username, password)
}

// Login authenticates and returns the session token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "/api/login", username, password)
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	resp, err := c.do(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}
	return out.Token, nil
}

// FetchData retrieves the authoritative snapshot for the session.
func (c *Client) FetchData(ctx context.Context, token string) (*entity.UserData, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/data", token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var data entity.UserData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode user data: %w", err)
	}
	data.Normalize()
	return &data, nil
}

// SyncData pushes the whole snapshot to the server.
func (c *Client) SyncData(ctx context.Context, token string, data *entity.UserData) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/sync", token, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		// The server expects the raw token, not a "Bearer " prefixed value.
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	var out struct {
		Msg string `json:"msg"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return &StatusError{StatusCode: resp.StatusCode, Msg: out.Msg}
}
