package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const apiPrefix = "/api/v1"

// API is the part of the storefront API the favorites cache depends on
type API interface {
	Toggle(ctx context.Context, productID uint) (bool, error)
	FavoriteIDs(ctx context.Context) ([]uint, error)
}

// Identity is the caller as reported by the server
type Identity struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Client calls the storefront HTTP API with a bearer token
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for baseURL (e.g. http://localhost:8080).
// httpClient may be nil.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// Toggle flips the favorite and returns the resulting membership
func (c *Client) Toggle(ctx context.Context, productID uint) (bool, error) {
	var resp struct {
		NowFavorited bool `json:"nowFavorited"`
	}
	payload := map[string]uint{"productId": productID}
	if err := c.doRequest(ctx, http.MethodPost, "/favorites/toggle", payload, &resp); err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return resp.NowFavorited, nil
}

// FavoriteIDs returns the caller's favorited product ids
func (c *Client) FavoriteIDs(ctx context.Context) ([]uint, error) {
	var resp struct {
		Data []uint `json:"data"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/favorites/ids", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch favorite ids: %w", err)
	}
	return resp.Data, nil
}

// Me returns the identity behind the token
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var resp struct {
		Data Identity `json:"data"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch identity: %w", err)
	}
	return &resp.Data, nil
}

// Logout revokes the token server side
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// doRequest performs a JSON request and decodes a 2xx body into out
func (c *Client) doRequest(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", ErrTransient, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, kind: kindForStatus(resp.StatusCode)}
		var envelope struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &envelope) == nil {
			apiErr.Code = envelope.Error
			apiErr.Message = envelope.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
