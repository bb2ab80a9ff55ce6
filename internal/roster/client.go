package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotConfigured is returned when no roster base URL is set.
var ErrNotConfigured = errors.New("roster provider is not configured")

// Employee is a user record as published by the roster provider.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// Project is a project record as published by the roster provider.
type Project struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Code   string           `json:"code"`
	Budget *decimal.Decimal `json:"budget"`
}

// Client reads employees and projects from the external directory over HTTP.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		BaseURL:    baseURL,
		Token:      token,
	}
}

func (c *Client) Employees(ctx context.Context) ([]Employee, error) {
	var resp struct {
		Data []Employee `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/users", &resp); err != nil {
		return nil, fmt.Errorf("fetch roster users: %w", err)
	}
	return resp.Data, nil
}

func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var resp struct {
		Data []Project `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/projects", &resp); err != nil {
		return nil, fmt.Errorf("fetch roster projects: %w", err)
	}
	return resp.Data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, result any) error {
	if c.BaseURL == "" {
		return ErrNotConfigured
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("roster api error: status=%d body=%s", resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
