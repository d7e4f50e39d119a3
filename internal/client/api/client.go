// Package api is the HTTP client for the auth server's JSON API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
	"github.com/dmitrijs2005/bookmate-auth/internal/netx"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// LoginResult is the session token returned by a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity is what the server reads back from a bearer token.
type Identity struct {
	Subject   string    `json:"subject"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type message struct {
	Message string `json:"message"`
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Register creates an account and returns the server's confirmation message.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	var out message
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", credentials{email, password}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// ConfirmEmail confirms the account's email address.
func (c *Client) ConfirmEmail(ctx context.Context, email string) (string, error) {
	var out message
	path := "/api/auth/confirm-email?" + url.Values{"email": {email}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", credentials{email, password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the identity carried by token.
func (c *Client) Me(ctx context.Context, token string) (*Identity, error) {
	var out Identity
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if netx.IsUnavailable(err) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var m message
		if json.Unmarshal(raw, &m) == nil {
			apiErr.Message = m.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
