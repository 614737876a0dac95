package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/verikeep/internal/common"
)

// Account mirrors the public account view returned by the server.
type Account struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Status     string     `json:"status"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

type Stats struct {
	TotalAccounts    int64 `json:"total_accounts"`
	VerifiedAccounts int64 `json:"verified_accounts"`
}

type Dashboard struct {
	Account Account `json:"account"`
	Stats   Stats   `json:"stats"`
}

// CodeSent is returned by register and resend-code.
type CodeSent struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	EmailSent bool   `json:"email_sent"`
}

type authResponse struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Logout forgets the token. Tokens are stateless, so the server is not called.
func (c *Client) Logout() {
	c.SetToken("")
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, false, nil)
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*CodeSent, error) {
	var out CodeSent
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail submits the code and stores the returned token.
func (c *Client) VerifyEmail(ctx context.Context, email, code string) (*Account, error) {
	return c.authenticate(ctx, "/api/auth/verify-email", map[string]string{"email": email, "code": code})
}

func (c *Client) ResendCode(ctx context.Context, email string) (*CodeSent, error) {
	var out CodeSent
	if err := c.do(ctx, http.MethodPost, "/api/auth/resend-code", map[string]string{"email": email}, false, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*Account, error) {
	return c.authenticate(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

func (c *Client) Me(ctx context.Context) (*Account, error) {
	var out struct {
		Account Account `json:"account"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, true, &out); err != nil {
		return nil, err
	}
	return &out.Account, nil
}

func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, true, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*Account, error) {
	var out authResponse
	if err := c.do(ctx, http.MethodPost, path, body, false, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out.Account, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, authed bool, out any) error {
	var payload bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&payload).Encode(in); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		token := c.Token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if eb.Message == "" {
			eb.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: eb.Message, Fields: eb.Errors}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
