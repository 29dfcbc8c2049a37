// Package authapi implements the authenticator ports against an
// upstream platform API over HTTP.
package authapi

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

	apperrors "github.com/ticketlab/gatehouse/internal/errors"
	"github.com/ticketlab/gatehouse/internal/ports"
)

const maxResponseBytes = 1 << 20

// Config captures the upstream API connection settings.
type Config struct {
	BaseURL string
	APIKey  string        // optional, sent as a bearer token when set
	Timeout time.Duration // default 10s when zero
	Client  *http.Client  // optional, defaults to a client with Timeout
}

// Client talks to the upstream platform's auth endpoints. It implements
// both ports.CustomerAuthenticator and ports.AdminAuthenticator.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var (
	_ ports.CustomerAuthenticator = (*Client)(nil)
	_ ports.AdminAuthenticator    = (*Client)(nil)
)

// NewClient builds an upstream auth API client. Callers should pass a
// validated config.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("auth api base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  hc,
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Profile json.RawMessage `json:"profile"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Login authenticates a customer against POST /auth/login.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (ports.LoginResult, error) {
	return c.authenticate(ctx, "/auth/login", loginRequest{
		Email:    creds.Email,
		Password: creds.Password,
	})
}

// Register creates a customer account via POST /auth/register.
func (c *Client) Register(ctx context.Context, reg ports.Registration) (ports.LoginResult, error) {
	return c.authenticate(ctx, "/auth/register", registerRequest{
		Email:     reg.Email,
		Password:  reg.Password,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Phone:     reg.Phone,
	})
}

// AdminLogin authenticates an administrator against POST /admin/auth/login.
// Exposed through AsAdmin so one client can serve both ports.
func (c *Client) adminLogin(ctx context.Context, creds ports.Credentials) (ports.LoginResult, error) {
	return c.authenticate(ctx, "/admin/auth/login", loginRequest{
		Email:    creds.Email,
		Password: creds.Password,
	})
}

// AsAdmin returns a view of the client that satisfies
// ports.AdminAuthenticator using the admin login endpoint.
func (c *Client) AsAdmin() ports.AdminAuthenticator {
	return adminView{c}
}

type adminView struct{ c *Client }

func (v adminView) Login(ctx context.Context, creds ports.Credentials) (ports.LoginResult, error) {
	return v.c.adminLogin(ctx, creds)
}

func (c *Client) authenticate(ctx context.Context, path string, payload any) (ports.LoginResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ports.LoginResult{}, apperrors.Wrap(ctx.Err(), apperrors.ErrCodeTimeout, "auth request aborted")
		}
		return ports.LoginResult{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "auth service unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("read auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.LoginResult{}, c.decodeError(resp.StatusCode, raw)
	}

	var out loginResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return ports.LoginResult{}, apperrors.IncompleteResponse("auth service returned an unreadable response")
	}
	return ports.LoginResult{Token: out.Token, Profile: out.Profile}, nil
}

// decodeError maps upstream failure payloads into the engine taxonomy.
// 401/403 become login rejections with the upstream message when one is
// given; everything else is surfaced as an internal failure.
func (c *Client) decodeError(status int, raw []byte) error {
	var er errorResponse
	_ = json.Unmarshal(raw, &er)

	msg := strings.TrimSpace(er.Message)
	if msg == "" {
		msg = strings.TrimSpace(er.Error)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		if msg == "" {
			msg = "invalid email or password"
		}
		return apperrors.LoginRejected(msg)
	case status == http.StatusConflict:
		if msg == "" {
			msg = "an account with this email already exists"
		}
		return apperrors.LoginRejected(msg)
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		if msg == "" {
			msg = "the auth service rejected the request"
		}
		return apperrors.Validation(msg)
	default:
		if msg == "" {
			msg = fmt.Sprintf("auth service returned status %d", status)
		}
		return apperrors.Internal(msg)
	}
}
