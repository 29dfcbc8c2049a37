// Package devauth provides config-driven mock authenticators for local
// development. Logins succeed against a single configured customer and
// a single configured administrator; no database or upstream API is
// involved.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ticketlab/gatehouse/internal/domain/principal"
	apperrors "github.com/ticketlab/gatehouse/internal/errors"
	"github.com/ticketlab/gatehouse/internal/ports"
)

// Config controls the dev auth provider behavior. Role defaults to
// super_admin and Password to "dev" when left empty.
type Config struct {
	CustomerEmail string
	AdminEmail    string
	Password      string
	AdminRole     string
	FirstName     string
	LastName      string
}

// Provider implements both authenticator ports for development use.
type Provider struct {
	customerEmail string
	adminEmail    string
	password      string
	adminRole     principal.AdminRole
	firstName     string
	lastName      string
}

var (
	_ ports.CustomerAuthenticator = (*Provider)(nil)
	_ ports.AdminAuthenticator    = (*Provider)(nil)
)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.CustomerEmail == "" && cfg.AdminEmail == "" {
		return nil, errors.New("dev auth: at least one of customer or admin email is required")
	}

	role := principal.RoleSuperAdmin
	if cfg.AdminRole != "" {
		role = principal.AdminRole(cfg.AdminRole)
		if !role.Valid() {
			return nil, fmt.Errorf("dev auth: unknown admin role %q", cfg.AdminRole)
		}
	}

	password := cfg.Password
	if password == "" {
		password = "dev"
	}

	firstName := cfg.FirstName
	if firstName == "" {
		firstName = "Dev"
	}

	return &Provider{
		customerEmail: cfg.CustomerEmail,
		adminEmail:    cfg.AdminEmail,
		password:      password,
		adminRole:     role,
		firstName:     firstName,
		lastName:      cfg.LastName,
	}, nil
}

// Login verifies credentials against the configured dev customer.
func (p *Provider) Login(_ context.Context, creds ports.Credentials) (ports.LoginResult, error) {
	if p.customerEmail == "" || creds.Email != p.customerEmail || creds.Password != p.password {
		return ports.LoginResult{}, apperrors.LoginRejected("invalid email or password")
	}
	return p.customerResult(creds.Email)
}

// Register accepts any registration and issues a session for it.
func (p *Provider) Register(_ context.Context, reg ports.Registration) (ports.LoginResult, error) {
	if reg.Email == "" {
		return ports.LoginResult{}, apperrors.ValidationField("email", "email is required")
	}
	return p.customerResult(reg.Email)
}

// AsAdmin returns a view of the provider that satisfies
// ports.AdminAuthenticator against the configured dev administrator.
func (p *Provider) AsAdmin() ports.AdminAuthenticator {
	return adminView{p}
}

type adminView struct{ p *Provider }

func (v adminView) Login(_ context.Context, creds ports.Credentials) (ports.LoginResult, error) {
	p := v.p
	if p.adminEmail == "" || creds.Email != p.adminEmail || creds.Password != p.password {
		return ports.LoginResult{}, apperrors.LoginRejected("invalid email or password")
	}

	now := time.Now().UTC()
	profile, err := json.Marshal(principal.Administrator{
		ID:          "dev-admin",
		Email:       p.adminEmail,
		FirstName:   p.firstName,
		LastName:    p.lastName,
		Role:        p.adminRole,
		Permissions: principal.DefaultPermissions(p.adminRole),
		IsActive:    true,
		LastLoginAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("marshal dev admin profile: %w", err)
	}
	return newResult(profile)
}

func (p *Provider) customerResult(email string) (ports.LoginResult, error) {
	now := time.Now().UTC()
	profile, err := json.Marshal(principal.Customer{
		ID:        "dev-customer",
		Email:     email,
		FirstName: p.firstName,
		LastName:  p.lastName,
		Role:      "user",
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("marshal dev customer profile: %w", err)
	}
	return newResult(profile)
}

func newResult(profile []byte) (ports.LoginResult, error) {
	token, err := randomString(24)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("generate token: %w", err)
	}
	return ports.LoginResult{Token: token, Profile: profile}, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	bLen := (n*3 + 3) / 4
	b := make([]byte, bLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
