package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode selects which credential backends the engine is wired with.
type AuthMode string

const (
	// AuthModeLocal verifies accounts against the local Postgres tables.
	AuthModeLocal AuthMode = "local"
	// AuthModeRemote delegates to an upstream platform API over HTTP.
	AuthModeRemote AuthMode = "remote"
	// AuthModeMock uses config-driven identities (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "local", "remote", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: local, remote, mock)", v)
	}
}

// RemoteAuthConfig contains upstream platform API configuration.
// Used when AUTH_MODE=remote.
type RemoteAuthConfig struct {
	BaseURL string        `env:"BASE_URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// SSOConfig contains OIDC single sign-on configuration for
// administrator logins. SSO is enabled in any auth mode when
// DiscoveryURL is set.
type SSOConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"gatehouse"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/admin/sso/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`

	// RoleExpr and PermissionsExpr are JMESPath expressions mapping
	// provider claims onto the admin role and permission grants.
	RoleExpr        string `env:"ROLE_EXPR"        envDefault:"gatehouse_role"`
	PermissionsExpr string `env:"PERMISSIONS_EXPR"`
}

// Enabled reports whether SSO is configured.
func (c SSOConfig) Enabled() bool {
	return c.DiscoveryURL != ""
}

// DevAuthConfig controls the mock identities used when AUTH_MODE=mock.
type DevAuthConfig struct {
	CustomerEmail string `env:"CUSTOMER_EMAIL" envDefault:"customer@example.com"`
	AdminEmail    string `env:"ADMIN_EMAIL"    envDefault:"admin@example.com"`
	Password      string `env:"PASSWORD"       envDefault:"dev"`
	AdminRole     string `env:"ADMIN_ROLE"     envDefault:"super_admin"`
}

// SlotConfig controls persisted session slots in Redis.
type SlotConfig struct {
	// Prefix namespaces the slot keys.
	Prefix string `env:"PREFIX" envDefault:"gatehouse:slot:"`
	// TTL bounds how long a persisted session may be restored.
	// Zero means slots never expire.
	TTL time.Duration `env:"TTL" envDefault:"720h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which credential backends to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"local"`

	// Remote configuration (used when Mode=remote).
	Remote RemoteAuthConfig `envPrefix:"REMOTE_AUTH_"`

	// SSO configuration for admin single sign-on (any mode).
	SSO SSOConfig `envPrefix:"SSO_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// Slot configuration for persisted sessions.
	Slots SlotConfig `envPrefix:"SESSION_SLOT_"`
}

// Sanitize applies guardrails to authentication configuration values.
func (c *AuthConfig) Sanitize() {
	c.Remote.BaseURL = strings.TrimSpace(c.Remote.BaseURL)
	if c.Remote.Timeout <= 0 {
		c.Remote.Timeout = 10 * time.Second
	}
	if c.Slots.Prefix == "" {
		c.Slots.Prefix = "gatehouse:slot:"
	}
	if c.Slots.TTL < 0 {
		c.Slots.TTL = 0
	}
}

// Validate reports configuration mistakes that cannot be defaulted away.
func (c *AuthConfig) Validate() error {
	if c.Mode == AuthModeRemote && c.Remote.BaseURL == "" {
		return fmt.Errorf("REMOTE_AUTH_BASE_URL is required when AUTH_MODE=remote")
	}
	if c.SSO.Enabled() && c.SSO.ClientSecret == "" {
		return fmt.Errorf("SSO_CLIENT_SECRET is required when SSO_DISCOVERY_URL is set")
	}
	return nil
}
