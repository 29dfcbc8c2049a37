// Package oidc implements administrator single sign-on against an
// OIDC identity provider. Role and permission claims are mapped into
// the admin profile with configurable JMESPath expressions, since
// identity providers disagree about where they put them.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/ticketlab/gatehouse/internal/domain/principal"
	apperrors "github.com/ticketlab/gatehouse/internal/errors"
	"github.com/ticketlab/gatehouse/internal/ports"
	"golang.org/x/oauth2"
)

// ProviderConfig holds configuration for the admin SSO provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	DiscoveryURL string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client

	// RoleExpr is a JMESPath expression evaluated against the merged
	// claim set to produce the admin role string.
	RoleExpr string
	// PermissionsExpr optionally produces a list of permission tokens.
	// When empty, the role's baseline grant is used.
	PermissionsExpr string
}

// Provider implements ports.AdminSSOProvider using OIDC/OAuth2.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client

	oidcProvider *gooidc.Provider
	verifier     *gooidc.IDTokenVerifier

	roleExpr  jmespath.JMESPath
	permsExpr jmespath.JMESPath
}

var _ ports.AdminSSOProvider = (*Provider)(nil)

// NewProvider creates a new admin SSO provider. It performs the OIDC
// discovery fetch and compiles the claim-mapping expressions up front
// so configuration mistakes surface at startup.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if cfg.RoleExpr == "" {
		return nil, errors.New("role claim expression is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	p := &Provider{httpClient: httpClient}

	roleExpr, err := jmespath.Compile(cfg.RoleExpr)
	if err != nil {
		return nil, fmt.Errorf("compile role expression: %w", err)
	}
	p.roleExpr = roleExpr

	if cfg.PermissionsExpr != "" {
		permsExpr, err := jmespath.Compile(cfg.PermissionsExpr)
		if err != nil {
			return nil, fmt.Errorf("compile permissions expression: %w", err)
		}
		p.permsExpr = permsExpr
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
	issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	p.oidcProvider = op
	p.verifier = op.Verifier(&gooidc.Config{ClientID: cfg.ClientID})

	scopes := strings.Fields(cfg.Scope)
	if len(scopes) == 0 {
		scopes = []string{gooidc.ScopeOpenID, "profile", "email"}
	}
	p.config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       scopes,
		Endpoint:     op.Endpoint(),
	}

	return p, nil
}

// Begin starts the login flow with cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, in ports.SSOBeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}

	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	// redirect_uri must match the registered RedirectURL exactly, so the
	// caller's redirect target travels in the engine's own state instead.
	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)

	return authURL, state, nonce, nil
}

// Exchange completes the login flow. The returned profile is an
// administrator document built from the provider's claims; the access
// token doubles as the opaque session token.
func (p *Provider) Exchange(ctx context.Context, in ports.SSOExchangeInput) (ports.LoginResult, error) {
	if in.Code == "" {
		return ports.LoginResult{}, apperrors.MalformedState("authorization code is required")
	}
	if in.State == "" {
		return ports.LoginResult{}, apperrors.MalformedState("state is required")
	}
	if in.Nonce == "" {
		return ports.LoginResult{}, apperrors.MalformedState("nonce is required")
	}

	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return ports.LoginResult{}, apperrors.Wrap(err, apperrors.ErrCodeLoginRejected, "identity provider rejected the login")
	}

	claims, err := p.verifiedClaims(ctx, token, in.Nonce)
	if err != nil {
		return ports.LoginResult{}, err
	}

	// Fill gaps from UserInfo when the ID token is sparse.
	if stringClaim(claims, "email") == "" || stringClaim(claims, "sub") == "" {
		p.mergeUserInfo(ctx, token.AccessToken, claims)
	}

	profile, err := buildAdminProfile(claims, p.roleExpr, p.permsExpr)
	if err != nil {
		return ports.LoginResult{}, err
	}

	return ports.LoginResult{Token: token.AccessToken, Profile: profile}, nil
}

func (p *Provider) verifiedClaims(ctx context.Context, tok *oauth2.Token, expectedNonce string) (map[string]any, error) {
	rawID, err := idTokenFrom(tok)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeIncompleteResponse, "identity provider response was incomplete")
	}

	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeLoginRejected, "could not verify identity token")
	}
	if idTok.Nonce != expectedNonce {
		return nil, apperrors.MalformedState("nonce mismatch")
	}

	claims := map[string]any{}
	if err := idTok.Claims(&claims); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeIncompleteResponse, "could not parse identity token claims")
	}
	return claims, nil
}

// mergeUserInfo fills missing claims from the userinfo endpoint.
// Failures are tolerated; the ID token claims remain authoritative.
func (p *Provider) mergeUserInfo(ctx context.Context, accessToken string, claims map[string]any) {
	ui, err := p.oidcProvider.UserInfo(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		return
	}
	extra := map[string]any{}
	if err := ui.Claims(&extra); err != nil {
		return
	}
	for k, v := range extra {
		if _, exists := claims[k]; !exists {
			claims[k] = v
		}
	}
}

// buildAdminProfile maps a claim set into an administrator document.
// The role expression must yield a known admin role; permissions fall
// back to the role's baseline grant when no expression is configured
// or it yields nothing.
func buildAdminProfile(claims map[string]any, roleExpr, permsExpr jmespath.JMESPath) (json.RawMessage, error) {
	role, err := mapRole(claims, roleExpr)
	if err != nil {
		return nil, err
	}

	rawPerms := mapPermissions(claims, permsExpr)
	var perms []principal.Permission
	if len(rawPerms) == 0 {
		perms = principal.DefaultPermissions(role)
	} else {
		perms = principal.CanonicalizeAll(rawPerms)
	}

	now := time.Now().UTC()
	admin := principal.Administrator{
		ID:          stringClaim(claims, "sub"),
		Email:       stringClaim(claims, "email"),
		FirstName:   stringClaim(claims, "given_name"),
		LastName:    stringClaim(claims, "family_name"),
		Role:        role,
		Permissions: perms,
		IsActive:    true,
		LastLoginAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if admin.ID == "" || admin.Email == "" {
		return nil, apperrors.IncompleteResponse("identity provider did not supply a subject and email")
	}
	if admin.FirstName == "" && admin.LastName == "" {
		admin.FirstName = admin.Email
	}

	raw, err := json.Marshal(admin)
	if err != nil {
		return nil, fmt.Errorf("marshal admin profile: %w", err)
	}
	return raw, nil
}

func mapRole(claims map[string]any, expr jmespath.JMESPath) (principal.AdminRole, error) {
	out, err := expr.Search(claims)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeIncompleteResponse, "role claim mapping failed")
	}
	roleStr, _ := out.(string)
	role := principal.AdminRole(strings.TrimSpace(roleStr))
	if !role.Valid() {
		return "", apperrors.LoginRejected("your account is not authorized for admin access")
	}
	return role, nil
}

func mapPermissions(claims map[string]any, expr jmespath.JMESPath) []string {
	if expr == nil {
		return nil
	}
	out, err := expr.Search(claims)
	if err != nil {
		return nil
	}

	var perms []string
	switch v := out.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				perms = append(perms, s)
			}
		}
	case []string:
		for _, s := range v {
			if s != "" {
				perms = append(perms, s)
			}
		}
	case string:
		if v != "" {
			perms = append(perms, v)
		}
	}
	return perms
}

func stringClaim(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}

// generateRandomString generates a cryptographically secure URL-safe random string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}

// idTokenFrom extracts the id_token from an oauth2 token response.
func idTokenFrom(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	raw := tok.Extra("id_token")
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}
