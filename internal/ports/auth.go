// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"
	"encoding/json"
)

// SlotKind selects which persisted session slot an operation targets.
// Each kind has exactly one slot; a customer and an administrator slot
// can coexist on the same device.
type SlotKind string

const (
	SlotCustomer      SlotKind = "customer"
	SlotAdministrator SlotKind = "administrator"
)

// ErrSlotNotFound is returned by SlotStore.Read when a kind has no
// persisted slot.
var ErrSlotNotFound error = slotNotFoundError{}

type slotNotFoundError struct{}

func (slotNotFoundError) Error() string { return "slot not found" }

// Slot is a persisted session: the opaque bearer token plus the raw
// profile JSON exactly as the credential backend issued it. The profile
// is revalidated on every read, never trusted.
type Slot struct {
	Token   string
	Profile []byte
}

// SlotStore persists one slot per kind. Writes replace the whole slot;
// Clear removes both halves atomically. Read returns ErrSlotNotFound
// (from the adapter) when the kind has no slot.
type SlotStore interface {
	Read(ctx context.Context, kind SlotKind) (Slot, error)
	Write(ctx context.Context, kind SlotKind, slot Slot) error
	Clear(ctx context.Context, kind SlotKind) error
}

// Credentials carries an email/password login attempt.
type Credentials struct {
	Email    string
	Password string
}

// Registration carries inputs for creating a customer account.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// LoginResult is what a credential backend returns on success. Profile
// is raw JSON that the engine validates into a typed principal.
type LoginResult struct {
	Token   string
	Profile json.RawMessage
}

// CustomerAuthenticator verifies storefront customers against a
// credential backend (local database or upstream platform API).
type CustomerAuthenticator interface {
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
	Register(ctx context.Context, reg Registration) (LoginResult, error)
}

// AdminAuthenticator verifies back-office administrators.
type AdminAuthenticator interface {
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
}

// SSOBeginInput carries inputs for initiating an admin SSO flow.
type SSOBeginInput struct {
	RedirectURL string
}

// SSOExchangeInput groups parameters for the code/token exchange.
type SSOExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AdminSSOProvider initiates and completes administrator single sign-on
// against an identity provider.
type AdminSSOProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in SSOBeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the login result.
	Exchange(ctx context.Context, in SSOExchangeInput) (LoginResult, error)
}
