// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ticketlab/gatehouse/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SlotStore             = (*MemorySlotStore)(nil)
	_ ports.CustomerAuthenticator = (*ScriptedCustomerAuthenticator)(nil)
	_ ports.AdminAuthenticator    = (*ScriptedAdminAuthenticator)(nil)
	_ ports.AdminSSOProvider      = (*MockSSOProvider)(nil)
)

// MemorySlotStore is an in-memory slot store for unit tests. It is safe
// for concurrent use and can simulate failures per operation.
type MemorySlotStore struct {
	mu    sync.Mutex
	slots map[ports.SlotKind]ports.Slot

	// Optional failure injection.
	ReadErr  error
	WriteErr error
	ClearErr error
}

// NewMemorySlotStore creates an empty in-memory slot store.
func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{slots: make(map[ports.SlotKind]ports.Slot)}
}

func (m *MemorySlotStore) Read(_ context.Context, kind ports.SlotKind) (ports.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return ports.Slot{}, m.ReadErr
	}
	slot, ok := m.slots[kind]
	if !ok {
		return ports.Slot{}, ports.ErrSlotNotFound
	}
	return slot, nil
}

func (m *MemorySlotStore) Write(_ context.Context, kind ports.SlotKind, slot ports.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	if slot.Token == "" {
		return errors.New("slot token cannot be empty")
	}
	m.slots[kind] = slot
	return nil
}

func (m *MemorySlotStore) Clear(_ context.Context, kind ports.SlotKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	delete(m.slots, kind)
	return nil
}

// Has reports whether a slot is currently stored for the kind.
func (m *MemorySlotStore) Has(kind ports.SlotKind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.slots[kind]
	return ok
}

// Seed stores a slot directly, bypassing validation.
func (m *MemorySlotStore) Seed(kind ports.SlotKind, slot ports.Slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[kind] = slot
}

// ScriptedCustomerAuthenticator returns canned results for customer
// login and registration. Set the Func fields for call-specific
// behavior; otherwise Result/Err are returned as-is.
type ScriptedCustomerAuthenticator struct {
	LoginFunc    func(ctx context.Context, creds ports.Credentials) (ports.LoginResult, error)
	RegisterFunc func(ctx context.Context, reg ports.Registration) (ports.LoginResult, error)

	Result ports.LoginResult
	Err    error
}

func (s *ScriptedCustomerAuthenticator) Login(ctx context.Context, creds ports.Credentials) (ports.LoginResult, error) {
	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, creds)
	}
	return s.Result, s.Err
}

func (s *ScriptedCustomerAuthenticator) Register(ctx context.Context, reg ports.Registration) (ports.LoginResult, error) {
	if s.RegisterFunc != nil {
		return s.RegisterFunc(ctx, reg)
	}
	return s.Result, s.Err
}

// ScriptedAdminAuthenticator returns canned results for administrator
// login.
type ScriptedAdminAuthenticator struct {
	LoginFunc func(ctx context.Context, creds ports.Credentials) (ports.LoginResult, error)

	Result ports.LoginResult
	Err    error
}

func (s *ScriptedAdminAuthenticator) Login(ctx context.Context, creds ports.Credentials) (ports.LoginResult, error) {
	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, creds)
	}
	return s.Result, s.Err
}

// MockSSOProvider simulates an identity provider with deterministic
// state/nonce handling.
type MockSSOProvider struct {
	BeginFunc    func(ctx context.Context, in ports.SSOBeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.SSOExchangeInput) (ports.LoginResult, error)

	AuthURL string
	Result  ports.LoginResult
	Err     error

	callCount int
}

func (m *MockSSOProvider) Begin(ctx context.Context, in ports.SSOBeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.callCount++
	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-idp/auth"
	}
	state := fmt.Sprintf("state-%d", m.callCount)
	nonce := fmt.Sprintf("nonce-%d", m.callCount)
	return authURL, state, nonce, nil
}

func (m *MockSSOProvider) Exchange(ctx context.Context, in ports.SSOExchangeInput) (ports.LoginResult, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	return m.Result, m.Err
}
