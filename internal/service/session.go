package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ticketlab/gatehouse/internal/domain/principal"
	apperrors "github.com/ticketlab/gatehouse/internal/errors"
	"github.com/ticketlab/gatehouse/internal/observability/statsd"
	"github.com/ticketlab/gatehouse/internal/ports"
)

// State names the session engine's lifecycle phase.
type State string

const (
	StateInitializing    State = "initializing"
	StateUnauthenticated State = "unauthenticated"
	StateCustomer        State = "customer_session"
	StateAdmin           State = "admin_session"
)

// Snapshot is the engine's published view of the current session. It is
// immutable once published; subscribers receive a fresh value on every
// transition.
type Snapshot struct {
	State           State
	Principal       principal.Principal
	IsAuthenticated bool
	IsAdmin         bool
	IsLoading       bool
	Error           string
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Slots     ports.SlotStore
	Customers ports.CustomerAuthenticator
	Admins    ports.AdminAuthenticator
	SSO       ports.AdminSSOProvider
	Logger    *slog.Logger
	Metrics   statsd.Sink
}

// SessionService is the session and authorization engine. It holds at
// most one active principal (a customer or an administrator, never
// both), persists sessions through the slot store, and publishes a
// snapshot to subscribers synchronously on every transition.
//
// Every transition bumps an attempt counter; a login response that
// arrives after a newer transition has started is discarded silently so
// a slow backend can never clobber fresher state.
type SessionService struct {
	slots     ports.SlotStore
	customers ports.CustomerAuthenticator
	admins    ports.AdminAuthenticator
	sso       ports.AdminSSOProvider
	logger    *slog.Logger
	metrics   statsd.Sink

	mu       sync.Mutex
	state    State
	customer *principal.Customer
	admin    *principal.Administrator
	loading  bool
	errMsg   string
	attempt  uint64
	subs     []subscriber
}

type subscriber struct {
	id uuid.UUID
	fn func(Snapshot)
}

// NewSessionService constructs a session engine in the initializing
// state. Call Restore to settle it before serving traffic.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		slots:     opts.Slots,
		customers: opts.Customers,
		admins:    opts.Admins,
		sso:       opts.SSO,
		logger:    logger,
		metrics:   opts.Metrics,
		state:     StateInitializing,
		loading:   true,
	}
}

// Snapshot returns the currently published session view.
func (s *SessionService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive every future snapshot, invoked
// synchronously in subscription order. The current snapshot is
// delivered immediately. The returned cancel function removes the
// subscription and is safe to call more than once.
func (s *SessionService) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := uuid.New()
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Restore settles the engine from persisted slots. The administrator
// slot is tried first and wins when it validates; otherwise the
// customer slot is tried. A slot that fails validation is purged and
// skipped. Restore never returns an error for malformed state; that is
// recovered locally.
func (s *SessionService) Restore(ctx context.Context) {
	s.mu.Lock()
	s.attempt++
	s.state = StateInitializing
	s.loading = true
	s.mu.Unlock()

	if admin := s.restoreAdmin(ctx); admin != nil {
		s.mu.Lock()
		s.admin = admin
		s.customer = nil
		s.state = StateAdmin
		s.loading = false
		s.errMsg = ""
		s.publishLocked()
		s.count("session.restore", map[string]string{"result": "adopted", "kind": "administrator"})
		return
	}

	if customer := s.restoreCustomer(ctx); customer != nil {
		s.mu.Lock()
		s.customer = customer
		s.admin = nil
		s.state = StateCustomer
		s.loading = false
		s.errMsg = ""
		s.publishLocked()
		s.count("session.restore", map[string]string{"result": "adopted", "kind": "customer"})
		return
	}

	s.mu.Lock()
	s.state = StateUnauthenticated
	s.loading = false
	s.errMsg = ""
	s.publishLocked()
	s.count("session.restore", map[string]string{"result": "empty"})
}

func (s *SessionService) restoreAdmin(ctx context.Context) *principal.Administrator {
	slot, err := s.slots.Read(ctx, ports.SlotAdministrator)
	if err != nil {
		if !errors.Is(err, ports.ErrSlotNotFound) {
			s.logger.WarnContext(ctx, "administrator slot read failed", "error", err)
		}
		return nil
	}
	admin := principal.ValidateAdministrator(slot.Profile)
	if admin == nil {
		s.purgeMalformed(ctx, ports.SlotAdministrator)
		return nil
	}
	if !admin.IsActive {
		s.logger.WarnContext(ctx, "restored administrator is marked inactive", "admin_id", admin.ID)
	}
	return admin
}

func (s *SessionService) restoreCustomer(ctx context.Context) *principal.Customer {
	slot, err := s.slots.Read(ctx, ports.SlotCustomer)
	if err != nil {
		if !errors.Is(err, ports.ErrSlotNotFound) {
			s.logger.WarnContext(ctx, "customer slot read failed", "error", err)
		}
		return nil
	}
	customer := principal.ValidateCustomer(slot.Profile)
	if customer == nil {
		s.purgeMalformed(ctx, ports.SlotCustomer)
		return nil
	}
	return customer
}

// purgeMalformed removes a slot whose profile failed validation so the
// next restore does not trip over it again.
func (s *SessionService) purgeMalformed(ctx context.Context, kind ports.SlotKind) {
	s.logger.WarnContext(ctx, "purging malformed session slot", "kind", string(kind))
	s.count("session.restore", map[string]string{"result": "malformed", "kind": string(kind)})
	if err := s.slots.Clear(ctx, kind); err != nil {
		s.logger.ErrorContext(ctx, "failed to purge malformed slot", "kind", string(kind), "error", err)
	}
}

// Login authenticates a customer. On rejection the prior session state
// is untouched, the snapshot error is set, and a descriptive error is
// returned.
func (s *SessionService) Login(ctx context.Context, creds ports.Credentials) error {
	attempt := s.beginAttempt()
	start := time.Now()

	result, err := s.customers.Login(ctx, creds)
	s.timing("session.login.duration", time.Since(start), map[string]string{"kind": "customer"})

	return s.adoptCustomer(ctx, attempt, result, err)
}

// Register creates a customer account and adopts the resulting session.
func (s *SessionService) Register(ctx context.Context, reg ports.Registration) error {
	attempt := s.beginAttempt()

	result, err := s.customers.Register(ctx, reg)
	return s.adoptCustomer(ctx, attempt, result, err)
}

// AdminLogin authenticates an administrator. On success the in-memory
// customer is cleared but the customer slot stays persisted, so the
// customer session survives on this shared device after the
// administrator logs out and the engine restarts.
func (s *SessionService) AdminLogin(ctx context.Context, creds ports.Credentials) error {
	attempt := s.beginAttempt()
	start := time.Now()

	result, err := s.admins.Login(ctx, creds)
	s.timing("session.login.duration", time.Since(start), map[string]string{"kind": "administrator"})

	return s.adoptAdmin(ctx, attempt, result, err)
}

// BeginAdminSSO starts the administrator single sign-on flow.
func (s *SessionService) BeginAdminSSO(ctx context.Context, redirectURL string) (authURL, state, nonce string, err error) {
	if s.sso == nil {
		return "", "", "", apperrors.Validation("single sign-on is not configured")
	}
	return s.sso.Begin(ctx, ports.SSOBeginInput{RedirectURL: redirectURL})
}

// AdminLoginSSO completes the administrator single sign-on flow and
// adopts the resulting session.
func (s *SessionService) AdminLoginSSO(ctx context.Context, in ports.SSOExchangeInput) error {
	if s.sso == nil {
		return apperrors.Validation("single sign-on is not configured")
	}
	attempt := s.beginAttempt()

	result, err := s.sso.Exchange(ctx, in)
	return s.adoptAdmin(ctx, attempt, result, err)
}

// Logout ends the customer session and purges only the customer slot.
// It is idempotent and also cancels any in-flight login.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.attempt++
	s.customer = nil
	if s.admin == nil {
		s.state = StateUnauthenticated
	}
	s.loading = false
	s.errMsg = ""
	s.publishLocked()

	if err := s.slots.Clear(ctx, ports.SlotCustomer); err != nil {
		s.logger.WarnContext(ctx, "customer slot clear failed", "error", err)
	}
	return nil
}

// AdminLogout ends the administrator session and purges only the
// administrator slot. A persisted customer slot is left alone; the next
// restore will pick it up.
func (s *SessionService) AdminLogout(ctx context.Context) error {
	s.mu.Lock()
	s.attempt++
	s.admin = nil
	if s.customer == nil {
		s.state = StateUnauthenticated
	}
	s.loading = false
	s.errMsg = ""
	s.publishLocked()

	if err := s.slots.Clear(ctx, ports.SlotAdministrator); err != nil {
		s.logger.WarnContext(ctx, "administrator slot clear failed", "error", err)
	}
	return nil
}

// HasPermission reports whether the current administrator holds the
// capability token. Non-administrator sessions always fail closed.
func (s *SessionService) HasPermission(token string) bool {
	return s.currentAdmin().HasPermission(token)
}

// HasRole reports whether the current administrator holds the role.
func (s *SessionService) HasRole(role string) bool {
	return s.currentAdmin().HasRole(role)
}

// CanAccess evaluates a route access declaration against the current
// administrator.
func (s *SessionService) CanAccess(perms []string, roles []string) bool {
	return s.currentAdmin().CanAccess(perms, roles)
}

// ClearError resets the published error without touching session state.
func (s *SessionService) ClearError() {
	s.mu.Lock()
	if s.errMsg == "" {
		s.mu.Unlock()
		return
	}
	s.errMsg = ""
	s.publishLocked()
}

func (s *SessionService) currentAdmin() *principal.Administrator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

// beginAttempt starts a login round trip: it bumps the attempt counter,
// raises the loading flag, and publishes.
func (s *SessionService) beginAttempt() uint64 {
	s.mu.Lock()
	s.attempt++
	attempt := s.attempt
	s.loading = true
	s.errMsg = ""
	s.publishLocked()
	return attempt
}

// adoptCustomer finishes a customer login round trip. A stale attempt
// is discarded silently; a rejected or incomplete response leaves prior
// state untouched and publishes the error.
func (s *SessionService) adoptCustomer(ctx context.Context, attempt uint64, result ports.LoginResult, err error) error {
	if err != nil {
		return s.rejectLogin(attempt, "customer", err)
	}

	customer := principal.ValidateCustomer(result.Profile)
	if result.Token == "" || customer == nil {
		return s.rejectLogin(attempt, "customer",
			apperrors.IncompleteResponse("login response was missing a token or a valid profile"))
	}

	s.mu.Lock()
	if s.attempt != attempt {
		s.mu.Unlock()
		s.count("session.login", map[string]string{"kind": "customer", "outcome": "stale"})
		return nil
	}
	s.customer = customer
	s.admin = nil
	s.state = StateCustomer
	s.loading = false
	s.errMsg = ""
	s.publishLocked()

	s.persistSlot(ctx, ports.SlotCustomer, result)
	s.count("session.login", map[string]string{"kind": "customer", "outcome": "adopted"})
	return nil
}

// adoptAdmin finishes an administrator login round trip. Adoption
// clears the in-memory customer; the customer slot stays persisted.
func (s *SessionService) adoptAdmin(ctx context.Context, attempt uint64, result ports.LoginResult, err error) error {
	if err != nil {
		return s.rejectLogin(attempt, "administrator", err)
	}

	admin := principal.ValidateAdministrator(result.Profile)
	if result.Token == "" || admin == nil {
		return s.rejectLogin(attempt, "administrator",
			apperrors.IncompleteResponse("login response was missing a token or a valid profile"))
	}

	s.mu.Lock()
	if s.attempt != attempt {
		s.mu.Unlock()
		s.count("session.login", map[string]string{"kind": "administrator", "outcome": "stale"})
		return nil
	}
	s.admin = admin
	s.customer = nil
	s.state = StateAdmin
	s.loading = false
	s.errMsg = ""
	s.publishLocked()

	s.persistSlot(ctx, ports.SlotAdministrator, result)
	s.count("session.login", map[string]string{"kind": "administrator", "outcome": "adopted"})
	return nil
}

// rejectLogin records a failed login: stale attempts are swallowed,
// fresh ones publish the error with prior session state untouched.
func (s *SessionService) rejectLogin(attempt uint64, kind string, err error) error {
	appErr := toLoginError(err)

	s.mu.Lock()
	if s.attempt != attempt {
		s.mu.Unlock()
		s.count("session.login", map[string]string{"kind": kind, "outcome": "stale"})
		return nil
	}
	s.loading = false
	s.errMsg = appErr.Message
	s.publishLocked()

	s.count("session.login", map[string]string{"kind": kind, "outcome": "rejected"})
	return appErr
}

// toLoginError normalizes backend failures into the engine taxonomy.
// Structured errors pass through; anything else becomes a rejection
// with a neutral message so backend internals never leak to users.
func toLoginError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(err, apperrors.ErrCodeLoginRejected, "login failed")
}

// persistSlot writes the adopted session to durable storage. Persistence
// is best-effort; a write failure degrades restore, not the live
// session, so it is logged and swallowed.
func (s *SessionService) persistSlot(ctx context.Context, kind ports.SlotKind, result ports.LoginResult) {
	slot := ports.Slot{Token: result.Token, Profile: result.Profile}
	if err := s.slots.Write(ctx, kind, slot); err != nil {
		s.logger.WarnContext(ctx, "slot write failed", "kind", string(kind), "error", err)
	}
}

// snapshotLocked builds the published view. Callers hold s.mu.
func (s *SessionService) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:     s.state,
		IsLoading: s.loading,
		Error:     s.errMsg,
	}
	switch {
	case s.admin != nil:
		snap.Principal = s.admin
		snap.IsAuthenticated = true
		snap.IsAdmin = true
	case s.customer != nil:
		snap.Principal = s.customer
		snap.IsAuthenticated = true
	}
	return snap
}

// publishLocked delivers the current snapshot to all subscribers in
// subscription order and releases the lock. Callers hold s.mu and must
// not touch state afterwards.
func (s *SessionService) publishLocked() {
	snap := s.snapshotLocked()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

func (s *SessionService) count(name string, tags map[string]string) {
	if s.metrics != nil {
		s.metrics.Count(name, 1, tags)
	}
}

func (s *SessionService) timing(name string, d time.Duration, tags map[string]string) {
	if s.metrics != nil {
		s.metrics.Timing(name, d, tags)
	}
}
