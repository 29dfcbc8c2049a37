// Package principal contains domain-level types for the session and
// authorization engine: the principal tagged union, admin roles, and
// permission tokens. It is pure and free of adapter concerns.
package principal

import "time"

// Kind discriminates the principal union.
type Kind string

const (
	KindCustomer      Kind = "customer"
	KindAdministrator Kind = "administrator"
)

// Principal is the authenticated identity currently in effect.
// A nil Principal means unauthenticated; otherwise exactly one of
// *Customer or *Administrator is adopted at any time.
type Principal interface {
	PrincipalKind() Kind
}

// AdminRole represents an administrator's job-function role.
// Kept in string form for easy persistence; valid values below.
type AdminRole string

const (
	RoleSuperAdmin   AdminRole = "super_admin"
	RoleEventManager AdminRole = "event_manager"
	RoleSupportAgent AdminRole = "support_agent"
	RoleAnalyst      AdminRole = "analyst"
)

// Valid reports whether the role is a known admin role.
func (r AdminRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleEventManager, RoleSupportAgent, RoleAnalyst:
		return true
	default:
		return false
	}
}

// Customer is a storefront ticket-buyer profile.
type Customer struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	FirstName     string    `json:"first_name,omitempty"`
	LastName      string    `json:"last_name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PrincipalKind implements Principal.
func (*Customer) PrincipalKind() Kind { return KindCustomer }

// Administrator is a back-office operator profile with its resolved
// permission set. Permissions are kept in canonical dotted form; the
// wildcard token grants everything.
type Administrator struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Role        AdminRole    `json:"role"`
	Permissions []Permission `json:"permissions"`
	// IsActive is advisory for restored sessions; login-time enforcement
	// happens in the credential backend.
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PrincipalKind implements Principal.
func (*Administrator) PrincipalKind() Kind { return KindAdministrator }

// FullName returns the administrator's display name.
func (a *Administrator) FullName() string {
	if a == nil {
		return ""
	}
	switch {
	case a.FirstName == "":
		return a.LastName
	case a.LastName == "":
		return a.FirstName
	default:
		return a.FirstName + " " + a.LastName
	}
}
