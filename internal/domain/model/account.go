//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/ticketlab/gatehouse/internal/domain/principal"
)

const maxEmailLen = 320

// CustomerAccount is a locally hosted storefront account row.
type CustomerAccount struct {
	ID            string    `json:"id"              db:"id"`
	Email         string    `json:"email"           db:"email"`
	Phone         *string   `json:"phone,omitempty" db:"phone"`
	FirstName     string    `json:"first_name"      db:"first_name"`
	LastName      string    `json:"last_name"       db:"last_name"`
	EmailVerified bool      `json:"email_verified"  db:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"  db:"phone_verified"`
	PasswordHash  string    `json:"-"               db:"password_hash"`
	CreatedAt     time.Time `json:"created_at"      db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"      db:"updated_at"`
}

// AdminAccount is a locally hosted back-office account row.
type AdminAccount struct {
	ID           string     `json:"id"                      db:"id"`
	Email        string     `json:"email"                   db:"email"`
	FirstName    string     `json:"first_name"              db:"first_name"`
	LastName     string     `json:"last_name"               db:"last_name"`
	Role         string     `json:"role"                    db:"role"`
	Permissions  []string   `json:"permissions"             db:"permissions"`
	IsActive     bool       `json:"is_active"               db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	PasswordHash string     `json:"-"                       db:"password_hash"`
	CreatedAt    time.Time  `json:"created_at"              db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"              db:"updated_at"`
}

// CreateCustomerAccountRequest carries inputs for creating a customer account.
// PasswordHash must already be hashed; repositories never see plaintext.
type CreateCustomerAccountRequest struct {
	Email        string
	Phone        string
	FirstName    string
	LastName     string
	PasswordHash string
}

// Validate checks required fields and bounds.
func (r *CreateCustomerAccountRequest) Validate() error {
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > maxEmailLen {
		return errors.New("email is too long")
	}
	if !strings.Contains(email, "@") {
		return errors.New("email is invalid")
	}
	if r.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}

// CreateAdminAccountRequest carries inputs for creating an admin account.
type CreateAdminAccountRequest struct {
	Email        string
	FirstName    string
	LastName     string
	Role         string
	Permissions  []string
	PasswordHash string
}

// Validate checks required fields and that the role is known.
func (r *CreateAdminAccountRequest) Validate() error {
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > maxEmailLen {
		return errors.New("email is too long")
	}
	if strings.TrimSpace(r.FirstName) == "" && strings.TrimSpace(r.LastName) == "" {
		return errors.New("a first or last name is required")
	}
	if !principal.AdminRole(r.Role).Valid() {
		return errors.New("role is not a known admin role")
	}
	if r.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
