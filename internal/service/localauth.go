package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ticketlab/gatehouse/internal/domain/model"
	"github.com/ticketlab/gatehouse/internal/domain/principal"
	apperrors "github.com/ticketlab/gatehouse/internal/errors"
	"github.com/ticketlab/gatehouse/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

// CustomerAccountStore is the slice of the account repository the local
// authenticator needs.
type CustomerAccountStore interface {
	Create(ctx context.Context, req *model.CreateCustomerAccountRequest) (*model.CustomerAccount, error)
	GetByEmail(ctx context.Context, email string) (*model.CustomerAccount, error)
}

// AdminAccountStore is the slice of the admin account repository the
// local authenticator needs.
type AdminAccountStore interface {
	GetByEmail(ctx context.Context, email string) (*model.AdminAccount, error)
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// LocalCustomerAuthenticator verifies customers against locally hosted
// accounts using bcrypt hashes and issues opaque session tokens.
type LocalCustomerAuthenticator struct {
	accounts CustomerAccountStore
	cost     int
}

var _ ports.CustomerAuthenticator = (*LocalCustomerAuthenticator)(nil)

// NewLocalCustomerAuthenticator constructs a local customer authenticator.
func NewLocalCustomerAuthenticator(accounts CustomerAccountStore) *LocalCustomerAuthenticator {
	return &LocalCustomerAuthenticator{accounts: accounts, cost: bcrypt.DefaultCost}
}

func (a *LocalCustomerAuthenticator) Login(ctx context.Context, creds ports.Credentials) (ports.LoginResult, error) {
	account, err := a.accounts.GetByEmail(ctx, creds.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return ports.LoginResult{}, errBadCredentials()
		}
		return ports.LoginResult{}, fmt.Errorf("look up customer account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)) != nil {
		return ports.LoginResult{}, errBadCredentials()
	}

	profile, err := customerProfile(account)
	if err != nil {
		return ports.LoginResult{}, err
	}
	return ports.LoginResult{Token: uuid.NewString(), Profile: profile}, nil
}

func (a *LocalCustomerAuthenticator) Register(ctx context.Context, reg ports.Registration) (ports.LoginResult, error) {
	if reg.Password == "" {
		return ports.LoginResult{}, apperrors.ValidationField("password", "password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), a.cost)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := a.accounts.Create(ctx, &model.CreateCustomerAccountRequest{
		Email:        reg.Email,
		Phone:        reg.Phone,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PasswordHash: string(hash),
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			return ports.LoginResult{}, apperrors.LoginRejected("an account with this email already exists")
		}
		return ports.LoginResult{}, err
	}

	profile, err := customerProfile(account)
	if err != nil {
		return ports.LoginResult{}, err
	}
	return ports.LoginResult{Token: uuid.NewString(), Profile: profile}, nil
}

// LocalAdminAuthenticator verifies administrators against locally
// hosted accounts. Inactive accounts are refused here, at login time;
// a restored session only carries the advisory IsActive flag.
type LocalAdminAuthenticator struct {
	accounts AdminAccountStore
	logger   *slog.Logger
}

var _ ports.AdminAuthenticator = (*LocalAdminAuthenticator)(nil)

// NewLocalAdminAuthenticator constructs a local admin authenticator.
func NewLocalAdminAuthenticator(accounts AdminAccountStore, logger *slog.Logger) *LocalAdminAuthenticator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalAdminAuthenticator{accounts: accounts, logger: logger}
}

func (a *LocalAdminAuthenticator) Login(ctx context.Context, creds ports.Credentials) (ports.LoginResult, error) {
	account, err := a.accounts.GetByEmail(ctx, creds.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return ports.LoginResult{}, errBadCredentials()
		}
		return ports.LoginResult{}, fmt.Errorf("look up admin account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(creds.Password)) != nil {
		return ports.LoginResult{}, errBadCredentials()
	}
	if !account.IsActive {
		return ports.LoginResult{}, apperrors.LoginRejected("this account has been deactivated")
	}

	now := time.Now().UTC()
	if recErr := a.accounts.RecordLogin(ctx, account.ID, now); recErr != nil {
		a.logger.WarnContext(ctx, "failed to record admin login", "admin_id", account.ID, "error", recErr)
	}

	profile, err := adminProfile(account, now)
	if err != nil {
		return ports.LoginResult{}, err
	}
	return ports.LoginResult{Token: uuid.NewString(), Profile: profile}, nil
}

func errBadCredentials() error {
	return apperrors.LoginRejected("invalid email or password")
}

func customerProfile(account *model.CustomerAccount) ([]byte, error) {
	c := principal.Customer{
		ID:            account.ID,
		Email:         account.Email,
		FirstName:     account.FirstName,
		LastName:      account.LastName,
		EmailVerified: account.EmailVerified,
		PhoneVerified: account.PhoneVerified,
		Role:          "user",
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
	if account.Phone != nil {
		c.Phone = *account.Phone
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal customer profile: %w", err)
	}
	return raw, nil
}

func adminProfile(account *model.AdminAccount, lastLogin time.Time) ([]byte, error) {
	a := principal.Administrator{
		ID:          account.ID,
		Email:       account.Email,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		Role:        principal.AdminRole(account.Role),
		Permissions: principal.CanonicalizeAll(account.Permissions),
		IsActive:    account.IsActive,
		LastLoginAt: &lastLogin,
		CreatedAt:   account.CreatedAt,
		UpdatedAt:   account.UpdatedAt,
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal admin profile: %w", err)
	}
	return raw, nil
}
