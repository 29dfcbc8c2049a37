package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketlab/gatehouse/internal/domain/model"
	"github.com/ticketlab/gatehouse/internal/domain/principal"
	apperrors "github.com/ticketlab/gatehouse/internal/errors"
	"github.com/ticketlab/gatehouse/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

func testCreds(email, password string) ports.Credentials {
	return ports.Credentials{Email: email, Password: password}
}

func testRegistration(email, password string) ports.Registration {
	return ports.Registration{Email: email, Password: password, FirstName: "New"}
}

type fakeCustomerStore struct {
	byEmail map[string]*model.CustomerAccount
}

func (f *fakeCustomerStore) Create(_ context.Context, req *model.CreateCustomerAccountRequest) (*model.CustomerAccount, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid customer account")
	}
	if _, exists := f.byEmail[req.Email]; exists {
		return nil, apperrors.Conflict("This value already exists. Please choose a different one.")
	}
	account := &model.CustomerAccount{
		ID:           "c-" + req.Email,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: req.PasswordHash,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	f.byEmail[req.Email] = account
	return account, nil
}

func (f *fakeCustomerStore) GetByEmail(_ context.Context, email string) (*model.CustomerAccount, error) {
	account, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.NotFound("customer account not found")
	}
	return account, nil
}

type fakeAdminStore struct {
	byEmail      map[string]*model.AdminAccount
	recordErr    error
	recordedID   string
	recordedTime time.Time
}

func (f *fakeAdminStore) GetByEmail(_ context.Context, email string) (*model.AdminAccount, error) {
	account, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.NotFound("admin account not found")
	}
	return account, nil
}

func (f *fakeAdminStore) RecordLogin(_ context.Context, id string, at time.Time) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recordedID = id
	f.recordedTime = at
	return nil
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLocalCustomerAuthenticator_Login(t *testing.T) {
	store := &fakeCustomerStore{byEmail: map[string]*model.CustomerAccount{
		"amy@example.com": {
			ID:           "c-1",
			Email:        "amy@example.com",
			FirstName:    "Amy",
			PasswordHash: hashFor(t, "correct horse"),
			CreatedAt:    time.Now().UTC(),
			UpdatedAt:    time.Now().UTC(),
		},
	}}
	auth := NewLocalCustomerAuthenticator(store)
	ctx := context.Background()

	t.Run("success issues token and validatable profile", func(t *testing.T) {
		result, err := auth.Login(ctx, testCreds("amy@example.com", "correct horse"))
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)

		customer := principal.ValidateCustomer(result.Profile)
		require.NotNil(t, customer)
		assert.Equal(t, "c-1", customer.ID)
		assert.Equal(t, "user", customer.Role)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := auth.Login(ctx, testCreds("amy@example.com", "wrong"))
		require.Error(t, err)
		assert.True(t, apperrors.IsLoginRejected(err))
	})

	t.Run("unknown account gets the same rejection", func(t *testing.T) {
		_, err := auth.Login(ctx, testCreds("ghost@example.com", "whatever"))
		require.Error(t, err)
		assert.True(t, apperrors.IsLoginRejected(err))
		assert.Equal(t, "invalid email or password", err.Error())
	})
}

func TestLocalCustomerAuthenticator_Register(t *testing.T) {
	store := &fakeCustomerStore{byEmail: map[string]*model.CustomerAccount{}}
	auth := NewLocalCustomerAuthenticator(store)
	auth.cost = bcrypt.MinCost
	ctx := context.Background()

	t.Run("creates account with hashed password", func(t *testing.T) {
		result, err := auth.Register(ctx, testRegistration("bo@example.com", "hunter2"))
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		require.NotNil(t, principal.ValidateCustomer(result.Profile))

		stored := store.byEmail["bo@example.com"]
		require.NotNil(t, stored)
		assert.NotEqual(t, "hunter2", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2")))
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := auth.Register(ctx, testRegistration("bo@example.com", "hunter2"))
		require.Error(t, err)
		assert.True(t, apperrors.IsLoginRejected(err))
	})

	t.Run("empty password rejected", func(t *testing.T) {
		_, err := auth.Register(ctx, testRegistration("new@example.com", ""))
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestLocalAdminAuthenticator_Login(t *testing.T) {
	newStore := func(active bool) *fakeAdminStore {
		return &fakeAdminStore{byEmail: map[string]*model.AdminAccount{
			"ops@example.com": {
				ID:           "a-1",
				Email:        "ops@example.com",
				FirstName:    "Kim",
				Role:         "support_agent",
				Permissions:  []string{"orders_view", "orders.refund"},
				IsActive:     active,
				PasswordHash: hashFor(t, "pw"),
				CreatedAt:    time.Now().UTC(),
				UpdatedAt:    time.Now().UTC(),
			},
		}}
	}
	ctx := context.Background()

	t.Run("success records login and canonicalizes permissions", func(t *testing.T) {
		store := newStore(true)
		auth := NewLocalAdminAuthenticator(store, nil)

		result, err := auth.Login(ctx, testCreds("ops@example.com", "pw"))
		require.NoError(t, err)
		assert.Equal(t, "a-1", store.recordedID)

		admin := principal.ValidateAdministrator(result.Profile)
		require.NotNil(t, admin)
		assert.Equal(t, []principal.Permission{"orders.view", "orders.refund"}, admin.Permissions)
		require.NotNil(t, admin.LastLoginAt)
	})

	t.Run("inactive account refused even with valid password", func(t *testing.T) {
		auth := NewLocalAdminAuthenticator(newStore(false), nil)

		_, err := auth.Login(ctx, testCreds("ops@example.com", "pw"))
		require.Error(t, err)
		assert.True(t, apperrors.IsLoginRejected(err))
		assert.Contains(t, err.Error(), "deactivated")
	})

	t.Run("record failure does not block login", func(t *testing.T) {
		store := newStore(true)
		store.recordErr = apperrors.Internal("db down")
		auth := NewLocalAdminAuthenticator(store, nil)

		_, err := auth.Login(ctx, testCreds("ops@example.com", "pw"))
		assert.NoError(t, err)
	})
}
