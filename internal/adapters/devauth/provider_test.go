package devauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketlab/gatehouse/internal/domain/principal"
	apperrors "github.com/ticketlab/gatehouse/internal/errors"
	"github.com/ticketlab/gatehouse/internal/ports"
)

func newDevProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(Config{
		CustomerEmail: "shopper@example.com",
		AdminEmail:    "boss@example.com",
		Password:      "secret",
		AdminRole:     "event_manager",
		FirstName:     "Pat",
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{})
	require.Error(t, err)

	_, err = NewProvider(Config{AdminEmail: "a@example.com", AdminRole: "janitor"})
	require.Error(t, err)
}

func TestProvider_CustomerLogin(t *testing.T) {
	p := newDevProvider(t)
	ctx := context.Background()

	t.Run("configured credentials succeed", func(t *testing.T) {
		result, err := p.Login(ctx, ports.Credentials{Email: "shopper@example.com", Password: "secret"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)

		customer := principal.ValidateCustomer(result.Profile)
		require.NotNil(t, customer)
		assert.Equal(t, "shopper@example.com", customer.Email)
		assert.Equal(t, "user", customer.Role)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, err := p.Login(ctx, ports.Credentials{Email: "shopper@example.com", Password: "nope"})
		assert.True(t, apperrors.IsLoginRejected(err))
	})

	t.Run("wrong email rejected", func(t *testing.T) {
		_, err := p.Login(ctx, ports.Credentials{Email: "other@example.com", Password: "secret"})
		assert.True(t, apperrors.IsLoginRejected(err))
	})
}

func TestProvider_Register(t *testing.T) {
	p := newDevProvider(t)

	result, err := p.Register(context.Background(), ports.Registration{Email: "new@example.com", Password: "whatever"})
	require.NoError(t, err)
	customer := principal.ValidateCustomer(result.Profile)
	require.NotNil(t, customer)
	assert.Equal(t, "new@example.com", customer.Email)

	_, err = p.Register(context.Background(), ports.Registration{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestProvider_AdminLogin(t *testing.T) {
	p := newDevProvider(t)
	admin := p.AsAdmin()
	ctx := context.Background()

	t.Run("configured role and baseline grant", func(t *testing.T) {
		result, err := admin.Login(ctx, ports.Credentials{Email: "boss@example.com", Password: "secret"})
		require.NoError(t, err)

		got := principal.ValidateAdministrator(result.Profile)
		require.NotNil(t, got)
		assert.Equal(t, principal.RoleEventManager, got.Role)
		assert.Equal(t, principal.DefaultPermissions(principal.RoleEventManager), got.Permissions)
		assert.True(t, got.IsActive)
	})

	t.Run("customer credentials do not open an admin session", func(t *testing.T) {
		_, err := admin.Login(ctx, ports.Credentials{Email: "shopper@example.com", Password: "secret"})
		assert.True(t, apperrors.IsLoginRejected(err))
	})

	t.Run("role defaults to super admin", func(t *testing.T) {
		defaulted, err := NewProvider(Config{AdminEmail: "root@example.com"})
		require.NoError(t, err)

		result, loginErr := defaulted.AsAdmin().Login(ctx, ports.Credentials{Email: "root@example.com", Password: "dev"})
		require.NoError(t, loginErr)

		got := principal.ValidateAdministrator(result.Profile)
		require.NotNil(t, got)
		assert.Equal(t, principal.RoleSuperAdmin, got.Role)
		assert.True(t, got.HasPermission("events.create"), "super admin carries the full catalogue")
	})
}
