package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketlab/gatehouse/internal/domain/model"
	apperrors "github.com/ticketlab/gatehouse/internal/errors"
	"github.com/ticketlab/gatehouse/internal/testutil"
)

func TestCustomerAccountRepo(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewCustomerAccountRepo(db)
		ctx := context.Background()

		created, err := repo.Create(ctx, &model.CreateCustomerAccountRequest{
			Email:        "Amy@Example.com",
			Phone:        "+15550001111",
			FirstName:    "Amy",
			LastName:     "Chen",
			PasswordHash: "$2a$10$fakehashfakehashfakehash",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "amy@example.com", created.Email, "emails are stored lowercased")
		assert.False(t, created.EmailVerified)

		t.Run("get by email is case-insensitive", func(t *testing.T) {
			got, getErr := repo.GetByEmail(ctx, "AMY@example.COM")
			require.NoError(t, getErr)
			assert.Equal(t, created.ID, got.ID)
		})

		t.Run("get by id", func(t *testing.T) {
			got, getErr := repo.GetByID(ctx, created.ID)
			require.NoError(t, getErr)
			assert.Equal(t, created.Email, got.Email)
		})

		t.Run("duplicate email conflicts", func(t *testing.T) {
			_, dupErr := repo.Create(ctx, &model.CreateCustomerAccountRequest{
				Email:        "amy@example.com",
				PasswordHash: "$2a$10$otherhash",
			})
			require.Error(t, dupErr)
			assert.True(t, apperrors.IsConflict(dupErr))
		})

		t.Run("missing account is not found", func(t *testing.T) {
			_, missErr := repo.GetByEmail(ctx, "nobody@example.com")
			assert.True(t, apperrors.IsNotFound(missErr))
		})

		t.Run("set verified", func(t *testing.T) {
			require.NoError(t, repo.SetVerified(ctx, created.ID, true, false))
			got, getErr := repo.GetByID(ctx, created.ID)
			require.NoError(t, getErr)
			assert.True(t, got.EmailVerified)
			assert.False(t, got.PhoneVerified)
		})

		t.Run("invalid request rejected", func(t *testing.T) {
			_, valErr := repo.Create(ctx, &model.CreateCustomerAccountRequest{Email: "not-an-email"})
			assert.True(t, apperrors.IsValidation(valErr))
		})
	})
}

func TestAdminAccountRepo(t *testing.T) {
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewAdminAccountRepo(db)
		ctx := context.Background()

		created, err := repo.Create(ctx, &model.CreateAdminAccountRequest{
			Email:        "ops@example.com",
			FirstName:    "Kim",
			LastName:     "Osei",
			Role:         "support_agent",
			PasswordHash: "$2a$10$fakehashfakehashfakehash",
		})
		require.NoError(t, err)
		assert.True(t, created.IsActive)
		assert.Contains(t, created.Permissions, "orders.view", "baseline grant applied for the role")
		assert.Nil(t, created.LastLoginAt)

		t.Run("explicit permissions are canonicalized", func(t *testing.T) {
			other, createErr := repo.Create(ctx, &model.CreateAdminAccountRequest{
				Email:        "analyst@example.com",
				FirstName:    "Drew",
				Role:         "analyst",
				Permissions:  []string{"reports_view", "events_view"},
				PasswordHash: "$2a$10$fakehash",
			})
			require.NoError(t, createErr)
			assert.Equal(t, []string{"reports.view", "events.view"}, other.Permissions)
		})

		t.Run("unknown role rejected", func(t *testing.T) {
			_, badErr := repo.Create(ctx, &model.CreateAdminAccountRequest{
				Email:        "x@example.com",
				FirstName:    "X",
				Role:         "intern",
				PasswordHash: "$2a$10$fakehash",
			})
			assert.True(t, apperrors.IsValidation(badErr))
		})

		t.Run("set role resets permissions to baseline", func(t *testing.T) {
			require.NoError(t, repo.SetRole(ctx, "ops@example.com", "event_manager", nil))
			got, getErr := repo.GetByEmail(ctx, "ops@example.com")
			require.NoError(t, getErr)
			assert.Equal(t, "event_manager", got.Role)
			assert.Contains(t, got.Permissions, "events.publish")
			assert.NotContains(t, got.Permissions, "orders.refund")
		})

		t.Run("deactivate", func(t *testing.T) {
			require.NoError(t, repo.SetActive(ctx, "ops@example.com", false))
			got, getErr := repo.GetByEmail(ctx, "ops@example.com")
			require.NoError(t, getErr)
			assert.False(t, got.IsActive)
		})

		t.Run("record login", func(t *testing.T) {
			at := time.Now().UTC().Truncate(time.Second)
			require.NoError(t, repo.RecordLogin(ctx, created.ID, at))
			got, getErr := repo.GetByID(ctx, created.ID)
			require.NoError(t, getErr)
			require.NotNil(t, got.LastLoginAt)
			assert.WithinDuration(t, at, *got.LastLoginAt, time.Second)
		})

		t.Run("update of missing account is not found", func(t *testing.T) {
			err := repo.SetActive(ctx, "ghost@example.com", false)
			assert.True(t, apperrors.IsNotFound(err))
		})

		t.Run("list", func(t *testing.T) {
			all, listErr := repo.List(ctx, 10, 0)
			require.NoError(t, listErr)
			assert.Len(t, all, 2)
		})

		t.Run("last active super admin is protected", func(t *testing.T) {
			_, rootErr := repo.Create(ctx, &model.CreateAdminAccountRequest{
				Email:        "root@example.com",
				FirstName:    "Rae",
				Role:         "super_admin",
				PasswordHash: "$2a$10$fakehash",
			})
			require.NoError(t, rootErr)

			demoteErr := repo.SetRole(ctx, "root@example.com", "event_manager", nil)
			require.Error(t, demoteErr)
			assert.True(t, apperrors.IsConflict(demoteErr))

			deactErr := repo.SetActive(ctx, "root@example.com", false)
			require.Error(t, deactErr)
			assert.True(t, apperrors.IsConflict(deactErr))

			got, getErr := repo.GetByEmail(ctx, "root@example.com")
			require.NoError(t, getErr)
			assert.Equal(t, "super_admin", got.Role)
			assert.True(t, got.IsActive)

			_, secondErr := repo.Create(ctx, &model.CreateAdminAccountRequest{
				Email:        "root2@example.com",
				FirstName:    "Sol",
				Role:         "super_admin",
				PasswordHash: "$2a$10$fakehash",
			})
			require.NoError(t, secondErr)

			require.NoError(t, repo.SetRole(ctx, "root@example.com", "event_manager", nil))
			got, getErr = repo.GetByEmail(ctx, "root@example.com")
			require.NoError(t, getErr)
			assert.Equal(t, "event_manager", got.Role)
		})
	})
}
