// Package devseed creates development accounts for local environments.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/ticketlab/gatehouse/internal/data"
	"github.com/ticketlab/gatehouse/internal/domain/model"
	"github.com/ticketlab/gatehouse/internal/domain/principal"
	apperrors "github.com/ticketlab/gatehouse/internal/errors"
)

// Services groups the repositories used during seeding.
type Services struct {
	Customers *data.CustomerAccountRepo
	Admins    *data.AdminAccountRepo
}

// NewServices builds the seed repositories from a database handle.
func NewServices(db *sql.DB) Services {
	return Services{
		Customers: data.NewCustomerAccountRepo(db),
		Admins:    data.NewAdminAccountRepo(db),
	}
}

const seedPassword = "gatehouse-dev"

// Run seeds development accounts. Existing accounts are left untouched,
// so the command is safe to re-run.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	created := 0

	n, err := seedAdmins(ctx, svcs.Admins, string(hash), logger)
	if err != nil {
		return err
	}
	created += n

	n, err = seedCustomers(ctx, svcs.Customers, string(hash), logger)
	if err != nil {
		return err
	}
	created += n

	logger.InfoContext(ctx, "development seed complete", "accounts_created", created)
	return nil
}

func seedAdmins(ctx context.Context, repo *data.AdminAccountRepo, hash string, logger *slog.Logger) (int, error) {
	seeds := []model.CreateAdminAccountRequest{
		{
			Email:        "root@gatehouse.local",
			FirstName:    "Root",
			LastName:     "Admin",
			Role:         string(principal.RoleSuperAdmin),
			PasswordHash: hash,
		},
		{
			Email:        "events@gatehouse.local",
			FirstName:    "Evan",
			LastName:     "Events",
			Role:         string(principal.RoleEventManager),
			Permissions:  permissionStrings(principal.DefaultPermissions(principal.RoleEventManager)),
			PasswordHash: hash,
		},
		{
			Email:        "support@gatehouse.local",
			FirstName:    "Sam",
			LastName:     "Support",
			Role:         string(principal.RoleSupportAgent),
			Permissions:  permissionStrings(principal.DefaultPermissions(principal.RoleSupportAgent)),
			PasswordHash: hash,
		},
	}

	created := 0
	for i := range seeds {
		req := seeds[i]
		if _, err := repo.Create(ctx, &req); err != nil {
			if apperrors.IsConflict(err) {
				logger.InfoContext(ctx, "admin account already exists", "email", req.Email)
				continue
			}
			return created, fmt.Errorf("seed admin %s: %w", req.Email, err)
		}
		logger.InfoContext(ctx, "admin account created", "email", req.Email, "role", req.Role)
		created++
	}
	return created, nil
}

func seedCustomers(ctx context.Context, repo *data.CustomerAccountRepo, hash string, logger *slog.Logger) (int, error) {
	seeds := []model.CreateCustomerAccountRequest{
		{
			Email:        "amy@example.com",
			FirstName:    "Amy",
			LastName:     "Adams",
			PasswordHash: hash,
		},
	}

	created := 0
	for i := range seeds {
		req := seeds[i]
		if _, err := repo.Create(ctx, &req); err != nil {
			if apperrors.IsConflict(err) {
				logger.InfoContext(ctx, "customer account already exists", "email", req.Email)
				continue
			}
			return created, fmt.Errorf("seed customer %s: %w", req.Email, err)
		}
		logger.InfoContext(ctx, "customer account created", "email", req.Email)
		created++
	}
	return created, nil
}

func permissionStrings(perms []principal.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
