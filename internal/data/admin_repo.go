package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ticketlab/gatehouse/internal/data/pgxutil"
	"github.com/ticketlab/gatehouse/internal/domain/model"
	"github.com/ticketlab/gatehouse/internal/domain/principal"
	apperrors "github.com/ticketlab/gatehouse/internal/errors"
)

// AdminAccountRepo provides database operations for admin accounts.
type AdminAccountRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAdminAccountRepo creates a new AdminAccountRepo with real time provider.
func NewAdminAccountRepo(db *sql.DB) *AdminAccountRepo {
	return &AdminAccountRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewAdminAccountRepoWithTimeProvider creates a repo with a custom time provider (useful for tests).
func NewAdminAccountRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *AdminAccountRepo {
	return &AdminAccountRepo{DB: db, timeProvider: tp}
}

const adminAccountColumns = `id, email, first_name, last_name, role, permissions,
	is_active, last_login_at, password_hash, created_at, updated_at`

// Create inserts a new admin account. Permissions default to the role's
// baseline grant when none are supplied; all tokens are stored in
// canonical dotted form.
func (r *AdminAccountRepo) Create(ctx context.Context, req *model.CreateAdminAccountRequest) (*model.AdminAccount, error) {
	if req == nil {
		return nil, errors.New("create admin account request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid admin account")
	}

	perms := req.Permissions
	if len(perms) == 0 {
		for _, p := range principal.DefaultPermissions(principal.AdminRole(req.Role)) {
			perms = append(perms, string(p))
		}
	} else {
		canonical := principal.CanonicalizeAll(perms)
		perms = perms[:0]
		for _, p := range canonical {
			perms = append(perms, string(p))
		}
	}

	now := r.timeProvider.Now().UTC()
	var out model.AdminAccount
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO admin_accounts (
				email, first_name, last_name, role, permissions, password_hash, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $7
			) RETURNING `+adminAccountColumns,
			normalizeEmail(req.Email),
			strings.TrimSpace(req.FirstName),
			strings.TrimSpace(req.LastName),
			req.Role,
			perms,
			req.PasswordHash,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.AdminAccount])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByEmail retrieves an admin account by email.
func (r *AdminAccountRepo) GetByEmail(ctx context.Context, email string) (*model.AdminAccount, error) {
	return r.getByQuery(ctx,
		`SELECT `+adminAccountColumns+` FROM admin_accounts WHERE email = $1`,
		normalizeEmail(email))
}

// GetByID retrieves an admin account by ID.
func (r *AdminAccountRepo) GetByID(ctx context.Context, id string) (*model.AdminAccount, error) {
	return r.getByQuery(ctx,
		`SELECT `+adminAccountColumns+` FROM admin_accounts WHERE id = $1`, id)
}

// List retrieves admin accounts ordered by creation time.
func (r *AdminAccountRepo) List(ctx context.Context, limit, offset int) ([]*model.AdminAccount, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.AdminAccount
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+adminAccountColumns+` FROM admin_accounts ORDER BY created_at ASC LIMIT $1 OFFSET $2`,
			limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.AdminAccount])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list admin accounts: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.AdminAccount, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// SetRole replaces an account's role and permission set in one
// transaction. Passing no permissions resets them to the new role's
// baseline grant. Demoting the last active super administrator is
// refused as a conflict.
func (r *AdminAccountRepo) SetRole(ctx context.Context, email string, role string, permissions []string) error {
	if !principal.AdminRole(role).Valid() {
		return apperrors.ValidationField("role", "role is not a known admin role")
	}

	perms := permissions
	if len(perms) == 0 {
		for _, p := range principal.DefaultPermissions(principal.AdminRole(role)) {
			perms = append(perms, string(p))
		}
	}

	addr := normalizeEmail(email)
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		Fn: func(tx pgx.Tx) error {
			if principal.AdminRole(role) != principal.RoleSuperAdmin {
				if guardErr := guardLastSuperAdmin(ctx, tx, addr); guardErr != nil {
					return guardErr
				}
			}
			return r.execTx(ctx, tx, `
				UPDATE admin_accounts
				SET role = $2, permissions = $3, updated_at = $4
				WHERE email = $1`,
				addr, role, perms, r.timeProvider.Now().UTC())
		},
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// SetActive toggles the is_active flag. Inactive accounts are refused
// at login time. Deactivating the last active super administrator is
// refused as a conflict.
func (r *AdminAccountRepo) SetActive(ctx context.Context, email string, active bool) error {
	addr := normalizeEmail(email)
	if active {
		return r.exec(ctx, `
			UPDATE admin_accounts
			SET is_active = true, updated_at = $2
			WHERE email = $1`,
			addr, r.timeProvider.Now().UTC())
	}

	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		Fn: func(tx pgx.Tx) error {
			if guardErr := guardLastSuperAdmin(ctx, tx, addr); guardErr != nil {
				return guardErr
			}
			return r.execTx(ctx, tx, `
				UPDATE admin_accounts
				SET is_active = false, updated_at = $2
				WHERE email = $1`,
				addr, r.timeProvider.Now().UTC())
		},
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// guardLastSuperAdmin refuses changes that would leave the deployment
// without an active super administrator. The target row is locked so
// two concurrent demotions cannot both pass the check.
func guardLastSuperAdmin(ctx context.Context, tx pgx.Tx, email string) error {
	var role string
	var active bool
	if err := tx.QueryRow(ctx,
		`SELECT role, is_active FROM admin_accounts WHERE email = $1 FOR UPDATE`,
		email).Scan(&role, &active); err != nil {
		return err
	}
	if principal.AdminRole(role) != principal.RoleSuperAdmin || !active {
		return nil
	}

	var others int
	if err := tx.QueryRow(ctx, `
		SELECT count(*) FROM admin_accounts
		WHERE role = $1 AND is_active AND email <> $2`,
		string(principal.RoleSuperAdmin), email).Scan(&others); err != nil {
		return err
	}
	if others == 0 {
		return apperrors.Conflict("cannot remove the last active super administrator")
	}
	return nil
}

// RecordLogin stamps last_login_at for the account.
func (r *AdminAccountRepo) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `
		UPDATE admin_accounts
		SET last_login_at = $2, updated_at = $2
		WHERE id = $1`,
		id, at.UTC())
}

func (r *AdminAccountRepo) exec(ctx context.Context, q string, args ...any) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, q, args...)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

func (r *AdminAccountRepo) execTx(ctx context.Context, tx pgx.Tx, q string, args ...any) error {
	ct, err := tx.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AdminAccountRepo) getByQuery(ctx context.Context, q string, args ...any) (*model.AdminAccount, error) {
	var account model.AdminAccount
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		account, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.AdminAccount])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("admin account not found")
		}
		return nil, fmt.Errorf("failed to get admin account: %w", apperrors.MapDBError(err))
	}
	return &account, nil
}
