package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/ticketlab/gatehouse/internal/data/pgxutil"
	"github.com/ticketlab/gatehouse/internal/domain/model"
	apperrors "github.com/ticketlab/gatehouse/internal/errors"
)

// CustomerAccountRepo provides database operations for customer accounts.
type CustomerAccountRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCustomerAccountRepo creates a new CustomerAccountRepo with real time provider.
func NewCustomerAccountRepo(db *sql.DB) *CustomerAccountRepo {
	return &CustomerAccountRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewCustomerAccountRepoWithTimeProvider creates a repo with a custom time provider (useful for tests).
func NewCustomerAccountRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *CustomerAccountRepo {
	return &CustomerAccountRepo{DB: db, timeProvider: tp}
}

const customerAccountColumns = `id, email, phone, first_name, last_name,
	email_verified, phone_verified, password_hash, created_at, updated_at`

// Create inserts a new customer account. Emails are stored lowercased
// so lookups are case-insensitive.
func (r *CustomerAccountRepo) Create(ctx context.Context, req *model.CreateCustomerAccountRequest) (*model.CustomerAccount, error) {
	if req == nil {
		return nil, errors.New("create customer account request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid customer account")
	}

	now := r.timeProvider.Now().UTC()
	var out model.CustomerAccount
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO customer_accounts (
				email, phone, first_name, last_name, password_hash, created_at, updated_at
			) VALUES (
				$1, NULLIF($2, ''), $3, $4, $5, $6, $6
			) RETURNING `+customerAccountColumns,
			normalizeEmail(req.Email),
			strings.TrimSpace(req.Phone),
			strings.TrimSpace(req.FirstName),
			strings.TrimSpace(req.LastName),
			req.PasswordHash,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.CustomerAccount])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetByEmail retrieves a customer account by email.
func (r *CustomerAccountRepo) GetByEmail(ctx context.Context, email string) (*model.CustomerAccount, error) {
	return r.getByQuery(ctx,
		`SELECT `+customerAccountColumns+` FROM customer_accounts WHERE email = $1`,
		normalizeEmail(email))
}

// GetByID retrieves a customer account by ID.
func (r *CustomerAccountRepo) GetByID(ctx context.Context, id string) (*model.CustomerAccount, error) {
	return r.getByQuery(ctx,
		`SELECT `+customerAccountColumns+` FROM customer_accounts WHERE id = $1`, id)
}

// SetVerified updates the email/phone verification flags.
func (r *CustomerAccountRepo) SetVerified(ctx context.Context, id string, emailVerified, phoneVerified bool) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, err := conn.Exec(ctx, `
			UPDATE customer_accounts
			SET email_verified = $2, phone_verified = $3, updated_at = $4
			WHERE id = $1`,
			id, emailVerified, phoneVerified, r.timeProvider.Now().UTC())
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

func (r *CustomerAccountRepo) getByQuery(ctx context.Context, q string, args ...any) (*model.CustomerAccount, error) {
	var account model.CustomerAccount
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, q, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		account, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.CustomerAccount])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("customer account not found")
		}
		return nil, fmt.Errorf("failed to get customer account: %w", apperrors.MapDBError(err))
	}
	return &account, nil
}

// normalizeEmail lowercases and trims an email for storage and lookup.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
