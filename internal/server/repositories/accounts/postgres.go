package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/verikeep/internal/common"
	"github.com/dmitrijs2005/verikeep/internal/dbx"
	"github.com/dmitrijs2005/verikeep/internal/server/models"
)

const emailConstraint = "accounts_email_key"

const selectColumns = `SELECT id, name, email, password_hash, role, is_verified,
		 verification_code, code_expires_at, created_at, updated_at, last_login_at
		 FROM accounts`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (id, name, email, password_hash, role, is_verified,
		 verification_code, code_expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 `

	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Name, account.Email, account.PasswordHash, account.Role, account.IsVerified,
		account.VerificationCode, account.CodeExpiresAt, account.CreatedAt, account.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err, emailConstraint) {
			return nil, common.ErrorDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, selectColumns+`
		 WHERE email = $1
		 `, email)
}

func (r *PostgresRepository) GetByEmailForUpdate(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, selectColumns+`
		 WHERE email = $1
		 FOR UPDATE
		 `, email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, selectColumns+`
		 WHERE id = $1
		 `, id)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, selectColumns+`
		 WHERE id = $1
		 FOR UPDATE
		 `, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	var (
		a         models.Account
		code      sql.NullString
		expiresAt sql.NullTime
		lastLogin sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role, &a.IsVerified,
		&code, &expiresAt, &a.CreatedAt, &a.UpdatedAt, &lastLogin)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if code.Valid && expiresAt.Valid {
		a.SetCode(code.String, expiresAt.Time)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLoginAt = &t
	}

	return &a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) error {
	query :=
		`UPDATE accounts SET name = $2, password_hash = $3, role = $4, is_verified = $5,
		 verification_code = $6, code_expires_at = $7, updated_at = $8, last_login_at = $9
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		account.ID, account.Name, account.PasswordHash, account.Role, account.IsVerified,
		account.VerificationCode, account.CodeExpiresAt, account.UpdatedAt, account.LastLoginAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM accounts
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectOneRow(res)
}

func (r *PostgresRepository) Count(ctx context.Context, filter models.Filter) (int64, error) {
	query := `SELECT COUNT(*) FROM accounts`
	var args []any
	if filter.Verified != nil {
		query += ` WHERE is_verified = $1`
		args = append(args, *filter.Verified)
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
