package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// ErrAccountExists is returned when the email is already registered.
var ErrAccountExists = errors.New("account already exists")

// AccountRepository defines persistence access for authentication identities.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	MarkVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (id, name, email, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING email_verified, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.ID,
		account.Name,
		strings.ToLower(account.Email),
		account.PasswordHash,
	).Scan(&account.EmailVerified, &account.CreatedAt, &account.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAccountExists
	}
	return err
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `
        SELECT id, name, email, password_hash, email_verified, created_at, updated_at
        FROM accounts WHERE id=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	const query = `
        SELECT id, name, email, password_hash, email_verified, created_at, updated_at
        FROM accounts WHERE email=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE accounts SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	return r.execOne(ctx, query, passwordHash, id)
}

func (r *accountRepository) MarkVerified(ctx context.Context, id string) error {
	const query = `UPDATE accounts SET email_verified=TRUE, updated_at=NOW() WHERE id=$1`
	return r.execOne(ctx, query, id)
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM accounts WHERE id=$1`, id)
}

func (r *accountRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.EmailVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
