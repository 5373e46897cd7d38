package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
)

// AccountTokenRepository manages verification and recovery secrets.
type AccountTokenRepository interface {
	Create(ctx context.Context, token *domain.AccountToken) error
	GetActive(ctx context.Context, accountID string, kind domain.AccountTokenKind, secret string) (*domain.AccountToken, error)
	MarkUsed(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type accountTokenRepository struct {
	pool *pgxpool.Pool
}

// NewAccountTokenRepository constructs repository.
func NewAccountTokenRepository(pool *pgxpool.Pool) AccountTokenRepository {
	return &accountTokenRepository{pool: pool}
}

func (r *accountTokenRepository) Create(ctx context.Context, token *domain.AccountToken) error {
	const query = `
        INSERT INTO account_tokens (account_id, kind, secret, expires_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		token.AccountID,
		string(token.Kind),
		token.Secret,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

// GetActive returns an unused, unexpired secret; pgx.ErrNoRows otherwise.
func (r *accountTokenRepository) GetActive(ctx context.Context, accountID string, kind domain.AccountTokenKind, secret string) (*domain.AccountToken, error) {
	const query = `
        SELECT id, account_id, kind, secret, expires_at, used_at, created_at
        FROM account_tokens
        WHERE account_id=$1 AND kind=$2 AND secret=$3 AND used_at IS NULL AND expires_at > NOW()`
	var (
		token domain.AccountToken
		kindS string
	)
	if err := r.pool.QueryRow(ctx, query, accountID, string(kind), secret).Scan(
		&token.ID,
		&token.AccountID,
		&kindS,
		&token.Secret,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	token.Kind = domain.AccountTokenKind(kindS)
	return &token, nil
}

func (r *accountTokenRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `
        UPDATE account_tokens SET used_at=NOW()
        WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// PurgeExpired removes secrets that expired or were consumed before the cutoff.
func (r *accountTokenRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	const query = `
        DELETE FROM account_tokens
        WHERE expires_at < $1 OR (used_at IS NOT NULL AND used_at < $1)`
	cmd, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
