package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/devsanbid/bravo-test-sub001/internal/auth"
	"github.com/devsanbid/bravo-test-sub001/internal/config"
	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	"github.com/devsanbid/bravo-test-sub001/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when email and password do not match an account.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotFound is returned for unknown account ids or emails.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidSecret is returned for unknown, used or expired one-time secrets.
	ErrInvalidSecret = errors.New("invalid or expired secret")
)

// IdentityProvider is the authentication backend: identities, sessions and the
// verification and recovery flows.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password, name string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error
	CreateSession(ctx context.Context, email, password string) (*domain.BackendSession, error)
	DeleteSession(ctx context.Context, sessionID string) error
	IsEmailVerified(ctx context.Context, accountID string) (bool, error)
	SendVerification(ctx context.Context, accountID string) error
	ConfirmVerification(ctx context.Context, accountID, secret string) error
	SendRecovery(ctx context.Context, email string) error
	ConfirmRecovery(ctx context.Context, accountID, secret, newPassword string) error
}

// AccountMailer delivers the links of the verification and recovery flows.
type AccountMailer interface {
	SendVerification(ctx context.Context, account *domain.Account, link string) error
	SendRecovery(ctx context.Context, account *domain.Account, link string) error
}

// IdentityService implements IdentityProvider on Postgres accounts and Redis sessions.
type IdentityService struct {
	accounts     repository.AccountRepository
	secrets      repository.AccountTokenRepository
	sessions     repository.SessionRepository
	mailer       AccountMailer
	bcryptCost   int
	sessionTTL   time.Duration
	secretTTL    time.Duration
	verifyLink   string
	recoveryLink string
	now          func() time.Time
}

// IdentityDependencies bundles repositories for the identity service.
type IdentityDependencies struct {
	AccountRepo      repository.AccountRepository
	AccountTokenRepo repository.AccountTokenRepository
	SessionRepo      repository.SessionRepository
	Mailer           AccountMailer
}

// NewIdentityService builds the service.
func NewIdentityService(cfg config.Config, deps IdentityDependencies) *IdentityService {
	return &IdentityService{
		accounts:     deps.AccountRepo,
		secrets:      deps.AccountTokenRepo,
		sessions:     deps.SessionRepo,
		mailer:       deps.Mailer,
		bcryptCost:   cfg.Auth.BcryptCost,
		sessionTTL:   cfg.Auth.TokenTTL(),
		secretTTL:    cfg.Auth.VerificationTTL(),
		verifyLink:   cfg.App.BaseURL + cfg.Auth.VerificationRedirectPath,
		recoveryLink: cfg.App.BaseURL + cfg.Auth.RecoveryRedirectPath,
		now:          time.Now,
	}
}

func (s *IdentityService) CreateAccount(ctx context.Context, email, password, name string) (*domain.Account, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(email),
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *IdentityService) DeleteAccount(ctx context.Context, accountID string) error {
	err := s.accounts.Delete(ctx, accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAccountNotFound
	}
	return err
}

func (s *IdentityService) CreateSession(ctx context.Context, email, password string) (*domain.BackendSession, error) {
	account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now().UTC()
	session := &domain.BackendSession{
		ID:        uuid.NewString(),
		UserID:    account.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *IdentityService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *IdentityService) IsEmailVerified(ctx context.Context, accountID string) (bool, error) {
	account, err := s.account(ctx, accountID)
	if err != nil {
		return false, err
	}
	return account.EmailVerified, nil
}

func (s *IdentityService) SendVerification(ctx context.Context, accountID string) error {
	account, err := s.account(ctx, accountID)
	if err != nil {
		return err
	}
	secret, err := s.issueSecret(ctx, account.ID, domain.AccountTokenVerification)
	if err != nil {
		return err
	}
	return s.mailer.SendVerification(ctx, account, secretLink(s.verifyLink, account.ID, secret))
}

func (s *IdentityService) ConfirmVerification(ctx context.Context, accountID, secret string) error {
	token, err := s.activeSecret(ctx, accountID, domain.AccountTokenVerification, secret)
	if err != nil {
		return err
	}
	if err := s.accounts.MarkVerified(ctx, accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	return s.secrets.MarkUsed(ctx, token.ID)
}

func (s *IdentityService) SendRecovery(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}
	secret, err := s.issueSecret(ctx, account.ID, domain.AccountTokenRecovery)
	if err != nil {
		return err
	}
	return s.mailer.SendRecovery(ctx, account, secretLink(s.recoveryLink, account.ID, secret))
}

func (s *IdentityService) ConfirmRecovery(ctx context.Context, accountID, secret, newPassword string) error {
	token, err := s.activeSecret(ctx, accountID, domain.AccountTokenRecovery, secret)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePassword(ctx, accountID, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return err
	}
	return s.secrets.MarkUsed(ctx, token.ID)
}

func (s *IdentityService) account(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	return account, err
}

func (s *IdentityService) issueSecret(ctx context.Context, accountID string, kind domain.AccountTokenKind) (string, error) {
	token := &domain.AccountToken{
		AccountID: accountID,
		Kind:      kind,
		Secret:    uuid.NewString(),
		ExpiresAt: s.now().UTC().Add(s.secretTTL),
	}
	if err := s.secrets.Create(ctx, token); err != nil {
		return "", fmt.Errorf("store %s secret: %w", kind, err)
	}
	return token.Secret, nil
}

func (s *IdentityService) activeSecret(ctx context.Context, accountID string, kind domain.AccountTokenKind, secret string) (*domain.AccountToken, error) {
	token, err := s.secrets.GetActive(ctx, accountID, kind, secret)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidSecret
	}
	return token, err
}

func secretLink(base, accountID, secret string) string {
	q := url.Values{}
	q.Set("userId", accountID)
	q.Set("secret", secret)
	return base + "?" + q.Encode()
}
