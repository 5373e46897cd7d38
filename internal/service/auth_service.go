package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/devsanbid/bravo-test-sub001/internal/auth"
	"github.com/devsanbid/bravo-test-sub001/internal/config"
	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	"github.com/devsanbid/bravo-test-sub001/internal/repository"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

// ProfileCache is the process-wide view of current profiles.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*domain.Profile, bool, error)
	Refresh(ctx context.Context, userID string) (*domain.Profile, error)
	Invalidate(ctx context.Context, userID string) error
}

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	MiddleName  string
	LastName    string
	Gender      string
	DateOfBirth string
	Phone       string
	Service     string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User      domain.SessionUser
	Token     string
	ExpiresAt time.Time
	SessionID string
}

// AuthService coordinates registration, login and account flows.
type AuthService struct {
	identity    IdentityProvider
	profiles    repository.ProfileRepository
	tokens      *auth.TokenManager
	resolver    *auth.SessionResolver
	cache       ProfileCache
	minPassword int
	logger      *zap.Logger
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	Identity     IdentityProvider
	ProfileRepo  repository.ProfileRepository
	TokenManager *auth.TokenManager
	Resolver     *auth.SessionResolver
	Cache        ProfileCache
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	minPassword := cfg.MinPasswordLength
	if minPassword <= 0 {
		minPassword = 8
	}
	return &AuthService{
		identity:    deps.Identity,
		profiles:    deps.ProfileRepo,
		tokens:      deps.TokenManager,
		resolver:    deps.Resolver,
		cache:       deps.Cache,
		minPassword: minPassword,
		logger:      logger,
	}
}

func (s *AuthService) validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.NewValidationError("invalid email address", map[string]any{"field": "email"})
	}
	if len(password) < s.minPassword {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", s.minPassword),
			map[string]any{"field": "password"})
	}
	return nil
}

// Register creates the identity and then the profile document with the student role.
// When the profile write fails the identity is deleted again; if that also fails the
// returned error carries both causes and the orphan is logged.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Profile, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := missingFields(map[string]string{
		"email":     in.Email,
		"password":  in.Password,
		"firstName": in.FirstName,
		"lastName":  in.LastName,
	}); err != nil {
		return nil, err
	}
	if err := s.validateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}

	name := strings.Join(strings.Fields(in.FirstName+" "+in.MiddleName+" "+in.LastName), " ")
	account, err := s.identity.CreateAccount(ctx, in.Email, in.Password, name)
	if errors.Is(err, repository.ErrAccountExists) {
		return nil, apperrors.NewConflict("email already registered", nil)
	}
	if err != nil {
		return nil, backendError("create account", err)
	}

	profile := &domain.Profile{
		UserID:      account.ID,
		FirstName:   in.FirstName,
		MiddleName:  strings.TrimSpace(in.MiddleName),
		LastName:    in.LastName,
		Email:       account.Email,
		Gender:      in.Gender,
		DateOfBirth: in.DateOfBirth,
		Phone:       in.Phone,
		Service:     in.Service,
		Role:        domain.RoleStudent,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		if compErr := s.identity.DeleteAccount(ctx, account.ID); compErr != nil {
			s.logger.Error("orphaned identity after failed registration",
				zap.String("account_id", account.ID),
				zap.Error(err),
				zap.NamedError("compensation_error", compErr))
			return nil, apperrors.NewBackendError("create profile",
				errors.Join(err, fmt.Errorf("delete orphaned account %s: %w", account.ID, compErr)))
		}
		s.logger.Warn("registration rolled back", zap.String("account_id", account.ID), zap.Error(err))
		return nil, apperrors.NewBackendError("create profile", err)
	}

	if err := s.identity.SendVerification(ctx, account.ID); err != nil {
		s.logger.Warn("verification mail not sent", zap.String("account_id", account.ID), zap.Error(err))
	}
	return profile, nil
}

// Login opens a backend session, copies the profile into a signed token and returns it.
// The backend session is removed again if no token can be issued.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}

	session, err := s.identity.CreateSession(ctx, email, password)
	if errors.Is(err, ErrInvalidCredentials) {
		return nil, apperrors.NewAuthError("invalid credentials")
	}
	if err != nil {
		return nil, backendError("create session", err)
	}

	profile, err := s.profiles.GetByUserID(ctx, session.UserID)
	if err != nil {
		s.discardSession(ctx, session.ID)
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, apperrors.NewAuthError("no profile for account")
		}
		return nil, backendError("load profile", err)
	}

	user := profile.SessionUser()
	token, expiresAt, err := s.tokens.Issue(user, session.ID)
	if err != nil {
		s.discardSession(ctx, session.ID)
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt, SessionID: session.ID}, nil
}

func (s *AuthService) discardSession(ctx context.Context, sessionID string) {
	if err := s.identity.DeleteSession(ctx, sessionID); err != nil {
		s.logger.Warn("discarding backend session failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// Logout deletes the backend session of the token. The caller clears the cookie before
// calling, so a backend failure leaves the browser signed out and the session alive.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return nil
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, claims.UserID); err != nil {
			s.logger.Warn("session cache invalidation failed", zap.String("user_id", claims.UserID), zap.Error(err))
		}
	}
	err := s.identity.DeleteSession(ctx, claims.SessionID())
	if err == nil || errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return backendError("delete session", err)
}

// ResolveCurrentUser returns the claims of a raw token or nil.
func (s *AuthService) ResolveCurrentUser(token string) *auth.Claims {
	return s.resolver.Resolve(token)
}

// IsEmailVerified reports the verification flag; lookup failures read as unverified.
func (s *AuthService) IsEmailVerified(ctx context.Context, userID string) bool {
	verified, err := s.identity.IsEmailVerified(ctx, userID)
	if err != nil {
		s.logger.Warn("email verification lookup failed", zap.String("user_id", userID), zap.Error(err))
		return false
	}
	return verified
}

// SendVerificationEmail mails a new verification link.
func (s *AuthService) SendVerificationEmail(ctx context.Context, userID string) error {
	err := s.identity.SendVerification(ctx, userID)
	if errors.Is(err, ErrAccountNotFound) {
		return apperrors.NewNotFound("account", map[string]any{"id": userID})
	}
	if err != nil {
		return backendError("send verification", err)
	}
	return nil
}

// ConfirmVerification consumes a verification secret.
func (s *AuthService) ConfirmVerification(ctx context.Context, userID, secret string) error {
	if err := missingFields(map[string]string{"userId": userID, "secret": secret}); err != nil {
		return err
	}
	return secretError("confirm verification", s.identity.ConfirmVerification(ctx, userID, secret))
}

// RequestRecovery mails a recovery link. Unknown emails succeed silently so the endpoint
// does not reveal which addresses are registered.
func (s *AuthService) RequestRecovery(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.NewValidationError("email required", map[string]any{"field": "email"})
	}
	err := s.identity.SendRecovery(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		s.logger.Debug("recovery requested for unknown email")
		return nil
	}
	if err != nil {
		return backendError("send recovery", err)
	}
	return nil
}

// ConfirmRecovery sets a new password using a recovery secret.
func (s *AuthService) ConfirmRecovery(ctx context.Context, userID, secret, password string) error {
	if err := missingFields(map[string]string{"userId": userID, "secret": secret, "password": password}); err != nil {
		return err
	}
	if len(password) < s.minPassword {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", s.minPassword),
			map[string]any{"field": "password"})
	}
	return secretError("confirm recovery", s.identity.ConfirmRecovery(ctx, userID, secret, password))
}

func secretError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidSecret), errors.Is(err, ErrAccountNotFound):
		return apperrors.NewAuthError("invalid or expired secret")
	default:
		return backendError(op, err)
	}
}

// CurrentProfile returns the current profile of the session owner, served from the
// session cache unless refresh is set. Cache failures fall through to the document store.
func (s *AuthService) CurrentProfile(ctx context.Context, claims *auth.Claims, refresh bool) (*domain.Profile, error) {
	if claims == nil {
		return nil, apperrors.NewAuthError("authentication required")
	}
	if s.cache != nil {
		if !refresh {
			profile, ok, err := s.cache.Get(ctx, claims.UserID)
			if err != nil {
				s.logger.Warn("session cache read failed", zap.String("user_id", claims.UserID), zap.Error(err))
			} else if ok {
				return profile, nil
			}
		}
		profile, err := s.cache.Refresh(ctx, claims.UserID)
		if err == nil {
			return profile, nil
		}
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, apperrors.NewNotFound("profile", map[string]any{"userId": claims.UserID})
		}
		s.logger.Warn("session cache refresh failed", zap.String("user_id", claims.UserID), zap.Error(err))
	}

	profile, err := s.profiles.GetByUserID(ctx, claims.UserID)
	if err != nil {
		return nil, lookupError("load profile", "profile", claims.UserID, err)
	}
	return profile, nil
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
