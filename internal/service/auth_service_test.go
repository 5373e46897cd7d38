package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsanbid/bravo-test-sub001/internal/auth"
	"github.com/devsanbid/bravo-test-sub001/internal/config"
	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	"github.com/devsanbid/bravo-test-sub001/internal/repository"
	apperrors "github.com/devsanbid/bravo-test-sub001/pkg/util"
)

type authFixture struct {
	svc      *AuthService
	identity *fakeIdentity
	docs     *flakyDocs
	profiles repository.ProfileRepository
	tokens   *auth.TokenManager
	cache    *fakeCache
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	identity := newFakeIdentity()
	docs := newFlakyDocs()
	profiles := repository.NewProfileRepository(docs, "users")
	tokens := auth.NewTokenManager("test-secret", time.Hour, nil)
	cache := &fakeCache{profiles: map[string]*domain.Profile{}, load: profiles.GetByUserID}

	svc := NewAuthService(config.AuthConfig{MinPasswordLength: 8}, AuthDependencies{
		Identity:     identity,
		ProfileRepo:  profiles,
		TokenManager: tokens,
		Resolver:     auth.NewSessionResolver(tokens, "prep_session", nil),
		Cache:        cache,
	})
	return &authFixture{svc: svc, identity: identity, docs: docs, profiles: profiles, tokens: tokens, cache: cache}
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:     "asha@example.com",
		Password:  "correct-horse",
		FirstName: "Asha",
		LastName:  "Rai",
		Service:   "IELTS",
	}
}

func TestRegisterCreatesStudentProfile(t *testing.T) {
	f := newAuthFixture(t)

	profile, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, profile.Role)
	assert.Equal(t, "users", profile.CollectionID)

	stored, err := f.profiles.GetByUserID(context.Background(), profile.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", stored.FirstName)
	assert.Equal(t, []string{profile.UserID}, f.identity.verificationMail)
}

func TestRegisterValidatesBeforeBackend(t *testing.T) {
	f := newAuthFixture(t)

	in := validRegistration()
	in.LastName = ""
	_, err := f.svc.Register(context.Background(), in)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	in = validRegistration()
	in.Password = "short"
	_, err = f.svc.Register(context.Background(), in)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	assert.Empty(t, f.identity.accounts)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), validRegistration())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestRegisterCompensatesFailedProfileWrite(t *testing.T) {
	f := newAuthFixture(t)
	f.docs.createErr = errors.New("quota exceeded")

	_, err := f.svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBackend))
	require.Len(t, f.identity.deletedAccounts, 1)
	assert.Empty(t, f.identity.accounts)
}

func TestRegisterReportsFailedCompensation(t *testing.T) {
	f := newAuthFixture(t)
	profileErr := errors.New("quota exceeded")
	compErr := errors.New("identity service down")
	f.docs.createErr = profileErr
	f.identity.deleteAccountErr = compErr

	_, err := f.svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.ErrorIs(t, err, profileErr)
	assert.ErrorIs(t, err, compErr)
	assert.Len(t, f.identity.accounts, 1)
}

func TestLoginIssuesTokenFromProfile(t *testing.T) {
	f := newAuthFixture(t)
	profile, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	result, err := f.svc.Login(context.Background(), "asha@example.com", "correct-horse")
	require.NoError(t, err)

	claims := f.svc.ResolveCurrentUser(result.Token)
	require.NotNil(t, claims)
	assert.Equal(t, profile.UserID, claims.UserID)
	assert.Equal(t, profile.ID, claims.RecordID)
	assert.Equal(t, "users", claims.CollectionRef)
	assert.Equal(t, domain.RoleStudent, claims.Role)
	assert.Equal(t, result.SessionID, claims.SessionID())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), "asha@example.com", "wrong-password")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuth))
}

func TestLoginWithoutProfileFailsAndDropsSession(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.identity.CreateAccount(context.Background(), "ghost@example.com", "correct-horse", "Ghost")
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), "ghost@example.com", "correct-horse")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuth))
	assert.Zero(t, f.identity.sessionCount())
}

func TestLogoutDeletesBackendSession(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	result, err := f.svc.Login(context.Background(), "asha@example.com", "correct-horse")
	require.NoError(t, err)
	claims := f.svc.ResolveCurrentUser(result.Token)

	require.NoError(t, f.svc.Logout(context.Background(), claims))
	assert.Zero(t, f.identity.sessionCount())
	assert.Equal(t, []string{claims.UserID}, f.cache.invalidated)

	require.NoError(t, f.svc.Logout(context.Background(), claims))
	require.NoError(t, f.svc.Logout(context.Background(), nil))
}

func TestLogoutPropagatesBackendFailure(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	result, err := f.svc.Login(context.Background(), "asha@example.com", "correct-horse")
	require.NoError(t, err)

	f.identity.deleteSessionErr = errors.New("unreachable")
	err = f.svc.Logout(context.Background(), f.svc.ResolveCurrentUser(result.Token))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeBackend))
}

func TestIsEmailVerifiedFailsOpenToFalse(t *testing.T) {
	f := newAuthFixture(t)
	profile, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.False(t, f.svc.IsEmailVerified(context.Background(), profile.UserID))
	require.NoError(t, f.svc.ConfirmVerification(context.Background(), profile.UserID, "good"))
	assert.True(t, f.svc.IsEmailVerified(context.Background(), profile.UserID))

	f.identity.verifiedErr = errors.New("timeout")
	assert.False(t, f.svc.IsEmailVerified(context.Background(), profile.UserID))
}

func TestVerificationAndRecoveryErrors(t *testing.T) {
	f := newAuthFixture(t)
	profile, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	err = f.svc.SendVerificationEmail(context.Background(), "unknown")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	err = f.svc.ConfirmVerification(context.Background(), profile.UserID, "bad")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAuth))

	require.NoError(t, f.svc.RequestRecovery(context.Background(), "nobody@example.com"))
	require.NoError(t, f.svc.RequestRecovery(context.Background(), "asha@example.com"))
	assert.Equal(t, []string{"asha@example.com"}, f.identity.recoveryMails)

	err = f.svc.ConfirmRecovery(context.Background(), profile.UserID, "good", "short")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	require.NoError(t, f.svc.ConfirmRecovery(context.Background(), profile.UserID, "good", "new-password"))

	_, err = f.svc.Login(context.Background(), "asha@example.com", "new-password")
	assert.NoError(t, err)
}

func TestCurrentProfileUsesCache(t *testing.T) {
	f := newAuthFixture(t)
	profile, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	claims := &auth.Claims{SessionUser: profile.SessionUser()}

	got, err := f.svc.CurrentProfile(context.Background(), claims, false)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)
	assert.Equal(t, 1, f.cache.refreshes)

	_, err = f.svc.CurrentProfile(context.Background(), claims, false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.refreshes)

	_, err = f.svc.CurrentProfile(context.Background(), claims, true)
	require.NoError(t, err)
	assert.Equal(t, 2, f.cache.refreshes)

	_, err = f.svc.CurrentProfile(context.Background(), &auth.Claims{SessionUser: domain.SessionUser{UserID: "missing"}}, false)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
