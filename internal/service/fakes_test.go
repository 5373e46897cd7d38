package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devsanbid/bravo-test-sub001/internal/domain"
	"github.com/devsanbid/bravo-test-sub001/internal/repository"
)

type flakyDocs struct {
	*repository.MemoryDocumentStore
	createErr error
	deleteErr error
	deletes   int
}

func newFlakyDocs() *flakyDocs {
	return &flakyDocs{MemoryDocumentStore: repository.NewMemoryDocumentStore()}
}

func (f *flakyDocs) Create(ctx context.Context, collection, id string, data map[string]any) (*repository.Document, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.MemoryDocumentStore.Create(ctx, collection, id, data)
}

func (f *flakyDocs) Delete(ctx context.Context, collection, id string) error {
	f.deletes++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryDocumentStore.Delete(ctx, collection, id)
}

type flakyFiles struct {
	*repository.MemoryFileStore
	deleteErr error
	puts      int
	deletes   []string
}

func newFlakyFiles() *flakyFiles {
	return &flakyFiles{MemoryFileStore: repository.NewMemoryFileStore("media", "https://prep.example")}
}

func (f *flakyFiles) Put(ctx context.Context, upload repository.FileUpload) (*domain.StoredFile, error) {
	f.puts++
	return f.MemoryFileStore.Put(ctx, upload)
}

func (f *flakyFiles) Delete(ctx context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryFileStore.Delete(ctx, id)
}

type fakeIdentity struct {
	mu               sync.Mutex
	accounts         map[string]*domain.Account
	passwords        map[string]string
	sessions         map[string]*domain.BackendSession
	deletedAccounts  []string
	deleteAccountErr error
	deleteSessionErr error
	verifiedErr      error
	recoveryMails    []string
	verificationMail []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		accounts:  map[string]*domain.Account{},
		passwords: map[string]string{},
		sessions:  map[string]*domain.BackendSession{},
	}
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, password, name string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			return nil, repository.ErrAccountExists
		}
	}
	account := &domain.Account{ID: uuid.NewString(), Email: email, Name: name}
	f.accounts[account.ID] = account
	f.passwords[account.ID] = password
	return account, nil
}

func (f *fakeIdentity) DeleteAccount(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedAccounts = append(f.deletedAccounts, accountID)
	if f.deleteAccountErr != nil {
		return f.deleteAccountErr
	}
	delete(f.accounts, accountID)
	return nil
}

func (f *fakeIdentity) CreateSession(_ context.Context, email, password string) (*domain.BackendSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.accounts {
		if a.Email == email && f.passwords[id] == password {
			s := &domain.BackendSession{ID: uuid.NewString(), UserID: id, CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
			f.sessions[s.ID] = s
			return s, nil
		}
	}
	return nil, ErrInvalidCredentials
}

func (f *fakeIdentity) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteSessionErr != nil {
		return f.deleteSessionErr
	}
	if _, ok := f.sessions[sessionID]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeIdentity) IsEmailVerified(_ context.Context, accountID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.verifiedErr != nil {
		return true, f.verifiedErr
	}
	a, ok := f.accounts[accountID]
	if !ok {
		return false, ErrAccountNotFound
	}
	return a.EmailVerified, nil
}

func (f *fakeIdentity) SendVerification(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[accountID]; !ok {
		return ErrAccountNotFound
	}
	f.verificationMail = append(f.verificationMail, accountID)
	return nil
}

func (f *fakeIdentity) ConfirmVerification(_ context.Context, accountID, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[accountID]
	if !ok || secret != "good" {
		return ErrInvalidSecret
	}
	a.EmailVerified = true
	return nil
}

func (f *fakeIdentity) SendRecovery(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			f.recoveryMails = append(f.recoveryMails, email)
			return nil
		}
	}
	return ErrAccountNotFound
}

func (f *fakeIdentity) ConfirmRecovery(_ context.Context, accountID, secret, newPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[accountID]; !ok || secret != "good" {
		return ErrInvalidSecret
	}
	f.passwords[accountID] = newPassword
	return nil
}

func (f *fakeIdentity) sessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

type fakeCache struct {
	profiles    map[string]*domain.Profile
	load        func(ctx context.Context, userID string) (*domain.Profile, error)
	refreshes   int
	invalidated []string
}

func (c *fakeCache) Get(_ context.Context, userID string) (*domain.Profile, bool, error) {
	p, ok := c.profiles[userID]
	return p, ok, nil
}

func (c *fakeCache) Refresh(ctx context.Context, userID string) (*domain.Profile, error) {
	c.refreshes++
	p, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.profiles[userID] = p
	return p, nil
}

func (c *fakeCache) Invalidate(_ context.Context, userID string) error {
	c.invalidated = append(c.invalidated, userID)
	delete(c.profiles, userID)
	return nil
}
