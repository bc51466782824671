package services

import (
	"sync"
	"time"

	"github.com/okrent/vouch/core"
)

// FakeAuthStorage is a test-only fake implementing core.AuthStorage. It
// stores records in maps and exposes error fields for behavior injection.
type FakeAuthStorage struct {
	mu sync.RWMutex

	usersByID    map[string]*core.User
	usersByEmail map[string]*core.User
	tokens       map[string]*core.AccessToken // keyed by token hash
	resets       map[string]*core.ResetToken  // keyed by email

	createUserErr  error
	getUserErr     error
	createTokenErr error
	getTokenErr    error
	saveResetErr   error
	updateErr      error
}

var _ core.AuthStorage = (*FakeAuthStorage)(nil)

// NewFakeAuthStorage returns an empty fake.
func NewFakeAuthStorage() *FakeAuthStorage {
	return &FakeAuthStorage{
		usersByID:    make(map[string]*core.User),
		usersByEmail: make(map[string]*core.User),
		tokens:       make(map[string]*core.AccessToken),
		resets:       make(map[string]*core.ResetToken),
	}
}

// UserStorage methods

func (f *FakeAuthStorage) CreateUser(u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createUserErr != nil {
		return f.createUserErr
	}
	if _, exists := f.usersByEmail[u.Email]; exists {
		return core.ErrEmailTaken
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	clone := *u
	f.usersByID[u.ID] = &clone
	f.usersByEmail[u.Email] = &clone
	return nil
}

func (f *FakeAuthStorage) GetUserByID(id string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	u, ok := f.usersByID[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *FakeAuthStorage) GetUserByEmail(email string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	u, ok := f.usersByEmail[email]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *FakeAuthStorage) MarkEmailVerified(id string, verifiedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.usersByID[id]
	if !ok {
		return false, core.ErrUserNotFound
	}
	if u.EmailVerifiedAt != nil {
		return false, nil
	}
	u.EmailVerifiedAt = &verifiedAt
	u.UpdatedAt = time.Now()
	return true, nil
}

func (f *FakeAuthStorage) UpdatePassword(id, passwordHash, rememberToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.usersByID[id]
	if !ok {
		return core.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.RememberToken = rememberToken
	u.UpdatedAt = time.Now()
	return nil
}

func (f *FakeAuthStorage) DeleteUser(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.usersByID[id]
	if !ok {
		return core.ErrUserNotFound
	}
	delete(f.usersByEmail, u.Email)
	delete(f.usersByID, id)
	return nil
}

// AccessTokenStorage methods

func (f *FakeAuthStorage) CreateAccessToken(t *core.AccessToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createTokenErr != nil {
		return f.createTokenErr
	}
	clone := *t
	f.tokens[t.TokenHash] = &clone
	return nil
}

func (f *FakeAuthStorage) GetAccessTokenByHash(tokenHash string) (*core.AccessToken, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getTokenErr != nil {
		return nil, f.getTokenErr
	}
	t, ok := f.tokens[tokenHash]
	if !ok {
		return nil, core.ErrTokenNotFound
	}
	clone := *t
	return &clone, nil
}

func (f *FakeAuthStorage) RevokeAccessToken(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.ID == id {
			t.Revoked = true
			return nil
		}
	}
	return core.ErrTokenNotFound
}

func (f *FakeAuthStorage) DeleteExpiredAccessTokens() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	now := time.Now()
	for k, t := range f.tokens {
		if now.After(t.ExpiresAt) {
			delete(f.tokens, k)
			count++
		}
	}
	return count, nil
}

// ResetTokenStorage methods

func (f *FakeAuthStorage) SaveResetToken(t *core.ResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveResetErr != nil {
		return f.saveResetErr
	}
	clone := *t
	clone.ConsumedAt = nil
	f.resets[t.Email] = &clone
	return nil
}

func (f *FakeAuthStorage) ConsumeResetToken(email, tokenHash string, issuedAfter time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.resets[email]
	if !ok {
		return core.ErrResetInvalid
	}
	if t.TokenHash != tokenHash || t.Consumed() || !t.CreatedAt.After(issuedAfter) {
		return core.ErrResetInvalid
	}
	now := time.Now()
	t.ConsumedAt = &now
	return nil
}

func (f *FakeAuthStorage) RestoreResetToken(email, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.resets[email]
	if !ok || t.TokenHash != tokenHash {
		return nil
	}
	t.ConsumedAt = nil
	return nil
}

// ResetTokenCount reports the number of stored reset tokens, consumed or not.
func (f *FakeAuthStorage) ResetTokenCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.resets)
}

// FakeNotifier is a test-only Notifier that records sends and can inject
// failures.
type FakeNotifier struct {
	mu sync.Mutex

	VerificationSends  []string // recipient emails
	PasswordResetSends []string
	LastLink           string

	sendErr error
}

// NewFakeNotifier returns an empty fake notifier.
func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{}
}

func (f *FakeNotifier) SendVerification(user *core.User, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.VerificationSends = append(f.VerificationSends, user.Email)
	f.LastLink = link
	return nil
}

func (f *FakeNotifier) SendPasswordReset(user *core.User, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.PasswordResetSends = append(f.PasswordResetSends, user.Email)
	f.LastLink = link
	return nil
}

// VerificationCount reports how many verification emails were sent.
func (f *FakeNotifier) VerificationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.VerificationSends)
}

// PasswordResetCount reports how many reset emails were sent.
func (f *FakeNotifier) PasswordResetCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.PasswordResetSends)
}
