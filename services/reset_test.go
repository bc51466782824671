package services

import (
	"errors"
	"testing"
	"time"

	"github.com/okrent/vouch/core"
	"github.com/okrent/vouch/pkg/crypto"
)

func newResetService(storage *FakeAuthStorage, ttl time.Duration) *ResetTokenService {
	return NewResetTokenService(ResetConfig{TTL: ttl}, storage, storage, testPasswords())
}

func seedUser(t *testing.T, storage *FakeAuthStorage, email, password string) *core.User {
	t.Helper()
	hash, err := testPasswords().Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	user := &core.User{
		ID:           "user-" + email,
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
	}
	if err := storage.CreateUser(user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return user
}

// Requirement: Issue returns the raw token exactly once and stores only its
// hash.
func TestResetTokenService_Issue(t *testing.T) {
	// Arrange
	storage := NewFakeAuthStorage()
	seedUser(t, storage, "a@x.com", "longpass1")
	svc := newResetService(storage, time.Hour)

	// Act
	raw, user, err := svc.Issue("a@x.com")

	// Assert
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if user == nil || raw == "" {
		t.Fatal("Issue() should return user and raw token")
	}
	stored := storage.resets["a@x.com"]
	if stored == nil {
		t.Fatal("reset token should be stored")
	}
	if stored.TokenHash == raw {
		t.Error("stored value must be a hash, not the raw token")
	}
	if stored.TokenHash != crypto.HashToken(raw) {
		t.Error("stored hash should match the raw token's hash")
	}
}

// Requirement: issuing for an unknown email reports success, writes nothing
// and returns no user.
func TestResetTokenService_Issue_UnknownEmail(t *testing.T) {
	storage := NewFakeAuthStorage()
	svc := newResetService(storage, time.Hour)

	raw, user, err := svc.Issue("nobody@x.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if raw != "" || user != nil {
		t.Error("Issue() for unknown email should return empty results")
	}
	if storage.ResetTokenCount() != 0 {
		t.Error("Issue() for unknown email must not write a token")
	}
}

// Requirement: at most one live reset token per email; re-issuing
// invalidates the previous token.
func TestResetTokenService_ReissueInvalidatesPrevious(t *testing.T) {
	// Arrange
	storage := NewFakeAuthStorage()
	seedUser(t, storage, "a@x.com", "longpass1")
	svc := newResetService(storage, time.Hour)

	first, _, err := svc.Issue("a@x.com")
	if err != nil {
		t.Fatalf("first Issue() error = %v", err)
	}
	second, _, err := svc.Issue("a@x.com")
	if err != nil {
		t.Fatalf("second Issue() error = %v", err)
	}

	// Act + Assert: first token is dead, second works
	if err := svc.Consume("a@x.com", first, "newpass123"); !errors.Is(err, core.ErrResetInvalid) {
		t.Errorf("Consume() of superseded token error = %v, want ErrResetInvalid", err)
	}
	if err := svc.Consume("a@x.com", second, "newpass123"); err != nil {
		t.Errorf("Consume() of current token error = %v", err)
	}
}

// Requirement: every invalid consume input collapses into the same error, so
// the caller cannot probe which part was wrong.
func TestResetTokenService_Consume_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		ttl   time.Duration
		email string
		token func(issued string) string
	}{
		{
			name:  "unknown email",
			ttl:   time.Hour,
			email: "nobody@x.com",
			token: func(issued string) string { return issued },
		},
		{
			name:  "wrong token",
			ttl:   time.Hour,
			email: "a@x.com",
			token: func(string) string { return "not-the-token" },
		},
		{
			name:  "expired token",
			ttl:   -time.Minute, // already past its window
			email: "a@x.com",
			token: func(issued string) string { return issued },
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			storage := NewFakeAuthStorage()
			seedUser(t, storage, "a@x.com", "longpass1")
			svc := newResetService(storage, time.Hour)

			issued, _, err := svc.Issue("a@x.com")
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}

			consumer := newResetService(storage, test.ttl)

			// Act
			err = consumer.Consume(test.email, test.token(issued), "newpass123")

			// Assert
			if !errors.Is(err, core.ErrResetInvalid) {
				t.Errorf("Consume() error = %v, want ErrResetInvalid", err)
			}
		})
	}
}

// Requirement: a consumed token is spent; the same token cannot reset twice.
func TestResetTokenService_Consume_SingleUse(t *testing.T) {
	storage := NewFakeAuthStorage()
	seedUser(t, storage, "a@x.com", "longpass1")
	svc := newResetService(storage, time.Hour)

	raw, _, err := svc.Issue("a@x.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if err := svc.Consume("a@x.com", raw, "newpass123"); err != nil {
		t.Fatalf("first Consume() error = %v", err)
	}
	if err := svc.Consume("a@x.com", raw, "anotherpass1"); !errors.Is(err, core.ErrResetInvalid) {
		t.Errorf("second Consume() error = %v, want ErrResetInvalid", err)
	}
}

// Requirement: a failed password update does not spend the token; the
// password stays unchanged and the same mailed token succeeds on retry.
func TestResetTokenService_Consume_RetriesAfterUpdateFailure(t *testing.T) {
	// Arrange
	storage := NewFakeAuthStorage()
	seedUser(t, storage, "a@x.com", "longpass1")
	svc := newResetService(storage, time.Hour)

	raw, _, err := svc.Issue("a@x.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Act: the update step fails after the token was spent
	storage.updateErr = errors.New("storage down")
	err = svc.Consume("a@x.com", raw, "newpass123")

	// Assert
	if err == nil || errors.Is(err, core.ErrResetInvalid) {
		t.Fatalf("Consume() error = %v, want a wrapped storage failure", err)
	}
	user, gerr := storage.GetUserByEmail("a@x.com")
	if gerr != nil {
		t.Fatalf("GetUserByEmail() error = %v", gerr)
	}
	if ok, verr := testPasswords().Verify("longpass1", user.PasswordHash); verr != nil || !ok {
		t.Error("password must be unchanged after a failed update")
	}

	// The same token retries once storage recovers.
	storage.updateErr = nil
	if err := svc.Consume("a@x.com", raw, "newpass123"); err != nil {
		t.Fatalf("retry Consume() error = %v", err)
	}
	if err := svc.Consume("a@x.com", raw, "anotherpass1"); !errors.Is(err, core.ErrResetInvalid) {
		t.Errorf("spent token Consume() error = %v, want ErrResetInvalid", err)
	}
}

// Requirement: a successful consume installs the new password hash and
// rotates the remember token.
func TestResetTokenService_Consume_RotatesCredentials(t *testing.T) {
	// Arrange
	storage := NewFakeAuthStorage()
	user := seedUser(t, storage, "a@x.com", "longpass1")
	oldHash := user.PasswordHash
	svc := newResetService(storage, time.Hour)

	raw, _, err := svc.Issue("a@x.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Act
	if err := svc.Consume("a@x.com", raw, "newpass123"); err != nil {
		t.Fatalf("Consume() error = %v", err)
	}

	// Assert
	updated, err := storage.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if updated.PasswordHash == oldHash {
		t.Error("password hash should change")
	}
	if updated.RememberToken == "" || updated.RememberToken == user.RememberToken {
		t.Error("remember token should rotate")
	}
	ok, err := testPasswords().Verify("newpass123", updated.PasswordHash)
	if err != nil || !ok {
		t.Errorf("new password should verify, got ok=%v err=%v", ok, err)
	}
}
