package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/okrent/vouch/core"
	"github.com/okrent/vouch/pkg/crypto"
)

const rememberTokenLength = 45 // bytes; 60 chars base64url encoded

// ResetConfig controls password reset token issuance.
type ResetConfig struct {
	TTL time.Duration
}

// DefaultResetConfig returns the reset defaults.
func DefaultResetConfig() ResetConfig {
	return ResetConfig{TTL: time.Hour}
}

// ResetTokenService issues and consumes single-use, time-limited password
// reset tokens. Only a hash of the raw token is ever stored; issuing a new
// token for an email invalidates the previous one.
type ResetTokenService struct {
	config    ResetConfig
	users     core.UserStorage
	tokens    core.ResetTokenStorage
	passwords crypto.PasswordHandler
}

// NewResetTokenService creates a ResetTokenService.
func NewResetTokenService(config ResetConfig, users core.UserStorage, tokens core.ResetTokenStorage, passwords crypto.PasswordHandler) *ResetTokenService {
	if config.TTL <= 0 {
		config.TTL = DefaultResetConfig().TTL
	}
	return &ResetTokenService{
		config:    config,
		users:     users,
		tokens:    tokens,
		passwords: passwords,
	}
}

// Issue generates a reset token for the email and returns the raw value for
// out-of-band delivery, along with the target user.
//
// If the email does not belong to a known user, Issue reports success with a
// nil user and performs no storage write. Callers must not reveal the
// difference to the requester (anti-enumeration).
func (s *ResetTokenService) Issue(email string) (string, *core.User, error) {
	email = core.NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	pair, err := crypto.GenerateHashedToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	// Overwrite-on-reissue: any pending token for this email is replaced.
	token := &core.ResetToken{
		Email:     email,
		TokenHash: pair.Hash,
		CreatedAt: time.Now(),
	}
	if err := s.tokens.SaveResetToken(token); err != nil {
		return "", nil, fmt.Errorf("failed to store reset token: %w", err)
	}

	return pair.Token, user, nil
}

// Consume spends a reset token and installs the new password. Any failure
// (unknown email, hash mismatch, expired, already consumed) collapses into
// core.ErrResetInvalid so the caller cannot tell which input was wrong.
//
// On success the token is marked consumed atomically, the password hash is
// replaced, and the remember token is rotated to invalidate stale sessions.
func (s *ResetTokenService) Consume(email, rawToken, newPassword string) error {
	email = core.NormalizeEmail(email)

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return core.ErrResetInvalid
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	// Prepare the new credentials before spending the token, so the consume
	// is the last step that can fail without leaving partial state.
	newHash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	remember, err := crypto.GenerateToken(rememberTokenLength)
	if err != nil {
		return fmt.Errorf("failed to rotate remember token: %w", err)
	}

	tokenHash := crypto.HashToken(rawToken)
	cutoff := time.Now().Add(-s.config.TTL)
	if err := s.tokens.ConsumeResetToken(email, tokenHash, cutoff); err != nil {
		if errors.Is(err, core.ErrResetInvalid) {
			return core.ErrResetInvalid
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	if err := s.users.UpdatePassword(user.ID, newHash, remember); err != nil {
		// Un-consume so the mailed token stays usable for a retry; the
		// password has not changed.
		if rerr := s.tokens.RestoreResetToken(email, tokenHash); rerr != nil {
			return fmt.Errorf("failed to update password: %w (restore failed: %v)", err, rerr)
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
