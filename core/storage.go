package core

import "time"

// Storage ports. Adapters translate these into a concrete persistence engine;
// the services only ever see these interfaces.

// UserStorage defines user-related database operations.
//
// The system of record for email uniqueness: CreateUser must check-and-insert
// atomically (unique constraint or equivalent) so that two concurrent
// registrations with the same email produce exactly one success and one
// ErrEmailTaken.
type UserStorage interface {
	// CreateUser inserts a new user. Returns ErrEmailTaken if the email
	// is already registered.
	CreateUser(u *User) error

	// Query methods. Absence is reported as ErrUserNotFound, not as a
	// nil-nil pair.
	GetUserByID(id string) (*User, error)
	GetUserByEmail(email string) (*User, error)

	// MarkEmailVerified sets the verification timestamp if it is unset and
	// reports whether this call performed the transition. Calling it on an
	// already-verified user returns false with no error; an unknown id
	// returns ErrUserNotFound. Two concurrent calls for the same user must
	// yield exactly one true.
	MarkEmailVerified(id string, verifiedAt time.Time) (bool, error)

	// UpdatePassword replaces the password hash and remember token.
	// Returns ErrUserNotFound if the id is unknown.
	UpdatePassword(id, passwordHash, rememberToken string) error

	DeleteUser(id string) error
}

// AccessTokenStorage defines bearer-token database operations.
type AccessTokenStorage interface {
	CreateAccessToken(t *AccessToken) error

	// GetAccessTokenByHash returns ErrTokenNotFound on absence. Revoked and
	// expired tokens are returned as stored; callers decide how to treat them.
	GetAccessTokenByHash(tokenHash string) (*AccessToken, error)

	// RevokeAccessToken marks the token revoked. Returns ErrTokenNotFound
	// if the id is unknown.
	RevokeAccessToken(id string) error

	// Cleanup
	DeleteExpiredAccessTokens() (int, error)
}

// ResetTokenStorage defines password-reset token database operations.
type ResetTokenStorage interface {
	// SaveResetToken stores the token for its email, replacing any pending
	// token for that email (overwrite-on-reissue) and clearing a previous
	// consumed marker.
	SaveResetToken(t *ResetToken) error

	// ConsumeResetToken atomically marks the token consumed if and only if
	// the email/hash pair matches an unconsumed token created after
	// issuedAfter. Any mismatch, including an already-consumed token,
	// returns ErrResetInvalid. Two concurrent calls for the same token
	// must yield exactly one success.
	ConsumeResetToken(email, tokenHash string, issuedAfter time.Time) error

	// RestoreResetToken clears the consumed marker for the email/hash pair,
	// keeping its original creation time. Compensation for a failed step
	// after a successful consume; unknown pairs are a no-op.
	RestoreResetToken(email, tokenHash string) error
}

// AuthStorage is the composed port the services are wired against.
type AuthStorage interface {
	UserStorage
	AccessTokenStorage
	ResetTokenStorage
}

// TokenCache defines the optional read-through cache in front of
// AccessTokenStorage on the validation path.
type TokenCache interface {
	Get(tokenHash string) (*AccessToken, error)
	Set(tokenHash string, token *AccessToken) error
	Delete(tokenHash string) error
	Clear() error
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}
