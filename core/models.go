package core

import "time"

// User represents an identity record in the system.
//
// This is the "identity" - who someone is. The password hash and remember
// token are credentials and never serialize to JSON.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	PasswordHash    string     `json:"-"` // Never expose in JSON
	RememberToken   string     `json:"-"` // Rotated on password reset
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// EmailVerified reports whether the user has proven ownership of their
// email address. Verification happens at most once and is never cleared.
func (u *User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}

// AccessToken represents a bearer credential scoped to a user.
//
// The raw token is handed to the client exactly once at mint time; storage
// only ever sees its hash. A user may hold many live tokens at a time,
// one per device.
type AccessToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"` // Never expose in JSON (security!)
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"-"`
}

// ResetToken represents a single-use password recovery credential.
//
// At most one row exists per email; re-issuing overwrites the pending token.
// Only the hash of the raw token is ever stored.
type ResetToken struct {
	Email      string     `json:"email"`
	TokenHash  string     `json:"-"` // Never expose in JSON (security!)
	CreatedAt  time.Time  `json:"createdAt"`
	ConsumedAt *time.Time `json:"-"`
}

// Consumed reports whether the token was already spent.
func (t *ResetToken) Consumed() bool {
	return t.ConsumedAt != nil
}
