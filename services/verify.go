package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/okrent/vouch/core"
)

// FingerprintVerifier derives the per-user verification fingerprint: a keyed
// signature over the user's id and current email. The fingerprint is
// deterministic, cannot be reversed to the secret, and changes whenever the
// email changes, so a stale link stops matching after an address change.
type FingerprintVerifier struct {
	secret []byte
}

// NewFingerprintVerifier returns a verifier bound to the server secret.
func NewFingerprintVerifier(secret string) *FingerprintVerifier {
	return &FingerprintVerifier{secret: []byte(secret)}
}

// Fingerprint computes the expected signature for a user.
func (v *FingerprintVerifier) Fingerprint(user *core.User) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(user.ID))
	mac.Write([]byte{0}) // unambiguous id/email boundary
	mac.Write([]byte(user.Email))
	return hex.EncodeToString(mac.Sum(nil))
}

// Matches compares a presented signature against the expected one in
// constant time. False covers both tamper and mismatch; it never explains
// which.
func (v *FingerprintVerifier) Matches(user *core.User, presented string) bool {
	expected := v.Fingerprint(user)
	return hmac.Equal([]byte(expected), []byte(presented))
}
