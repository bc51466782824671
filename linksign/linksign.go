// Package linksign wraps email-verification fingerprints in a tamper-evident,
// time-boxed envelope. The envelope proves the link came from this server and
// is still fresh; the fingerprint inside separately binds the link to the
// user's current email. Both checks must pass before a verification succeeds.
package linksign

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTTL = time.Hour

// ErrInvalidGrant covers every envelope failure: bad signature, wrong
// algorithm, expiry, malformed token. They are deliberately collapsed so the
// caller cannot be used as an oracle.
var ErrInvalidGrant = errors.New("invalid or expired verification link")

// Config defines how grants are signed and verified.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

// Grant holds the validated contents of a verification link.
type Grant struct {
	UserID      string
	Fingerprint string
}

// grantClaims is the internal claims type used for JWT encoding.
type grantClaims struct {
	jwt.RegisteredClaims
	Fingerprint string `json:"fpt"`
}

// Signer mints and verifies HS256 grants.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// New returns a Signer for the given config.
func New(cfg Config) (*Signer, error) {
	if cfg.Secret == "" {
		return nil, errors.New("linksign: secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Signer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}, nil
}

// Sign produces a grant for the given user and fingerprint, valid for the
// configured TTL.
func (s *Signer) Sign(userID, fingerprint string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, grantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Fingerprint: fingerprint,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign grant: %w", err)
	}
	return signed, nil
}

// Verify checks the envelope and returns its contents. Every failure maps to
// ErrInvalidGrant.
func (s *Signer) Verify(grant string) (*Grant, error) {
	var claims grantClaims
	_, err := jwt.ParseWithClaims(grant, &claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidGrant
	}
	if claims.Subject == "" || claims.Fingerprint == "" {
		return nil, ErrInvalidGrant
	}

	return &Grant{
		UserID:      claims.Subject,
		Fingerprint: claims.Fingerprint,
	}, nil
}
