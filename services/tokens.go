package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okrent/vouch/core"
	"github.com/okrent/vouch/pkg/crypto"
)

// TokenConfig controls bearer token issuance.
type TokenConfig struct {
	TTL time.Duration
}

// DefaultTokenConfig returns the issuance defaults.
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{TTL: 15 * time.Minute}
}

// TokenIssuer mints and validates bearer access tokens. The raw token leaves
// the issuer exactly once, at mint time; storage and cache only ever hold its
// hash. Expiry is a declarative property checked at read time, not a timer.
type TokenIssuer struct {
	config  TokenConfig
	storage core.AccessTokenStorage
	cache   core.TokenCache // optional, can be nil if caching is disabled
}

// MintResult couples the stored token record with the raw value for the
// client.
type MintResult struct {
	Token *core.AccessToken `json:"token"`
	Raw   string            `json:"raw"` // The raw token (not the hash)
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(config TokenConfig, storage core.AccessTokenStorage, cache core.TokenCache) *TokenIssuer {
	if config.TTL <= 0 {
		config.TTL = DefaultTokenConfig().TTL
	}
	return &TokenIssuer{config: config, storage: storage, cache: cache}
}

// Mint issues a fresh access token for the user. Many live tokens per user
// are valid; each mint is independent.
func (ti *TokenIssuer) Mint(userID string) (*MintResult, error) {
	pair, err := crypto.GenerateHashedToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	token := &core.AccessToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: pair.Hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(ti.config.TTL),
	}

	if err := ti.storage.CreateAccessToken(token); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}

	// Cache the token if caching is enabled; a cache failure never fails
	// the mint.
	if ti.cache != nil {
		_ = ti.cache.Set(pair.Hash, token)
	}

	return &MintResult{Token: token, Raw: pair.Token}, nil
}

// Validate checks a presented raw token and returns its record. Revoked
// tokens fail exactly like nonexistent ones; expired tokens report
// ErrTokenExpired.
func (ti *TokenIssuer) Validate(raw string) (*core.AccessToken, error) {
	if raw == "" {
		return nil, core.ErrInvalidToken
	}

	tokenHash := crypto.HashToken(raw)

	// Try cache first if caching is enabled
	if ti.cache != nil {
		if token, err := ti.cache.Get(tokenHash); err == nil {
			return ti.checkToken(token, tokenHash)
		}
		// Cache miss - fall through to storage
	}

	token, err := ti.storage.GetAccessTokenByHash(tokenHash)
	if err != nil {
		return nil, core.ErrInvalidToken
	}

	checked, err := ti.checkToken(token, tokenHash)
	if err != nil {
		return nil, err
	}

	if ti.cache != nil {
		_ = ti.cache.Set(tokenHash, checked)
	}

	return checked, nil
}

func (ti *TokenIssuer) checkToken(token *core.AccessToken, tokenHash string) (*core.AccessToken, error) {
	if token.Revoked {
		// Fails as if nonexistent
		if ti.cache != nil {
			_ = ti.cache.Delete(tokenHash)
		}
		return nil, core.ErrInvalidToken
	}
	if time.Now().After(token.ExpiresAt) {
		if ti.cache != nil {
			_ = ti.cache.Delete(tokenHash)
		}
		return nil, core.ErrTokenExpired
	}
	return token, nil
}

// Revoke marks a token revoked by record id. Subsequent use fails as if the
// token never existed. The cache is cleared wholesale because it is keyed by
// hash and the hash is not recoverable from the id.
func (ti *TokenIssuer) Revoke(tokenID string) error {
	if err := ti.storage.RevokeAccessToken(tokenID); err != nil {
		return err
	}
	if ti.cache != nil {
		_ = ti.cache.Clear()
	}
	return nil
}

// RevokePresented revokes the token behind a presented raw value (logout).
func (ti *TokenIssuer) RevokePresented(raw string) error {
	if raw == "" {
		return core.ErrInvalidToken
	}

	tokenHash := crypto.HashToken(raw)
	token, err := ti.storage.GetAccessTokenByHash(tokenHash)
	if err != nil {
		return core.ErrInvalidToken
	}

	if err := ti.storage.RevokeAccessToken(token.ID); err != nil {
		return err
	}
	if ti.cache != nil {
		_ = ti.cache.Delete(tokenHash)
	}
	return nil
}

// PurgeExpired deletes tokens whose expiry has passed. Housekeeping only;
// validation never depends on it.
func (ti *TokenIssuer) PurgeExpired() (int, error) {
	return ti.storage.DeleteExpiredAccessTokens()
}
