package pgx

import (
	"context"
	"time"

	"github.com/okrent/vouch"
)

// SaveResetToken upserts on email: re-issuing replaces any pending token and
// clears its consumed state, so at most one token per email is ever live.
func (a *Adapter) SaveResetToken(token *vouch.ResetToken) error {
	ctx := context.Background()
	q := `INSERT INTO public.password_reset_tokens (email, token_hash, created_at, consumed_at)
	      VALUES ($1, $2, $3, NULL)
	      ON CONFLICT (email) DO UPDATE SET token_hash = $2, created_at = $3, consumed_at = NULL`

	_, err := a.pool.Exec(ctx, q, token.Email, token.TokenHash, token.CreatedAt)
	return err
}

// ConsumeResetToken spends a token in a single conditional update. The row
// must match the hash, be unconsumed and have been issued after the cutoff;
// anything else reports ErrResetInvalid without saying which check failed.
func (a *Adapter) ConsumeResetToken(email, tokenHash string, issuedAfter time.Time) error {
	ctx := context.Background()
	q := `UPDATE public.password_reset_tokens SET consumed_at = now()
	      WHERE email = $1 AND token_hash = $2 AND consumed_at IS NULL AND created_at > $3`

	tag, err := a.pool.Exec(ctx, q, email, tokenHash, issuedAfter)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return vouch.ErrResetInvalid
	}
	return nil
}

// RestoreResetToken un-consumes the email/hash pair, keeping its created_at.
func (a *Adapter) RestoreResetToken(email, tokenHash string) error {
	ctx := context.Background()
	q := `UPDATE public.password_reset_tokens SET consumed_at = NULL
	      WHERE email = $1 AND token_hash = $2`

	_, err := a.pool.Exec(ctx, q, email, tokenHash)
	return err
}
