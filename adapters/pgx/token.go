package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/okrent/vouch"
)

func (a *Adapter) CreateAccessToken(token *vouch.AccessToken) error {
	ctx := context.Background()
	q := `INSERT INTO public.access_tokens (id, user_id, token_hash, issued_at, expires_at, revoked) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := a.pool.Exec(ctx, q, token.ID, token.UserID, token.TokenHash, token.IssuedAt, token.ExpiresAt, token.Revoked)
	return err
}

func (a *Adapter) GetAccessTokenByHash(tokenHash string) (*vouch.AccessToken, error) {
	ctx := context.Background()
	q := `SELECT id, user_id, token_hash, issued_at, expires_at, revoked FROM public.access_tokens WHERE token_hash = $1`

	token := &vouch.AccessToken{}
	err := a.pool.QueryRow(ctx, q, tokenHash).Scan(&token.ID, &token.UserID, &token.TokenHash, &token.IssuedAt, &token.ExpiresAt, &token.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vouch.ErrTokenNotFound
		}
		return nil, err
	}
	return token, nil
}

func (a *Adapter) RevokeAccessToken(id string) error {
	ctx := context.Background()
	q := `UPDATE public.access_tokens SET revoked = true WHERE id = $1`

	tag, err := a.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return vouch.ErrTokenNotFound
	}
	return nil
}

func (a *Adapter) DeleteExpiredAccessTokens() (int, error) {
	ctx := context.Background()
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.access_tokens WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
