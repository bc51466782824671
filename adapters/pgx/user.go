package pgx

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/okrent/vouch"
)

// uniqueViolation is the SQLSTATE for a unique constraint conflict.
const uniqueViolation = "23505"

func (a *Adapter) CreateUser(user *vouch.User) error {
	ctx := context.Background()

	query := `INSERT INTO public.users (id, email, name, password_hash) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`
	var createdAt, updatedAt time.Time

	err := a.pool.QueryRow(ctx, query, user.ID, user.Email, user.Name, user.PasswordHash).Scan(&createdAt, &updatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return vouch.ErrEmailTaken
		}
		return err
	}

	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt
	return nil
}

func (a *Adapter) GetUserByID(id string) (*vouch.User, error) {
	ctx := context.Background()
	q := `SELECT id, email, name, password_hash, remember_token, email_verified_at, created_at, updated_at FROM public.users WHERE id = $1`

	return a.scanUser(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) GetUserByEmail(email string) (*vouch.User, error) {
	ctx := context.Background()
	q := `SELECT id, email, name, password_hash, remember_token, email_verified_at, created_at, updated_at FROM public.users WHERE email = $1`

	return a.scanUser(a.pool.QueryRow(ctx, q, email))
}

func (a *Adapter) scanUser(row pgx.Row) (*vouch.User, error) {
	user := &vouch.User{}
	var rememberToken *string
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &rememberToken, &user.EmailVerifiedAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vouch.ErrUserNotFound
		}
		return nil, err
	}
	if rememberToken != nil {
		user.RememberToken = *rememberToken
	}
	return user, nil
}

// MarkEmailVerified performs the unverified-to-verified transition in one
// conditional update, so concurrent calls resolve to exactly one true. The
// first verification timestamp is never overwritten.
func (a *Adapter) MarkEmailVerified(id string, verifiedAt time.Time) (bool, error) {
	ctx := context.Background()
	q := `UPDATE public.users SET email_verified_at = $1, updated_at = now() WHERE id = $2 AND email_verified_at IS NULL`

	tag, err := a.pool.Exec(ctx, q, verifiedAt, id)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		// Either already verified or no such user; distinguish the two.
		if _, err := a.GetUserByID(id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (a *Adapter) UpdatePassword(id, passwordHash, rememberToken string) error {
	ctx := context.Background()
	q := `UPDATE public.users SET password_hash = $1, remember_token = $2, updated_at = now() WHERE id = $3`

	tag, err := a.pool.Exec(ctx, q, passwordHash, rememberToken, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return vouch.ErrUserNotFound
	}
	return nil
}

func (a *Adapter) DeleteUser(id string) error {
	ctx := context.Background()
	_, err := a.pool.Exec(ctx, `DELETE FROM public.users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return nil
}
