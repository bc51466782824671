package pgx

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okrent/vouch"
)

type Adapter struct {
	pool *pgxpool.Pool
}

var _ vouch.AuthStorage = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{
		pool: pool,
	}
}
