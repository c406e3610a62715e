package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/varsityhq/varsity-server/token"
)

// Blacklist implements token.Blacklist on Postgres, making revocations visible
// to every service instance. Lookups only count entries whose expiry has not
// passed, so stale rows never reject a token; Cleanup physically removes them.
type Blacklist struct {
	pool *pgxpool.Pool
}

var _ token.Blacklist = (*Blacklist)(nil)

func NewBlacklist(pool *pgxpool.Pool) *Blacklist {
	return &Blacklist{pool: pool}
}

func (b *Blacklist) Add(ctx context.Context, jti string, exp time.Time) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO token_blacklist (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE SET expires_at = GREATEST(token_blacklist.expires_at, EXCLUDED.expires_at)
	`, jti, exp)
	return err
}

// Consume inserts jti if no live entry exists, claiming expired rows as well.
// The conditional upsert makes the claim atomic: of any number of concurrent
// consumers exactly one sees a row change.
func (b *Blacklist) Consume(ctx context.Context, jti string, exp time.Time) (bool, error) {
	tag, err := b.pool.Exec(ctx, `
		INSERT INTO token_blacklist (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE SET expires_at = EXCLUDED.expires_at
		WHERE token_blacklist.expires_at <= now()
	`, jti, exp)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (b *Blacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := b.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM token_blacklist
			WHERE jti = $1 AND expires_at > now()
		)
	`, jti).Scan(&revoked)
	if err != nil {
		return false, err
	}
	return revoked, nil
}

func (b *Blacklist) Cleanup(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, `DELETE FROM token_blacklist WHERE expires_at <= now()`)
	return err
}
