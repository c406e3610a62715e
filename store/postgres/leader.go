package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/varsityhq/varsity-server/notifications"
)

// AdvisoryLockLeader coordinates the daily dispatch trigger across service
// instances with a Postgres session advisory lock. Only the holder runs the
// dispatch; the lock is released when the run completes.
type AdvisoryLockLeader struct {
	pool *pgxpool.Pool
	key  int64
}

var _ notifications.Leader = (*AdvisoryLockLeader)(nil)

func NewAdvisoryLockLeader(pool *pgxpool.Pool, key int64) *AdvisoryLockLeader {
	return &AdvisoryLockLeader{pool: pool, key: key}
}

func (l *AdvisoryLockLeader) Acquire(ctx context.Context) (bool, func(), error) {
	// Session-level lock, so the connection is pinned until release.
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return false, nil, errors.Wrap(err, "AdvisoryLockLeader.Acquire pool")
	}

	var acquired bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, l.key).Scan(&acquired); err != nil {
		conn.Release()
		return false, nil, errors.Wrap(err, "AdvisoryLockLeader.Acquire pg_try_advisory_lock")
	}
	if !acquired {
		conn.Release()
		return false, func() {}, nil
	}

	release := func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, l.key)
		conn.Release()
	}
	return true, release, nil
}
