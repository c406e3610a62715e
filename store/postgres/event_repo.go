package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/varsityhq/varsity-server/calendar"
	apperrors "github.com/varsityhq/varsity-server/internal/errors"
)

// EventRepo implements the read-only calendar.Repo on Postgres. Event writes
// are owned by another service.
type EventRepo struct {
	pool *pgxpool.Pool
}

var _ calendar.Repo = (*EventRepo)(nil)

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool}
}

func (r *EventRepo) Get(ctx context.Context, id string) (*calendar.Event, error) {
	var event calendar.Event

	err := r.pool.QueryRow(ctx, `
		SELECT id, title, COALESCE(starts_at, 'epoch'), COALESCE(ends_at, 'epoch'), created_at
		FROM calendar_events
		WHERE id = $1
	`, id).Scan(
		&event.ID,
		&event.Title,
		&event.StartsAt,
		&event.EndsAt,
		&event.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}

	return &event, nil
}
