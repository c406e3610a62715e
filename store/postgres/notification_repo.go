package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/varsityhq/varsity-server/internal/errors"
	"github.com/varsityhq/varsity-server/notifications"
)

// NotificationRepo implements notifications.Repo on Postgres. The claim-and-mark
// step is a single conditional UPDATE, so only one concurrent claimer can win
// any given record.
type NotificationRepo struct {
	pool *pgxpool.Pool
}

var _ notifications.Repo = (*NotificationRepo)(nil)

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Create(ctx context.Context, n *notifications.Notification) error {
	if n.ID == "" {
		n.ID = notifications.NewID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, target_date, event_id, device_tokens, active, member_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, n.ID, n.TargetDate, n.EventID, n.DeviceTokens, n.Active, n.MemberID, n.CreatedAt)
	return err
}

func (r *NotificationRepo) GetByID(ctx context.Context, id string) (*notifications.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, target_date, event_id, device_tokens, active, member_id, created_at
		FROM notifications
		WHERE id = $1
	`, id)

	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotificationNotFound
	}
	return n, err
}

func (r *NotificationRepo) ListByMember(ctx context.Context, memberID string) ([]*notifications.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, target_date, event_id, device_tokens, active, member_id, created_at
		FROM notifications
		WHERE member_id = $1
		ORDER BY target_date, id
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (r *NotificationRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// ClaimDue atomically flips active off for every record due on day and
// returns the claimed rows.
func (r *NotificationRepo) ClaimDue(ctx context.Context, day time.Time) ([]*notifications.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE notifications
		SET active = FALSE
		WHERE target_date = $1 AND active
		RETURNING id, target_date, event_id, device_tokens, active, member_id, created_at
	`, notifications.DateOf(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectNotifications(rows)
}

func (r *NotificationRepo) Reactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET active = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*notifications.Notification, error) {
	var n notifications.Notification
	err := row.Scan(
		&n.ID,
		&n.TargetDate,
		&n.EventID,
		&n.DeviceTokens,
		&n.Active,
		&n.MemberID,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.TargetDate = notifications.DateOf(n.TargetDate)
	return &n, nil
}

func collectNotifications(rows pgx.Rows) ([]*notifications.Notification, error) {
	var result []*notifications.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
