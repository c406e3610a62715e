package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/varsityhq/varsity-server/internal/errors"
	"github.com/varsityhq/varsity-server/members"
)

// MemberRepo implements members.Repo on Postgres.
type MemberRepo struct {
	pool *pgxpool.Pool
}

var _ members.Repo = (*MemberRepo)(nil)

func NewMemberRepo(pool *pgxpool.Pool) *MemberRepo {
	return &MemberRepo{pool: pool}
}

func (r *MemberRepo) Upsert(ctx context.Context, member *members.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}

	var refreshExp *time.Time
	if !member.RefreshExpiresAt.IsZero() {
		refreshExp = &member.RefreshExpiresAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO members (id, subject_id, display_name, refresh_token_id, refresh_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subject_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			refresh_token_id = EXCLUDED.refresh_token_id,
			refresh_expires_at = EXCLUDED.refresh_expires_at
	`, member.ID, member.SubjectID, member.DisplayName, member.RefreshTokenID, refreshExp, member.CreatedAt)
	return err
}

func (r *MemberRepo) GetBySubjectID(ctx context.Context, subjectID string) (*members.Member, error) {
	var (
		member     members.Member
		refreshExp *time.Time
	)

	err := r.pool.QueryRow(ctx, `
		SELECT id, subject_id, display_name, refresh_token_id, refresh_expires_at, created_at
		FROM members
		WHERE subject_id = $1
	`, subjectID).Scan(
		&member.ID,
		&member.SubjectID,
		&member.DisplayName,
		&member.RefreshTokenID,
		&refreshExp,
		&member.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}

	if refreshExp != nil {
		member.RefreshExpiresAt = *refreshExp
	}
	return &member, nil
}

func (r *MemberRepo) Delete(ctx context.Context, subjectID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM members WHERE subject_id = $1`, subjectID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMemberNotFound
	}
	return nil
}
