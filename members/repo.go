package members

import "context"

// Repo manages persistence of Member records, keyed by provider subject ID.
type Repo interface {
	Upsert(ctx context.Context, member *Member) error
	GetBySubjectID(ctx context.Context, subjectID string) (*Member, error)
	Delete(ctx context.Context, subjectID string) error
}
