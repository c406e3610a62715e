package notifications

import (
	"context"
	"time"
)

// Repo manages persistence of notification records.
//
// ClaimDue is the claim-and-mark step: it atomically flips Active to false on
// every record whose target date equals day and returns the claimed records.
// The conditional flip is the selection predicate, so concurrent claimers
// (duplicate trigger, second instance) cannot claim the same record twice.
// Reactivate puts a claimed record back after a failed delivery so the next
// same-day trigger retries it.
type Repo interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id string) (*Notification, error)
	ListByMember(ctx context.Context, memberID string) ([]*Notification, error)
	Delete(ctx context.Context, id string) error
	ClaimDue(ctx context.Context, day time.Time) ([]*Notification, error)
	Reactivate(ctx context.Context, id string) error
}
