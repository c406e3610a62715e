package notifications

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Notification schedules a push for every device token it holds on its target
// date. Active flips to false exactly once, when the dispatcher claims the
// record; it never flips back except on a failed delivery attempt.
type Notification struct {
	ID           string
	TargetDate   time.Time // date-only, normalized to midnight UTC
	EventID      string
	DeviceTokens []string
	Active       bool
	MemberID     string
	CreatedAt    time.Time
}

// NewID returns a fresh notification identifier.
func NewID() string {
	return ulid.Make().String()
}

// DateOf truncates t to its calendar date in UTC. Target dates and dispatch
// days are always compared in this normalized form.
func DateOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
