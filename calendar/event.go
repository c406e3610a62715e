package calendar

import (
	"context"
	"time"
)

// Event is an academic calendar entry (exam date, application window, ...).
// The dispatcher only reads its title; events are owned elsewhere.
type Event struct {
	ID        string
	Title     string
	StartsAt  time.Time
	EndsAt    time.Time
	CreatedAt time.Time
}

// Repo provides read-only access to calendar events.
type Repo interface {
	Get(ctx context.Context, id string) (*Event, error)
}
