package fakeeventrepo

import (
	"context"
	"sync"

	"github.com/varsityhq/varsity-server/calendar"
	apperrors "github.com/varsityhq/varsity-server/internal/errors"
)

var _ calendar.Repo = (*FakeEventRepo)(nil)

type FakeEventRepo struct {
	events map[string]*calendar.Event
	lock   sync.RWMutex
}

func NewFakeEventRepo() *FakeEventRepo {
	return &FakeEventRepo{
		events: make(map[string]*calendar.Event),
	}
}

func (er *FakeEventRepo) Put(event *calendar.Event) {
	er.lock.Lock()
	defer er.lock.Unlock()
	er.events[event.ID] = event
}

func (er *FakeEventRepo) Get(_ context.Context, id string) (*calendar.Event, error) {
	er.lock.RLock()
	defer er.lock.RUnlock()

	event, ok := er.events[id]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	copied := *event
	return &copied, nil
}
