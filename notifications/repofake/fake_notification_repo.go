package fakenotificationrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/varsityhq/varsity-server/internal/errors"
	"github.com/varsityhq/varsity-server/notifications"
)

var _ notifications.Repo = (*FakeNotificationRepo)(nil)

type FakeNotificationRepo struct {
	records map[string]*notifications.Notification
	lock    sync.Mutex
}

func NewFakeNotificationRepo() *FakeNotificationRepo {
	return &FakeNotificationRepo{
		records: make(map[string]*notifications.Notification),
	}
}

func (nr *FakeNotificationRepo) Create(_ context.Context, n *notifications.Notification) error {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	if n.ID == "" {
		n.ID = notifications.NewID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	stored := *n
	stored.DeviceTokens = append([]string(nil), n.DeviceTokens...)
	nr.records[n.ID] = &stored
	return nil
}

func (nr *FakeNotificationRepo) GetByID(_ context.Context, id string) (*notifications.Notification, error) {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	n, ok := nr.records[id]
	if !ok {
		return nil, apperrors.ErrNotificationNotFound
	}
	copied := *n
	return &copied, nil
}

func (nr *FakeNotificationRepo) ListByMember(_ context.Context, memberID string) ([]*notifications.Notification, error) {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	var result []*notifications.Notification
	for _, n := range nr.records {
		if n.MemberID == memberID {
			copied := *n
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (nr *FakeNotificationRepo) Delete(_ context.Context, id string) error {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	if _, ok := nr.records[id]; !ok {
		return apperrors.ErrNotificationNotFound
	}
	delete(nr.records, id)
	return nil
}

func (nr *FakeNotificationRepo) ClaimDue(_ context.Context, day time.Time) ([]*notifications.Notification, error) {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	day = notifications.DateOf(day)
	var claimed []*notifications.Notification
	for _, n := range nr.records {
		if n.Active && n.TargetDate.Equal(day) {
			n.Active = false
			copied := *n
			claimed = append(claimed, &copied)
		}
	}
	sort.Slice(claimed, func(i, j int) bool { return claimed[i].ID < claimed[j].ID })
	return claimed, nil
}

func (nr *FakeNotificationRepo) Reactivate(_ context.Context, id string) error {
	nr.lock.Lock()
	defer nr.lock.Unlock()

	n, ok := nr.records[id]
	if !ok {
		return apperrors.ErrNotificationNotFound
	}
	n.Active = true
	return nil
}
