package notifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/varsityhq/varsity-server/calendar"
	fakeeventrepo "github.com/varsityhq/varsity-server/calendar/repofake"
	apperrors "github.com/varsityhq/varsity-server/internal/errors"
	"github.com/varsityhq/varsity-server/members"
	fakememberrepo "github.com/varsityhq/varsity-server/members/repofake"
	"github.com/varsityhq/varsity-server/notifications"
	fakenotificationrepo "github.com/varsityhq/varsity-server/notifications/repofake"
)

const testSubjectID = "subject-1"

func setupServiceFixture(t *testing.T) (*notifications.Service, *fakenotificationrepo.FakeNotificationRepo) {
	t.Helper()

	repo := fakenotificationrepo.NewFakeNotificationRepo()
	events := fakeeventrepo.NewFakeEventRepo()
	events.Put(&calendar.Event{ID: testEventID, Title: "Application deadline"})
	memberRepo := fakememberrepo.NewFakeMemberRepo()
	require.NoError(t, memberRepo.Upsert(context.Background(), &members.Member{
		SubjectID:   testSubjectID,
		DisplayName: "Jane",
	}))

	service, err := notifications.NewService(repo, events, memberRepo)
	require.NoError(t, err)
	return service, repo
}

func TestServiceCreateAndList(t *testing.T) {
	ctx := context.Background()
	service, _ := setupServiceFixture(t)

	target := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	n, err := service.Create(ctx, testSubjectID, testEventID, target, []string{"device-a"})
	require.NoError(t, err)
	require.True(t, n.Active)
	require.Equal(t, target, n.TargetDate)

	listed, err := service.ListForMember(ctx, testSubjectID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, n.ID, listed[0].ID)
}

func TestServiceCreateUnknownEvent(t *testing.T) {
	ctx := context.Background()
	service, _ := setupServiceFixture(t)

	_, err := service.Create(ctx, testSubjectID, "missing", time.Now(), []string{"device-a"})
	require.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestServiceCreateUnknownMember(t *testing.T) {
	ctx := context.Background()
	service, _ := setupServiceFixture(t)

	_, err := service.Create(ctx, "ghost", testEventID, time.Now(), []string{"device-a"})
	require.ErrorIs(t, err, apperrors.ErrMemberNotFound)
}

func TestServiceDeleteEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	service, repo := setupServiceFixture(t)

	n, err := service.Create(ctx, testSubjectID, testEventID, time.Now(), []string{"device-a"})
	require.NoError(t, err)

	// A record owned by someone else reads as not found
	other := &notifications.Notification{
		TargetDate:   notifications.DateOf(time.Now()),
		EventID:      testEventID,
		DeviceTokens: []string{"device-x"},
		Active:       true,
		MemberID:     "other-member",
	}
	require.NoError(t, repo.Create(ctx, other))
	require.ErrorIs(t, service.Delete(ctx, testSubjectID, other.ID), apperrors.ErrNotificationNotFound)

	require.NoError(t, service.Delete(ctx, testSubjectID, n.ID))
	_, err = repo.GetByID(ctx, n.ID)
	require.ErrorIs(t, err, apperrors.ErrNotificationNotFound)
}
