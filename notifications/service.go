package notifications

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/varsityhq/varsity-server/calendar"
	apperrors "github.com/varsityhq/varsity-server/internal/errors"
	"github.com/varsityhq/varsity-server/members"
)

// Service exposes the member-facing notification operations. Dispatch is the
// Dispatcher's job; this covers registration, listing and explicit deletion.
type Service struct {
	repo    Repo
	events  calendar.Repo
	members members.Repo
}

func NewService(repo Repo, events calendar.Repo, memberRepo members.Repo) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[NewService] notifications repo is required")
	}
	if events == nil {
		return nil, errors.New("[NewService] calendar repo is required")
	}
	if memberRepo == nil {
		return nil, errors.New("[NewService] members repo is required")
	}
	return &Service{repo: repo, events: events, members: memberRepo}, nil
}

// Create registers a push notification for the member's device tokens on
// targetDate, referencing an existing calendar event.
func (s *Service) Create(ctx context.Context, subjectID, eventID string, targetDate time.Time, deviceTokens []string) (*Notification, error) {
	member, err := s.members.GetBySubjectID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}

	n := &Notification{
		ID:           NewID(),
		TargetDate:   DateOf(targetDate),
		EventID:      eventID,
		DeviceTokens: deviceTokens,
		Active:       true,
		MemberID:     member.ID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, errors.Wrap(err, "Service.Create")
	}
	return n, nil
}

// ListForMember returns the member's notifications, dispatched ones included.
func (s *Service) ListForMember(ctx context.Context, subjectID string) ([]*Notification, error) {
	member, err := s.members.GetBySubjectID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByMember(ctx, member.ID)
}

// Delete removes a notification owned by the member.
func (s *Service) Delete(ctx context.Context, subjectID, notificationID string) error {
	member, err := s.members.GetBySubjectID(ctx, subjectID)
	if err != nil {
		return err
	}

	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.MemberID != member.ID {
		return apperrors.ErrNotificationNotFound
	}
	return s.repo.Delete(ctx, notificationID)
}
