package fakememberrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/varsityhq/varsity-server/internal/errors"
	"github.com/varsityhq/varsity-server/members"
)

var _ members.Repo = (*FakeMemberRepo)(nil)

type FakeMemberRepo struct {
	members map[string]*members.Member // keyed by subject ID
	lock    sync.RWMutex
}

func NewFakeMemberRepo() *FakeMemberRepo {
	return &FakeMemberRepo{
		members: make(map[string]*members.Member),
	}
}

func (mr *FakeMemberRepo) Upsert(_ context.Context, member *members.Member) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now()
	}
	stored := *member
	mr.members[member.SubjectID] = &stored
	return nil
}

func (mr *FakeMemberRepo) GetBySubjectID(_ context.Context, subjectID string) (*members.Member, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	member, ok := mr.members[subjectID]
	if !ok {
		return nil, apperrors.ErrMemberNotFound
	}
	copied := *member
	return &copied, nil
}

func (mr *FakeMemberRepo) Delete(_ context.Context, subjectID string) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	if _, ok := mr.members[subjectID]; !ok {
		return apperrors.ErrMemberNotFound
	}
	delete(mr.members, subjectID)
	return nil
}
