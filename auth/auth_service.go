package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/varsityhq/varsity-server/internal/errors"
	"github.com/varsityhq/varsity-server/members"
	"github.com/varsityhq/varsity-server/token"
)

// TokenPair is the credential pair returned by login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// Service orchestrates the session lifecycle: login, refresh rotation, logout,
// status check and account deletion. Per-session state is conceptual only;
// the shared mutable state is the member repo and the blacklist.
type Service struct {
	repo       members.Repo
	codec      *token.Codec
	blacklist  token.Blacklist
	accessTTL  time.Duration
	refreshTTL time.Duration
	nowTime    func() time.Time
	log        zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService initializes a new session Service with required dependencies.
func NewService(
	repo members.Repo,
	codec *token.Codec,
	blacklist token.Blacklist,
	accessTTL, refreshTTL time.Duration,
	options ...ServiceOption,
) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[NewService] members repo is required")
	}
	if codec == nil {
		return nil, errors.New("[NewService] token codec is required")
	}
	if blacklist == nil {
		return nil, errors.New("[NewService] blacklist is required")
	}

	service := &Service{
		repo:       repo,
		codec:      codec,
		blacklist:  blacklist,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		nowTime:    time.Now,
		log:        zerolog.Nop(),
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Login finds or creates the member for an already-verified provider subject
// and issues a fresh credential pair. Verification of the provider assertion
// itself happens upstream; an invalid assertion never reaches this call.
func (s *Service) Login(ctx context.Context, subjectID, displayName string) (*TokenPair, error) {
	member, err := s.repo.GetBySubjectID(ctx, subjectID)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrMemberNotFound) {
			return nil, errors.Wrap(err, "Service.Login GetBySubjectID")
		}
		member = &members.Member{
			SubjectID:   subjectID,
			DisplayName: displayName,
		}
	}

	pair, refreshClaims, err := s.issuePair(subjectID)
	if err != nil {
		return nil, err
	}

	member.RefreshTokenID = refreshClaims.TokenID
	member.RefreshExpiresAt = refreshClaims.ExpiresAt
	if err := s.repo.Upsert(ctx, member); err != nil {
		return nil, errors.Wrap(err, "Service.Login Upsert")
	}

	s.log.Info().Str("subject", subjectID).Msg("member logged in")
	return pair, nil
}

// Refresh exchanges a valid, non-blacklisted refresh token for a new pair.
// The consumed token's jti is blacklisted before the new pair is returned,
// so a refresh token can mint at most one new pair.
func (s *Service) Refresh(ctx context.Context, rawRefreshToken string) (*TokenPair, error) {
	claims, err := s.codec.Decode(rawRefreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if claims.TokenType != token.TypeRefresh {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	// Single-use rotation: consume the presented token atomically, so of any
	// number of concurrent exchanges with the same token exactly one wins.
	consumed, err := s.blacklist.Consume(ctx, claims.TokenID, claims.ExpiresAt)
	if err != nil {
		return nil, errors.Wrap(err, "Service.Refresh Consume")
	}
	if !consumed {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	member, err := s.repo.GetBySubjectID(ctx, claims.SubjectID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrMemberNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, errors.Wrap(err, "Service.Refresh GetBySubjectID")
	}

	pair, refreshClaims, err := s.issuePair(claims.SubjectID)
	if err != nil {
		return nil, err
	}

	member.RefreshTokenID = refreshClaims.TokenID
	member.RefreshExpiresAt = refreshClaims.ExpiresAt
	if err := s.repo.Upsert(ctx, member); err != nil {
		return nil, errors.Wrap(err, "Service.Refresh Upsert")
	}

	s.log.Info().Str("subject", claims.SubjectID).Msg("token pair rotated")
	return pair, nil
}

// StatusCheck reports whether the presented access token identifies a live
// session. Returns nil when logged in, ErrInvalidToken when the token does
// not decode, and ErrTokenAlreadyBlacklisted when it has been revoked.
func (s *Service) StatusCheck(ctx context.Context, rawAccessToken string) error {
	claims, err := s.codec.Decode(rawAccessToken)
	if err != nil {
		return apperrors.ErrInvalidToken
	}
	if claims.TokenType != token.TypeAccess {
		return apperrors.ErrInvalidToken
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.TokenID)
	if err != nil {
		return errors.Wrap(err, "Service.StatusCheck IsBlacklisted")
	}
	if revoked {
		return apperrors.ErrTokenAlreadyBlacklisted
	}
	return nil
}

// Logout blacklists the caller's presented access token and any refresh token
// recorded for the member. The boundary rejects pre-blacklisted access tokens
// before this call is made.
func (s *Service) Logout(ctx context.Context, accessClaims *token.Claims) error {
	member, err := s.repo.GetBySubjectID(ctx, accessClaims.SubjectID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrMemberNotFound) {
			return apperrors.ErrMemberNotFound
		}
		return errors.Wrap(err, "Service.Logout GetBySubjectID")
	}

	if err := s.revokeSessionTokens(ctx, accessClaims, member); err != nil {
		return err
	}

	member.RefreshTokenID = ""
	member.RefreshExpiresAt = time.Time{}
	if err := s.repo.Upsert(ctx, member); err != nil {
		return errors.Wrap(err, "Service.Logout Upsert")
	}

	s.log.Info().Str("subject", accessClaims.SubjectID).Msg("member logged out")
	return nil
}

// DeleteMember removes the member record and invalidates every token type
// currently held by the caller's session, so nothing issued before deletion
// remains usable.
func (s *Service) DeleteMember(ctx context.Context, accessClaims *token.Claims) error {
	member, err := s.repo.GetBySubjectID(ctx, accessClaims.SubjectID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrMemberNotFound) {
			return apperrors.ErrMemberNotFound
		}
		return errors.Wrap(err, "Service.DeleteMember GetBySubjectID")
	}

	if err := s.revokeSessionTokens(ctx, accessClaims, member); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, accessClaims.SubjectID); err != nil {
		return errors.Wrap(err, "Service.DeleteMember Delete")
	}

	s.log.Info().Str("subject", accessClaims.SubjectID).Msg("member deleted")
	return nil
}

func (s *Service) revokeSessionTokens(ctx context.Context, accessClaims *token.Claims, member *members.Member) error {
	if err := s.blacklist.Add(ctx, accessClaims.TokenID, accessClaims.ExpiresAt); err != nil {
		return errors.Wrap(err, "revokeSessionTokens access Add")
	}
	if member.RefreshTokenID != "" {
		exp := member.RefreshExpiresAt
		if exp.IsZero() {
			exp = s.nowTime().Add(s.refreshTTL)
		}
		if err := s.blacklist.Add(ctx, member.RefreshTokenID, exp); err != nil {
			return errors.Wrap(err, "revokeSessionTokens refresh Add")
		}
	}
	return nil
}

func (s *Service) issuePair(subjectID string) (*TokenPair, *token.Claims, error) {
	accessToken, accessClaims, err := s.codec.Issue(subjectID, token.TypeAccess, s.accessTTL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "issuePair access Issue")
	}
	refreshToken, refreshClaims, err := s.codec.Issue(subjectID, token.TypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "issuePair refresh Issue")
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessClaims.ExpiresAt,
		RefreshExpiresAt: refreshClaims.ExpiresAt,
	}, refreshClaims, nil
}
