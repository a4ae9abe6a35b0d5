package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/streamnest/streamnest/internal/domain/entity"
	repo "github.com/streamnest/streamnest/internal/domain/repository"
)

// FollowService maintains the follow graph. It is the only component that
// mutates follower counters; the edge write and the counter update are one
// atomic unit at the repository layer.
type FollowService struct {
	Users   repo.UserRepository
	Follows repo.FollowRepository
	Audit   repo.AuditRepository
	Logger  *logrus.Logger
}

// Follow checks target existence, then self-follow, then duplicate edge, in
// that order. Exactly one of N concurrent calls for the same pair succeeds.
func (s *FollowService) Follow(ctx context.Context, followerID, targetID string) error {
	if _, err := s.target(ctx, targetID); err != nil {
		return err
	}
	if followerID == targetID {
		return ErrSelfFollow
	}
	err := s.Follows.Insert(ctx, followerID, targetID)
	if errors.Is(err, repo.ErrAlreadyFollowing) {
		return ErrAlreadyFollowing
	}
	return err
}

// Unfollow rejects a missing edge rather than succeeding idempotently. A
// counter underflow means state had already diverged: it is clamped and
// audited, and the request fails closed.
func (s *FollowService) Unfollow(ctx context.Context, followerID, targetID string) error {
	if _, err := s.target(ctx, targetID); err != nil {
		return err
	}
	err := s.Follows.Delete(ctx, followerID, targetID)
	switch {
	case errors.Is(err, repo.ErrNotFollowing):
		return ErrNotFollowing
	case errors.Is(err, repo.ErrCounterUnderflow):
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{
				"follower_id": followerID,
				"target_id":   targetID,
			}).Error("follower count underflow detected")
		}
		if s.Audit != nil {
			_ = s.Audit.Insert(ctx, repo.AuditEntry{
				UserID: followerID,
				Action: "follower_count_underflow",
				Metadata: map[string]any{
					"target_id": targetID,
				},
			})
		}
		return ErrInvariantViolation
	}
	return err
}

func (s *FollowService) ListFollowers(ctx context.Context, targetID string) ([]entity.User, error) {
	if _, err := s.target(ctx, targetID); err != nil {
		return nil, err
	}
	return s.Follows.ListFollowers(ctx, targetID)
}

func (s *FollowService) ListFollowing(ctx context.Context, callerID string) ([]entity.User, error) {
	return s.Follows.ListFollowing(ctx, callerID)
}

// IsFollowing never errors for a missing edge; self-target is always false.
func (s *FollowService) IsFollowing(ctx context.Context, callerID, targetID string) (bool, error) {
	if callerID == targetID {
		return false, nil
	}
	return s.Follows.Exists(ctx, callerID, targetID)
}

func (s *FollowService) target(ctx context.Context, targetID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, targetID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
