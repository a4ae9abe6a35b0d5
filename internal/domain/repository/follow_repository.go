package repository

import (
	"context"

	"github.com/streamnest/streamnest/internal/domain/entity"
)

// FollowRepository maintains the follow edge set and the denormalized
// follower counter on the target user.
//
// Insert and Delete apply the edge write and the counter update as one atomic
// unit. Insert reports ErrAlreadyFollowing for a duplicate edge; exactly one
// of N concurrent inserts for the same pair may succeed. Delete reports
// ErrNotFollowing when no edge exists, and ErrCounterUnderflow when the edge
// was removed but the counter was already zero (the counter is clamped, the
// breach is the caller's to surface).
type FollowRepository interface {
	Insert(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) ([]entity.User, error)
	ListFollowing(ctx context.Context, userID string) ([]entity.User, error)
}
