package application

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFollowFixture() (*FollowService, *memUserRepo, *memFollowRepo, *memAuditRepo) {
	users := newMemUserRepo()
	follows := newMemFollowRepo(users)
	audit := &memAuditRepo{}
	svc := &FollowService{Users: users, Follows: follows, Audit: audit}
	return svc, users, follows, audit
}

func TestFollowIncrementsCounter(t *testing.T) {
	svc, users, follows, _ := newFollowFixture()
	alice := users.add("alice", "alice@example.com", 0)
	bob := users.add("bob", "bob@example.com", 0)

	require.NoError(t, svc.Follow(context.Background(), alice.ID, bob.ID))

	assert.Equal(t, 1, users.followerCount(bob.ID))
	assert.Equal(t, 0, users.followerCount(alice.ID))
	ok, err := follows.Exists(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFollowSelfRejected(t *testing.T) {
	svc, users, _, _ := newFollowFixture()
	alice := users.add("alice", "alice@example.com", 0)

	err := svc.Follow(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)
	assert.Equal(t, 0, users.followerCount(alice.ID))
}

func TestFollowUnknownTarget(t *testing.T) {
	svc, users, _, _ := newFollowFixture()
	alice := users.add("alice", "alice@example.com", 0)

	err := svc.Follow(context.Background(), alice.ID, "user-9999")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFollowDuplicateRejectedWithoutCounterMovement(t *testing.T) {
	svc, users, _, _ := newFollowFixture()
	alice := users.add("alice", "alice@example.com", 0)
	bob := users.add("bob", "bob@example.com", 0)

	require.NoError(t, svc.Follow(context.Background(), alice.ID, bob.ID))
	err := svc.Follow(context.Background(), alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
	assert.Equal(t, 1, users.followerCount(bob.ID))
}

func TestFollowConcurrentSamePair(t *testing.T) {
	svc, users, _, _ := newFollowFixture()
	alice := users.add("alice", "alice@example.com", 0)
	bob := users.add("bob", "bob@example.com", 0)

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Follow(context.Background(), alice.ID, bob.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyFollowing)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, users.followerCount(bob.ID))
}

func TestUnfollowReturnsCounterToBaseline(t *testing.T) {
	svc, users, follows, _ := newFollowFixture()
	alice := users.add("alice", "alice@example.com", 0)
	bob := users.add("bob", "bob@example.com", 0)

	require.NoError(t, svc.Follow(context.Background(), alice.ID, bob.ID))
	require.NoError(t, svc.Unfollow(context.Background(), alice.ID, bob.ID))

	assert.Equal(t, 0, users.followerCount(bob.ID))
	ok, err := follows.Exists(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnfollowWithoutEdge(t *testing.T) {
	svc, users, _, _ := newFollowFixture()
	alice := users.add("alice", "alice@example.com", 0)
	bob := users.add("bob", "bob@example.com", 0)

	err := svc.Unfollow(context.Background(), alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotFollowing)
}

func TestUnfollowCounterUnderflowFailsClosedAndAudits(t *testing.T) {
	svc, users, _, audit := newFollowFixture()
	alice := users.add("alice", "alice@example.com", 0)
	bob := users.add("bob", "bob@example.com", 0)

	require.NoError(t, svc.Follow(context.Background(), alice.ID, bob.ID))
	// Simulate a counter that diverged from the edge set.
	users.setFollowerCount(bob.ID, 0)

	err := svc.Unfollow(context.Background(), alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	// Clamped, never negative.
	assert.Equal(t, 0, users.followerCount(bob.ID))

	entries := audit.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "follower_count_underflow", entries[0].Action)
	assert.Equal(t, alice.ID, entries[0].UserID)
	assert.Equal(t, bob.ID, entries[0].Metadata["target_id"])
}

func TestIsFollowing(t *testing.T) {
	svc, users, _, _ := newFollowFixture()
	alice := users.add("alice", "alice@example.com", 0)
	bob := users.add("bob", "bob@example.com", 0)

	ok, err := svc.IsFollowing(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Follow(context.Background(), alice.ID, bob.ID))
	ok, err = svc.IsFollowing(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Directionality: bob does not follow alice.
	ok, err = svc.IsFollowing(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Self is always false, never an error.
	ok, err = svc.IsFollowing(context.Background(), alice.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListFollowersAndFollowing(t *testing.T) {
	svc, users, _, _ := newFollowFixture()
	alice := users.add("alice", "alice@example.com", 0)
	bob := users.add("bob", "bob@example.com", 0)
	carol := users.add("carol", "carol@example.com", 0)

	require.NoError(t, svc.Follow(context.Background(), alice.ID, carol.ID))
	require.NoError(t, svc.Follow(context.Background(), bob.ID, carol.ID))

	followers, err := svc.ListFollowers(context.Background(), carol.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)

	following, err := svc.ListFollowing(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, carol.ID, following[0].ID)

	_, err = svc.ListFollowers(context.Background(), "user-9999")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
