package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectoryFixture() (*DirectoryService, *memUserRepo, *memChannelRepo) {
	users := newMemUserRepo()
	channels := newMemChannelRepo()
	return &DirectoryService{Users: users, Channels: channels}, users, channels
}

func TestSearchEmptyQuery(t *testing.T) {
	svc, users, _ := newDirectoryFixture()
	users.add("alice", "alice@example.com", 0)

	got, err := svc.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSearchLiteralSubstring(t *testing.T) {
	svc, users, _ := newDirectoryFixture()
	users.add("alice", "alice@example.com", 0)
	users.add("malice_入", "m@example.com", 0)
	users.add("o_o", "oo@example.com", 0)
	users.add("oxo", "oxo@example.com", 0)

	got, err := svc.Search(context.Background(), "lic")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0].Username)
	assert.Equal(t, "malice_入", got[1].Username)

	// Punctuation matches itself: "_" is not a single-char wildcard.
	got, err = svc.Search(context.Background(), "o_o")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "o_o", got[0].Username)

	got, err = svc.Search(context.Background(), "ALICE")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Username)

	got, err = svc.Search(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMostFollowedOrderingAndLimit(t *testing.T) {
	svc, users, _ := newDirectoryFixture()
	a := users.add("alice", "alice@example.com", 10)
	b := users.add("bob", "bob@example.com", 5)
	c := users.add("carol", "carol@example.com", 5)
	d := users.add("dave", "dave@example.com", 2)

	got, err := svc.MostFollowed(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, a.ID, got[0].ID)
	// Tie broken by id ascending: bob was created before carol.
	assert.Equal(t, b.ID, got[1].ID)
	assert.Equal(t, c.ID, got[2].ID)

	// Zero or negative limits fall back to the default.
	got, err = svc.MostFollowed(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, d.ID, got[3].ID)
}

func TestListLiveChannels(t *testing.T) {
	svc, users, channels := newDirectoryFixture()
	chSvc := &ChannelService{Channels: channels, Users: users}

	alice := liveChannel(t, chSvc, users, channels, "alice")
	liveChannel(t, chSvc, users, channels, "bob")

	got, err := svc.ListLiveChannels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	_, _, err = chSvc.StartStream(context.Background(), StartStreamInput{StreamKey: alice.StreamKey})
	require.NoError(t, err)

	got, err = svc.ListLiveChannels(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, alice.ID, got[0].ID)
}
