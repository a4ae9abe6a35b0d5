package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture() (*ChatService, *memUserRepo, *memMessageRepo) {
	users := newMemUserRepo()
	msgs := &memMessageRepo{}
	return &ChatService{Users: users, Messages: msgs}, users, msgs
}

func TestChatTopic(t *testing.T) {
	assert.Equal(t, "chat:user:user-0001", ChatTopic("user-0001"))
}

func TestSendPersistsMessage(t *testing.T) {
	svc, users, msgs := newChatFixture()
	alice := users.add("alice", "alice@example.com", 0)
	bob := users.add("bob", "bob@example.com", 0)

	m, err := svc.Send(context.Background(), alice.ID, bob.ID, "hi bob")
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, alice.ID, m.SenderID)
	assert.Equal(t, bob.ID, m.ReceiverID)
	require.Len(t, msgs.msgs, 1)
}

func TestSendUnknownReceiver(t *testing.T) {
	svc, users, msgs := newChatFixture()
	alice := users.add("alice", "alice@example.com", 0)

	_, err := svc.Send(context.Background(), alice.ID, "user-9999", "hello?")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, msgs.msgs)
}

func TestHistory(t *testing.T) {
	svc, users, _ := newChatFixture()
	alice := users.add("alice", "alice@example.com", 0)
	bob := users.add("bob", "bob@example.com", 0)
	carol := users.add("carol", "carol@example.com", 0)

	_, err := svc.Send(context.Background(), alice.ID, bob.ID, "one")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), bob.ID, alice.ID, "two")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), alice.ID, carol.ID, "other conversation")
	require.NoError(t, err)

	got, err := svc.History(context.Background(), alice.ID, bob.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, "two", got[0].Body)
	assert.Equal(t, "one", got[1].Body)
}

func TestHistoryLimitBounds(t *testing.T) {
	svc, users, msgs := newChatFixture()
	alice := users.add("alice", "alice@example.com", 0)
	bob := users.add("bob", "bob@example.com", 0)

	_, err := svc.History(context.Background(), alice.ID, bob.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, msgs.lastLimit)

	_, err = svc.History(context.Background(), alice.ID, bob.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, 50, msgs.lastLimit)

	_, err = svc.History(context.Background(), alice.ID, bob.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, msgs.lastLimit)
}
