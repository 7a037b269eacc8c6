package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"videonet/internal/core/domain"
)

// recordingSender captures every event fanned out by the presence protocol.
type recordingSender struct {
	mu     sync.Mutex
	events map[domain.ConnectionID][]interface{}
}

func newRecordingSender() *recordingSender {
	return &recordingSender{events: make(map[domain.ConnectionID][]interface{})}
}

func (s *recordingSender) SendTo(id domain.ConnectionID, event interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[id] = append(s.events[id], event)
	return true
}

func (s *recordingSender) sentTo(id domain.ConnectionID) []interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[id]
}

func newPresenceFixture() (*Presence, *Registry, *recordingSender) {
	registry := NewRegistry()
	sender := newRecordingSender()
	presence := NewPresence(registry, sender, zap.NewNop().Sugar())
	return presence, registry, sender
}

func TestPresence_FirstJoinerGetsSnapshotOnly(t *testing.T) {
	presence, registry, sender := newPresenceFixture()
	registry.Register("a")

	presence.Join("a", "room-1", domain.UserInfo{"name": "alice"})

	events := sender.sentTo("a")
	require.Len(t, events, 1)

	snapshot, ok := events[0].(domain.RoomUsersEvent)
	require.True(t, ok)
	assert.Equal(t, domain.EventRoomUsers, snapshot.Type)
	require.Len(t, snapshot.Users, 1)
	assert.Equal(t, domain.ConnectionID("a"), snapshot.Users[0].UserID)
}

func TestPresence_SecondJoinerNotifiesExistingMembers(t *testing.T) {
	presence, registry, sender := newPresenceFixture()
	registry.Register("a")
	registry.Register("b")

	presence.Join("a", "room-1", domain.UserInfo{"name": "alice"})
	presence.Join("b", "room-1", domain.UserInfo{"name": "bob"})

	// "a" got its own snapshot, then bob's user_joined.
	eventsA := sender.sentTo("a")
	require.Len(t, eventsA, 2)
	joined, ok := eventsA[1].(domain.UserJoinedEvent)
	require.True(t, ok)
	assert.Equal(t, domain.EventUserJoined, joined.Type)
	assert.Equal(t, domain.ConnectionID("b"), joined.UserID)
	assert.Equal(t, "bob", joined.UserInfo["name"])

	// "b" got only the snapshot, never its own user_joined.
	eventsB := sender.sentTo("b")
	require.Len(t, eventsB, 1)
	snapshot, ok := eventsB[0].(domain.RoomUsersEvent)
	require.True(t, ok)
	assert.Len(t, snapshot.Users, 2)
}

func TestPresence_LeaveNotifiesRemaining(t *testing.T) {
	presence, registry, sender := newPresenceFixture()
	registry.Register("a")
	registry.Register("b")
	presence.Join("a", "room-1", nil)
	presence.Join("b", "room-1", nil)

	presence.Leave("b", "room-1")

	eventsA := sender.sentTo("a")
	left, ok := eventsA[len(eventsA)-1].(domain.UserLeftEvent)
	require.True(t, ok)
	assert.Equal(t, domain.EventUserLeft, left.Type)
	assert.Equal(t, domain.ConnectionID("b"), left.UserID)

	// "b" itself receives nothing about its own departure.
	for _, ev := range sender.sentTo("b") {
		_, isLeft := ev.(domain.UserLeftEvent)
		assert.False(t, isLeft)
	}
}

func TestPresence_DuplicateLeaveIsSilent(t *testing.T) {
	presence, registry, sender := newPresenceFixture()
	registry.Register("a")
	registry.Register("b")
	presence.Join("a", "room-1", nil)
	presence.Join("b", "room-1", nil)

	presence.Leave("b", "room-1")
	before := len(sender.sentTo("a"))
	presence.Leave("b", "room-1")

	assert.Equal(t, before, len(sender.sentTo("a")))
}

func TestPresence_DisconnectDrainsEveryRoom(t *testing.T) {
	presence, registry, sender := newPresenceFixture()
	registry.Register("a")
	registry.Register("b")
	registry.Register("c")
	presence.Join("a", "room-1", nil)
	presence.Join("a", "room-2", nil)
	presence.Join("b", "room-1", nil)
	presence.Join("c", "room-2", nil)

	presence.Disconnect("a")

	for _, observer := range []domain.ConnectionID{"b", "c"} {
		events := sender.sentTo(observer)
		left, ok := events[len(events)-1].(domain.UserLeftEvent)
		require.True(t, ok, "observer %s should see user_left", observer)
		assert.Equal(t, domain.ConnectionID("a"), left.UserID)
	}

	assert.False(t, registry.Exists("a"))
	assert.Equal(t, 2, registry.RoomCount())
}

func TestPresence_JoinFromUnknownConnectionIsNoop(t *testing.T) {
	presence, registry, sender := newPresenceFixture()

	presence.Join("ghost", "room-1", nil)

	assert.Empty(t, sender.sentTo("ghost"))
	assert.Equal(t, 0, registry.RoomCount())
}

func TestPresence_RejoinSameRoomRefreshesSnapshot(t *testing.T) {
	presence, registry, sender := newPresenceFixture()
	registry.Register("a")

	presence.Join("a", "room-1", domain.UserInfo{"name": "alice"})
	presence.Join("a", "room-1", domain.UserInfo{"name": "alice2"})

	events := sender.sentTo("a")
	require.Len(t, events, 2)
	snapshot, ok := events[1].(domain.RoomUsersEvent)
	require.True(t, ok)
	require.Len(t, snapshot.Users, 1)
	assert.Equal(t, "alice2", snapshot.Users[0].UserInfo["name"])
	assert.Equal(t, 1, registry.RoomCount())
}
