package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterFirstConnectionBringsUserOnline(t *testing.T) {
	r := newPresenceRegistry()

	becameOnline := r.register("user-1", "conn-1")

	assert.True(t, becameOnline)
	assert.Equal(t, []string{"user-1"}, r.listOnline())
}

func TestRegisterSecondDeviceDoesNotReannounce(t *testing.T) {
	r := newPresenceRegistry()

	require.True(t, r.register("user-1", "conn-1"))
	becameOnline := r.register("user-1", "conn-2")

	assert.False(t, becameOnline)
	assert.Equal(t, []string{"user-1"}, r.listOnline())

	connections, users := r.counts()
	assert.Equal(t, 2, connections)
	assert.Equal(t, 1, users)
}

func TestRegisterIsIdempotentPerConnection(t *testing.T) {
	r := newPresenceRegistry()

	require.True(t, r.register("user-1", "conn-1"))
	assert.False(t, r.register("user-1", "conn-1"))

	connections, users := r.counts()
	assert.Equal(t, 1, connections)
	assert.Equal(t, 1, users)
}

func TestUnregisterLastConnectionTakesUserOffline(t *testing.T) {
	r := newPresenceRegistry()
	r.register("user-1", "conn-1")
	r.register("user-1", "conn-2")

	userID, wentOffline := r.unregister("conn-1")
	assert.Equal(t, "user-1", userID)
	assert.False(t, wentOffline, "user still has a live device")

	userID, wentOffline = r.unregister("conn-2")
	assert.Equal(t, "user-1", userID)
	assert.True(t, wentOffline)
	assert.Empty(t, r.listOnline())
}

func TestUnregisterAnonymousConnection(t *testing.T) {
	r := newPresenceRegistry()

	userID, wentOffline := r.unregister("never-registered")

	assert.Equal(t, "", userID)
	assert.False(t, wentOffline)
}

func TestRegisterMovesConnectionBetweenIdentities(t *testing.T) {
	r := newPresenceRegistry()
	require.True(t, r.register("user-1", "conn-1"))

	becameOnline := r.register("user-2", "conn-1")

	assert.True(t, becameOnline)
	assert.Equal(t, []string{"user-2"}, r.listOnline(), "previous identity must drop off")
}

func TestListOnlineIsSorted(t *testing.T) {
	r := newPresenceRegistry()
	r.register("charlie", "c1")
	r.register("alice", "c2")
	r.register("bob", "c3")

	assert.Equal(t, []string{"alice", "bob", "charlie"}, r.listOnline())
}
