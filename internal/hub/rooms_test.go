package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAndSubscribers(t *testing.T) {
	rs := newRoomSet()
	a := newTestClient("conn-a")
	b := newTestClient("conn-b")

	rs.join(a, "chat-1")
	rs.join(b, "chat-1")

	subs := rs.subscribers("chat-1", "")
	assert.Len(t, subs, 2)
}

func TestSubscribersExcludesOriginConnection(t *testing.T) {
	rs := newRoomSet()
	a := newTestClient("conn-a")
	b := newTestClient("conn-b")
	rs.join(a, "chat-1")
	rs.join(b, "chat-1")

	subs := rs.subscribers("chat-1", "conn-a")

	require.Len(t, subs, 1)
	assert.Equal(t, "conn-b", subs[0].ID)
}

func TestJoinIsIdempotent(t *testing.T) {
	rs := newRoomSet()
	a := newTestClient("conn-a")

	rs.join(a, "chat-1")
	rs.join(a, "chat-1")

	assert.Len(t, rs.subscribers("chat-1", ""), 1)
	assert.Equal(t, []string{"chat-1"}, rs.roomsOf("conn-a"))
}

func TestEmptyRoomIsRemoved(t *testing.T) {
	rs := newRoomSet()
	a := newTestClient("conn-a")
	rs.join(a, "chat-1")

	rs.leave("conn-a", "chat-1")

	assert.Nil(t, rs.subscribers("chat-1", ""))
	assert.Empty(t, rs.snapshot())
}

func TestLeaveAllDropsEveryMembership(t *testing.T) {
	rs := newRoomSet()
	a := newTestClient("conn-a")
	b := newTestClient("conn-b")
	rs.join(a, "chat-1")
	rs.join(a, "chat-2")
	rs.join(b, "chat-2")

	rs.leaveAll("conn-a")

	assert.Empty(t, rs.roomsOf("conn-a"))
	assert.Nil(t, rs.subscribers("chat-1", ""))
	assert.Len(t, rs.subscribers("chat-2", ""), 1, "other subscribers stay")
}

func TestSnapshotCounts(t *testing.T) {
	rs := newRoomSet()
	a := newTestClient("conn-a")
	b := newTestClient("conn-b")
	rs.join(a, "chat-1")
	rs.join(b, "chat-1")
	rs.join(b, "chat-2")

	snap := rs.snapshot()

	assert.Equal(t, map[string]int{"chat-1": 2, "chat-2": 1}, snap)
}
