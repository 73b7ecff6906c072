package hub

import "sync"

// roomSet tracks which connections subscribe to which chat rooms. Rooms are
// purely live state: created on first join, removed when the last subscriber
// leaves, never persisted.
type roomSet struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client // room id -> connection id -> client
	conns map[string]map[string]struct{} // connection id -> room id set
}

func newRoomSet() *roomSet {
	return &roomSet{
		rooms: make(map[string]map[string]*Client),
		conns: make(map[string]map[string]struct{}),
	}
}

// join is idempotent; a connection may subscribe to many rooms at once.
func (rs *roomSet) join(c *Client, roomID string) {
	if roomID == "" {
		return
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	room, ok := rs.rooms[roomID]
	if !ok {
		room = make(map[string]*Client)
		rs.rooms[roomID] = room
	}
	room[c.ID] = c

	joined, ok := rs.conns[c.ID]
	if !ok {
		joined = make(map[string]struct{})
		rs.conns[c.ID] = joined
	}
	joined[roomID] = struct{}{}
}

func (rs *roomSet) leave(connID, roomID string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.leaveLocked(connID, roomID)
}

// leaveAll drops the connection from every room it joined.
func (rs *roomSet) leaveAll(connID string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	for roomID := range rs.conns[connID] {
		rs.leaveLocked(connID, roomID)
	}
}

func (rs *roomSet) leaveLocked(connID, roomID string) {
	if room, ok := rs.rooms[roomID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(rs.rooms, roomID)
		}
	}
	if joined, ok := rs.conns[connID]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(rs.conns, connID)
		}
	}
}

// subscribers returns a snapshot of the room's clients, skipping exceptConn
// when the caller wants "everyone but me" semantics.
func (rs *roomSet) subscribers(roomID, exceptConn string) []*Client {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	room, ok := rs.rooms[roomID]
	if !ok {
		return nil
	}

	clients := make([]*Client, 0, len(room))
	for connID, c := range room {
		if connID == exceptConn {
			continue
		}
		clients = append(clients, c)
	}
	return clients
}

// roomsOf returns the room ids a connection currently subscribes to.
func (rs *roomSet) roomsOf(connID string) []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	ids := make([]string, 0, len(rs.conns[connID]))
	for roomID := range rs.conns[connID] {
		ids = append(ids, roomID)
	}
	return ids
}

// snapshot lists every live room with its subscriber count.
func (rs *roomSet) snapshot() map[string]int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	out := make(map[string]int, len(rs.rooms))
	for roomID, room := range rs.rooms {
		out[roomID] = len(room)
	}
	return out
}
