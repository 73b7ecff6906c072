package hub

import (
	"sort"
	"sync"
)

// presenceRegistry owns the live user<->connection mapping. A user holds a
// set of connections (multi-device); the user counts as online while the set
// is non-empty. The maps never escape this type.
type presenceRegistry struct {
	mu     sync.RWMutex
	byConn map[string]string              // connection id -> user id
	byUser map[string]map[string]struct{} // user id -> connection id set
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{
		byConn: make(map[string]string),
		byUser: make(map[string]map[string]struct{}),
	}
}

// register associates a connection with a user. Re-registering the same pair
// is a no-op; a connection switching identity is moved between users.
// becameOnline is true when this is the user's first live connection.
func (r *presenceRegistry) register(userID, connID string) (becameOnline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byConn[connID]; ok {
		if prev == userID {
			return false
		}
		r.dropConnLocked(prev, connID)
	}

	r.byConn[connID] = userID
	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		r.byUser[userID] = set
	}
	set[connID] = struct{}{}
	return len(set) == 1
}

// unregister removes the connection. userID is empty when the connection
// never completed setup; wentOffline is true only when the user's last
// connection just left.
func (r *presenceRegistry) unregister(connID string) (userID string, wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connID]
	if !ok {
		return "", false
	}

	delete(r.byConn, connID)
	wentOffline = r.dropConnLocked(userID, connID)
	return userID, wentOffline
}

func (r *presenceRegistry) dropConnLocked(userID, connID string) bool {
	set, ok := r.byUser[userID]
	if !ok {
		return false
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(r.byUser, userID)
		return true
	}
	return false
}

// listOnline returns a sorted snapshot of online user ids.
func (r *presenceRegistry) listOnline() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.byUser))
	for id := range r.byUser {
		users = append(users, id)
	}
	sort.Strings(users)
	return users
}

// counts reports identified connections and distinct online users.
func (r *presenceRegistry) counts() (connections, users int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn), len(r.byUser)
}
