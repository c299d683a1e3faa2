package room

import (
	"sync"

	"golang.org/x/exp/maps"
)

// roomHandle owns one room: its state, its playback session and the lock that
// serializes every mutation for that room. Different rooms run in parallel;
// a single room's intents are applied one at a time.
type roomHandle struct {
	mu      sync.Mutex
	state   *roomState
	session *playbackSession
}

// registry maps room ids to exclusively-owned handles. Callers always go
// through the registry to reach a room; handles are never cached outside it.
type registry struct {
	mu    sync.RWMutex
	rooms map[string]*roomHandle
}

func newRegistry() *registry {
	return &registry{rooms: make(map[string]*roomHandle)}
}

func (r *registry) get(roomID string) (*roomHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.rooms[roomID]

	return h, ok
}

// put installs a fresh handle for the room id, replacing any previous one.
func (r *registry) put(roomID string, st *roomState) *roomHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := &roomHandle{state: st}
	r.rooms[roomID] = h

	return h
}

func (r *registry) remove(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rooms, roomID)
}

func (r *registry) ids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Keys(r.rooms)
}
