package services

import (
	"sync"

	"videonet/internal/core/domain"
)

// Registry is the authoritative table of connected participants and room
// membership. Both tables live behind one mutex so that the bidirectional
// invariant (a room lists a connection iff the connection lists the room)
// can never be observed half-updated, even under real parallelism.
//
// Connection-table operations live in this file; the room-table side is in
// directory.go on the same type.
type Registry struct {
	mu          sync.RWMutex
	connections map[domain.ConnectionID]*domain.Connection
	rooms       map[domain.RoomID]*domain.Room
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[domain.ConnectionID]*domain.Connection),
		rooms:       make(map[domain.RoomID]*domain.Room),
	}
}

// Register creates a connection record with an empty room set.
func (r *Registry) Register(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[id] = domain.NewConnection(id)
}

// SetUserInfo attaches or overwrites the opaque info blob. Unknown
// connections are a no-op: a disconnect may race an in-flight event.
func (r *Registry) SetUserInfo(id domain.ConnectionID, info domain.UserInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.connections[id]; ok {
		conn.Info = info
	}
}

func (r *Registry) Exists(id domain.ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.connections[id]
	return ok
}

func (r *Registry) UserInfo(id domain.ConnectionID) (domain.UserInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.connections[id]
	if !ok {
		return nil, false
	}
	return conn.Info, true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.connections)
}

// RoomDeparture records one room a connection was drained from during
// deregistration, with the members left behind to notify.
type RoomDeparture struct {
	RoomID    domain.RoomID
	Remaining []domain.ConnectionID
}

// Deregister drains every room membership the connection holds, then deletes
// the connection record. The whole cascade runs under one lock so a
// partially-cleaned connection is never observable. Returns the departures
// for the caller to fan out user_left notifications.
func (r *Registry) Deregister(id domain.ConnectionID) []RoomDeparture {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.connections[id]
	if !ok {
		return nil
	}

	var departures []RoomDeparture
	for roomID := range conn.Rooms {
		if remaining, ok := r.removeMemberLocked(id, roomID); ok {
			departures = append(departures, RoomDeparture{RoomID: roomID, Remaining: remaining})
		}
	}

	delete(r.connections, id)
	return departures
}
