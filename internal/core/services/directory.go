package services

import (
	"sort"

	"videonet/internal/core/domain"
)

// Room-table operations of the Registry. Rooms have no lifecycle of their
// own: an entry exists iff at least one member is joined, and is deleted the
// instant the last member leaves.

// JoinResult carries everything the presence protocol needs to notify after
// a join: the members that were already in the room (to receive user_joined)
// and the full membership snapshot (to send to the joiner). Both are computed
// under the same lock as the mutation, so the snapshot can never omit a
// member that was notified of the join.
type JoinResult struct {
	Others   []domain.ConnectionID
	Snapshot []domain.RoomMember
}

// Join attaches info to the connection and adds the membership on both sides,
// creating the room if absent. Unknown connections are a no-op.
func (r *Registry) Join(id domain.ConnectionID, roomID domain.RoomID, info domain.UserInfo) (JoinResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.connections[id]
	if !ok {
		return JoinResult{}, false
	}
	conn.Info = info
	conn.Rooms[roomID] = struct{}{}

	room, ok := r.rooms[roomID]
	if !ok {
		room = domain.NewRoom(roomID)
		r.rooms[roomID] = room
	}

	var others []domain.ConnectionID
	for member := range room.Members {
		if member != id { // a rejoin must not notify the joiner of itself
			others = append(others, member)
		}
	}
	room.Members[id] = struct{}{}

	snapshot := make([]domain.RoomMember, 0, len(room.Members))
	for member := range room.Members {
		entry := domain.RoomMember{UserID: member, UserInfo: domain.UserInfo{}}
		if mc, ok := r.connections[member]; ok && mc.Info != nil {
			entry.UserInfo = mc.Info
		}
		snapshot = append(snapshot, entry)
	}

	return JoinResult{Others: others, Snapshot: snapshot}, true
}

// Leave removes the membership on both sides and garbage-collects the room
// if it became empty. Returns the members remaining in the room and whether
// the connection was actually a member; duplicate leaves report false so the
// caller does not re-broadcast user_left.
func (r *Registry) Leave(id domain.ConnectionID, roomID domain.RoomID) ([]domain.ConnectionID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.connections[id]; ok {
		delete(conn.Rooms, roomID)
	}
	return r.removeMemberLocked(id, roomID)
}

func (r *Registry) removeMemberLocked(id domain.ConnectionID, roomID domain.RoomID) ([]domain.ConnectionID, bool) {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}
	if _, member := room.Members[id]; !member {
		return nil, false
	}

	delete(room.Members, id)
	if len(room.Members) == 0 {
		delete(r.rooms, roomID)
		return nil, true
	}

	remaining := make([]domain.ConnectionID, 0, len(room.Members))
	for member := range room.Members {
		remaining = append(remaining, member)
	}
	return remaining, true
}

// MembersExcept returns the room's members excluding one connection, for
// sender-excluded broadcasts. An unknown room yields zero recipients.
func (r *Registry) MembersExcept(roomID domain.RoomID, except domain.ConnectionID) []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}

	members := make([]domain.ConnectionID, 0, len(room.Members))
	for member := range room.Members {
		if member != except {
			members = append(members, member)
		}
	}
	return members
}

func (r *Registry) Members(roomID domain.RoomID) []domain.ConnectionID {
	return r.MembersExcept(roomID, "")
}

func (r *Registry) ListRooms() []domain.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]domain.RoomInfo, 0, len(r.rooms))
	for id, room := range r.rooms {
		rooms = append(rooms, domain.RoomInfo{ID: id, MemberCount: len(room.Members)})
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
