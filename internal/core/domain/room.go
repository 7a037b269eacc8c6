package domain

// Room is a named group of connections that receive each other's broadcast
// and presence events. A room exists iff its member set is non-empty.
type Room struct {
	ID      RoomID
	Members map[ConnectionID]struct{}
}

func NewRoom(id RoomID) *Room {
	return &Room{
		ID:      id,
		Members: make(map[ConnectionID]struct{}),
	}
}

// RoomInfo is the diagnostic view exposed over HTTP.
type RoomInfo struct {
	ID          RoomID `json:"id"`
	MemberCount int    `json:"member_count"`
}
