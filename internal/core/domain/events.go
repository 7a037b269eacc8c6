package domain

// Outbound signaling event names.
const (
	EventConnected          = "connected"
	EventUserJoined         = "user_joined"
	EventRoomUsers          = "room_users"
	EventUserLeft           = "user_left"
	EventOffer              = "offer"
	EventAnswer             = "answer"
	EventICECandidate       = "ice_candidate"
	EventMediaToggled       = "media_toggled"
	EventHandToggle         = "hand_toggle"
	EventChatMessage        = "chat_message"
	EventScreenShareStarted = "screen_share_started"
	EventScreenShareStopped = "screen_share_stopped"
	EventPong               = "pong"
)

// ConnectedEvent tells a client the server-assigned id of its connection, so
// it can hand the id to peers as a negotiation target.
type ConnectedEvent struct {
	Type   string       `json:"type"`
	UserID ConnectionID `json:"userId"`
}

type UserJoinedEvent struct {
	Type     string       `json:"type"`
	UserID   ConnectionID `json:"userId"`
	UserInfo UserInfo     `json:"userInfo"`
}

// RoomUsersEvent is the membership snapshot sent to a joiner only.
type RoomUsersEvent struct {
	Type  string       `json:"type"`
	Users []RoomMember `json:"users"`
}

type UserLeftEvent struct {
	Type   string       `json:"type"`
	UserID ConnectionID `json:"userId"`
}

type PongEvent struct {
	Type string `json:"type"`
}
