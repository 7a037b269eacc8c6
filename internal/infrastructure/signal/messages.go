package signal

import (
	"encoding/json"

	"videonet/internal/core/domain"
)

// SignalMessage is the inbound envelope: an event type plus an opaque
// payload decoded per type by the dispatcher.
type SignalMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinRoomPayload struct {
	RoomID   domain.RoomID   `json:"roomId"`
	UserInfo domain.UserInfo `json:"userInfo"`
}

type LeaveRoomPayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

// NegotiationPayload targets exactly one connection. The inner payload (SDP,
// ICE candidate) is never inspected by the relay.
type NegotiationPayload struct {
	To      domain.ConnectionID `json:"to"`
	Payload json.RawMessage     `json:"payload"`
}

type MediaTogglePayload struct {
	RoomID    domain.RoomID `json:"roomId"`
	MediaType string        `json:"type"`
	Enabled   bool          `json:"enabled"`
}

type HandTogglePayload struct {
	RoomID   domain.RoomID `json:"roomId"`
	IsRaised bool          `json:"isRaised"`
}

// ChatMessagePayload accepts the message text from several alternate field
// names; the first non-empty one wins.
type ChatMessagePayload struct {
	RoomID    domain.RoomID `json:"roomId"`
	Content   string        `json:"content"`
	Message   string        `json:"message"`
	Msg       string        `json:"msg"`
	Text      string        `json:"text"`
	Body      string        `json:"body"`
	Timestamp interface{}   `json:"timestamp"`
}

func (p ChatMessagePayload) MessageText() string {
	for _, candidate := range []string{p.Content, p.Message, p.Msg, p.Text, p.Body} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

type ScreenSharePayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

type SetQualityPayload struct {
	Quality json.RawMessage `json:"quality"`
}

// Outbound relay event shapes. Presence events live in the domain package;
// these are built by the dispatcher only.

type NegotiationEvent struct {
	Type    string              `json:"type"`
	From    domain.ConnectionID `json:"from"`
	Payload json.RawMessage     `json:"payload"`
}

type MediaToggledEvent struct {
	Type      string              `json:"type"`
	UserID    domain.ConnectionID `json:"userId"`
	MediaType string              `json:"mediaType"`
	Enabled   bool                `json:"enabled"`
}

type HandToggleEvent struct {
	Type     string              `json:"type"`
	From     domain.ConnectionID `json:"from"`
	IsRaised bool                `json:"isRaised"`
}

type ChatMessageEvent struct {
	Type      string              `json:"type"`
	UserID    domain.ConnectionID `json:"userId"`
	UserInfo  domain.UserInfo     `json:"userInfo"`
	Message   string              `json:"message"`
	Timestamp interface{}         `json:"timestamp,omitempty"`
}

type ScreenShareEvent struct {
	Type   string              `json:"type"`
	UserID domain.ConnectionID `json:"userId"`
}
