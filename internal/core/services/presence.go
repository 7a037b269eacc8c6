package services

import (
	"go.uber.org/zap"

	"videonet/internal/core/domain"
	"videonet/internal/core/ports"
)

// Presence implements the join/leave protocol on top of the Registry:
// membership mutation plus notification fan-out. All registry mutation
// happens before any outbound enqueue, so a concurrent event for the same
// room never observes a half-updated membership set.
type Presence struct {
	registry *Registry
	sender   ports.Sender
	logger   *zap.SugaredLogger
}

func NewPresence(registry *Registry, sender ports.Sender, logger *zap.SugaredLogger) *Presence {
	return &Presence{
		registry: registry,
		sender:   sender,
		logger:   logger,
	}
}

// Join adds the connection to the room, notifies existing members, and sends
// the membership snapshot to the joiner only. The joiner never receives its
// own user_joined event.
func (p *Presence) Join(id domain.ConnectionID, roomID domain.RoomID, info domain.UserInfo) {
	res, ok := p.registry.Join(id, roomID, info)
	if !ok {
		p.logger.Warnw("join from unknown connection", "connection_id", id, "room_id", roomID)
		return
	}

	joined := domain.UserJoinedEvent{
		Type:     domain.EventUserJoined,
		UserID:   id,
		UserInfo: info,
	}
	for _, member := range res.Others {
		p.sender.SendTo(member, joined)
	}

	p.sender.SendTo(id, domain.RoomUsersEvent{
		Type:  domain.EventRoomUsers,
		Users: res.Snapshot,
	})

	p.logger.Infow("connection joined room",
		"connection_id", id,
		"room_id", roomID,
		"members", len(res.Snapshot),
	)
}

// Leave removes the connection from the room and notifies the remaining
// members. Duplicate leaves are silent no-ops with no duplicate broadcast.
func (p *Presence) Leave(id domain.ConnectionID, roomID domain.RoomID) {
	remaining, ok := p.registry.Leave(id, roomID)
	if !ok {
		return
	}

	p.notifyLeft(id, remaining)
	p.logger.Infow("connection left room", "connection_id", id, "room_id", roomID)
}

// Disconnect drains every room membership the connection holds, notifying
// each room's remaining members, then drops the connection record.
func (p *Presence) Disconnect(id domain.ConnectionID) {
	departures := p.registry.Deregister(id)
	for _, dep := range departures {
		p.notifyLeft(id, dep.Remaining)
	}

	if len(departures) > 0 {
		p.logger.Infow("connection departed rooms on disconnect",
			"connection_id", id,
			"rooms", len(departures),
		)
	}
}

func (p *Presence) notifyLeft(id domain.ConnectionID, remaining []domain.ConnectionID) {
	left := domain.UserLeftEvent{Type: domain.EventUserLeft, UserID: id}
	for _, member := range remaining {
		p.sender.SendTo(member, left)
	}
}

func (p *Presence) MembersExcept(roomID domain.RoomID, except domain.ConnectionID) []domain.ConnectionID {
	return p.registry.MembersExcept(roomID, except)
}

func (p *Presence) ListRooms() []domain.RoomInfo {
	return p.registry.ListRooms()
}

func (p *Presence) RoomCount() int {
	return p.registry.RoomCount()
}
