package signal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"videonet/internal/core/domain"
	"videonet/internal/core/ports"
	"videonet/pkg/utils"
	"videonet/pkg/validation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Inbound event types.
const (
	msgJoinRoom           = "join_room"
	msgLeaveRoom          = "leave_room"
	msgOffer              = "offer"
	msgAnswer             = "answer"
	msgICECandidate       = "ice_candidate"
	msgMediaToggle        = "media_toggle"
	msgHandToggle         = "hand_toggle"
	msgChatMessage        = "chat_message"
	msgScreenShareStarted = "screen_share_started"
	msgScreenShareStopped = "screen_share_stopped"
	msgFileTransferStart  = "file_transfer_start"
	msgFileChunk          = "file_chunk"
	msgFileTransferEnd    = "file_transfer_end"
	msgSetQuality         = "set_quality"
	msgPing               = "ping"
)

type WebSocketServer struct {
	registry ports.ConnectionRegistry
	presence ports.PresenceService
	quality  ports.QualityService
	hub      *Hub
	metrics  Metrics

	pingInterval   time.Duration
	pongTimeout    time.Duration
	writeTimeout   time.Duration
	maxMessageSize int64

	logger *zap.SugaredLogger
}

func NewWebSocketServer(
	registry ports.ConnectionRegistry,
	presence ports.PresenceService,
	quality ports.QualityService,
	hub *Hub,
	metrics Metrics,
	logger *zap.SugaredLogger,
) *WebSocketServer {
	return &WebSocketServer{
		registry:       registry,
		presence:       presence,
		quality:        quality,
		hub:            hub,
		metrics:        metrics,
		pingInterval:   30 * time.Second,
		pongTimeout:    60 * time.Second,
		writeTimeout:   10 * time.Second,
		maxMessageSize: 1 << 20,
		logger:         logger,
	}
}

// SetPingInterval sets the keepalive ping interval.
func (s *WebSocketServer) SetPingInterval(interval time.Duration) {
	s.pingInterval = interval
}

// SetPongTimeout sets how long a connection may stay silent before the read
// loop gives up on it.
func (s *WebSocketServer) SetPongTimeout(timeout time.Duration) {
	s.pongTimeout = timeout
}

// SetMaxMessageSize caps the size of a single inbound frame.
func (s *WebSocketServer) SetMaxMessageSize(size int64) {
	s.maxMessageSize = size
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	// The connection id is assigned here, at transport-accept time; clients
	// never pick their own.
	id := domain.ConnectionID(utils.GenerateConnectionID())

	s.registry.Register(id)
	client := s.hub.Add(id, conn)
	s.metrics.ConnectionOpened()

	go client.writePump(s.pingInterval, s.writeTimeout)

	s.hub.SendTo(id, domain.ConnectedEvent{Type: domain.EventConnected, UserID: id})
	s.logger.Infow("client connected", "connection_id", id, "remote", r.RemoteAddr)

	s.readLoop(id, conn)

	// Cleanup order matters: drop the transport first so fan-out during the
	// leave cascade does not target the dying connection, then retract all
	// room memberships.
	s.hub.Remove(id)
	s.presence.Disconnect(id)
	s.metrics.ConnectionClosed()
	s.metrics.SetActiveRooms(s.presence.RoomCount())

	s.logger.Infow("client disconnected", "connection_id", id)
}

func (s *WebSocketServer) readLoop(id domain.ConnectionID, conn *websocket.Conn) {
	conn.SetReadLimit(s.maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
		return nil
	})

	for {
		var msg SignalMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Infow("read error", "connection_id", id, "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
		s.dispatch(id, msg)
	}
}

// dispatch routes one inbound event. Failures are isolated per event: a
// malformed payload or a panic in a handler is logged and dropped without
// tearing down the connection. No error is ever surfaced to the sender; a
// client that wants delivery guarantees must layer its own acks above this
// protocol.
func (s *WebSocketServer) dispatch(id domain.ConnectionID, msg SignalMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Errorw("panic while handling event",
				"connection_id", id,
				"event", msg.Type,
				"panic", rec,
			)
		}
	}()

	if err := s.handleMessage(id, msg); err != nil {
		s.metrics.MessageDropped("malformed")
		s.logger.Warnw("dropping event",
			"connection_id", id,
			"event", msg.Type,
			"error", err,
		)
	}
}

func (s *WebSocketServer) handleMessage(id domain.ConnectionID, msg SignalMessage) error {
	switch msg.Type {
	case msgJoinRoom:
		return s.handleJoinRoom(id, msg)
	case msgLeaveRoom:
		return s.handleLeaveRoom(id, msg)
	case msgOffer, msgAnswer, msgICECandidate:
		return s.handleNegotiation(id, msg)
	case msgMediaToggle:
		return s.handleMediaToggle(id, msg)
	case msgHandToggle:
		return s.handleHandToggle(id, msg)
	case msgChatMessage:
		return s.handleChatMessage(id, msg)
	case msgScreenShareStarted, msgScreenShareStopped:
		return s.handleScreenShare(id, msg)
	case msgFileTransferStart, msgFileChunk, msgFileTransferEnd:
		return s.handleFileTransfer(id, msg)
	case msgSetQuality:
		return s.handleSetQuality(id, msg)
	case msgPing:
		s.hub.SendTo(id, domain.PongEvent{Type: domain.EventPong})
		return nil
	default:
		return fmt.Errorf("unknown event type %q", msg.Type)
	}
}

func (s *WebSocketServer) handleJoinRoom(id domain.ConnectionID, msg SignalMessage) error {
	var payload JoinRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid join_room payload: %w", err)
	}
	if err := validation.ValidateRoomID(string(payload.RoomID)); err != nil {
		return err
	}
	if payload.UserInfo == nil {
		payload.UserInfo = domain.UserInfo{}
	}

	s.presence.Join(id, payload.RoomID, payload.UserInfo)
	s.metrics.MessageRelayed(msgJoinRoom)
	s.metrics.SetActiveRooms(s.presence.RoomCount())
	return nil
}

func (s *WebSocketServer) handleLeaveRoom(id domain.ConnectionID, msg SignalMessage) error {
	var payload LeaveRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid leave_room payload: %w", err)
	}
	if err := validation.ValidateRoomID(string(payload.RoomID)); err != nil {
		return err
	}

	s.presence.Leave(id, payload.RoomID)
	s.metrics.MessageRelayed(msgLeaveRoom)
	s.metrics.SetActiveRooms(s.presence.RoomCount())
	return nil
}

// handleNegotiation forwards offer/answer/ice_candidate to one explicit
// target. An unknown target is not an error: the message is dropped and the
// sender gets no failure signal.
func (s *WebSocketServer) handleNegotiation(id domain.ConnectionID, msg SignalMessage) error {
	var payload NegotiationPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	if payload.To == "" {
		return fmt.Errorf("target connection is required")
	}

	if !s.registry.Exists(payload.To) {
		s.metrics.MessageDropped("unknown_target")
		s.logger.Debugw("dropping negotiation message for unknown target",
			"event", msg.Type,
			"from", id,
			"to", payload.To,
		)
		return nil
	}

	s.hub.SendTo(payload.To, NegotiationEvent{
		Type:    msg.Type,
		From:    id,
		Payload: payload.Payload,
	})
	s.metrics.MessageRelayed(msg.Type)
	return nil
}

func (s *WebSocketServer) handleMediaToggle(id domain.ConnectionID, msg SignalMessage) error {
	var payload MediaTogglePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid media_toggle payload: %w", err)
	}
	if err := validation.ValidateRoomID(string(payload.RoomID)); err != nil {
		return err
	}

	s.broadcast(payload.RoomID, id, msgMediaToggle, MediaToggledEvent{
		Type:      domain.EventMediaToggled,
		UserID:    id,
		MediaType: payload.MediaType,
		Enabled:   payload.Enabled,
	})
	return nil
}

func (s *WebSocketServer) handleHandToggle(id domain.ConnectionID, msg SignalMessage) error {
	var payload HandTogglePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid hand_toggle payload: %w", err)
	}
	if err := validation.ValidateRoomID(string(payload.RoomID)); err != nil {
		return err
	}

	s.broadcast(payload.RoomID, id, msgHandToggle, HandToggleEvent{
		Type:     domain.EventHandToggle,
		From:     id,
		IsRaised: payload.IsRaised,
	})
	return nil
}

func (s *WebSocketServer) handleChatMessage(id domain.ConnectionID, msg SignalMessage) error {
	var payload ChatMessagePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid chat_message payload: %w", err)
	}
	if err := validation.ValidateRoomID(string(payload.RoomID)); err != nil {
		return err
	}

	info, _ := s.registry.UserInfo(id)
	if info == nil {
		info = domain.UserInfo{}
	}

	s.broadcast(payload.RoomID, id, msgChatMessage, ChatMessageEvent{
		Type:      domain.EventChatMessage,
		UserID:    id,
		UserInfo:  info,
		Message:   payload.MessageText(),
		Timestamp: payload.Timestamp,
	})
	return nil
}

func (s *WebSocketServer) handleScreenShare(id domain.ConnectionID, msg SignalMessage) error {
	var payload ScreenSharePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	if err := validation.ValidateRoomID(string(payload.RoomID)); err != nil {
		return err
	}

	s.broadcast(payload.RoomID, id, msg.Type, ScreenShareEvent{
		Type:   msg.Type,
		UserID: id,
	})
	return nil
}

// handleFileTransfer relays file-transfer signaling verbatim: every inbound
// field passes through to the room, annotated with the sender.
func (s *WebSocketServer) handleFileTransfer(id domain.ConnectionID, msg SignalMessage) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}

	roomID, _ := payload["roomId"].(string)
	if err := validation.ValidateRoomID(roomID); err != nil {
		return err
	}

	out := make(map[string]interface{}, len(payload)+2)
	for k, v := range payload {
		out[k] = v
	}
	out["type"] = msg.Type
	out["from"] = id

	s.broadcast(domain.RoomID(roomID), id, msg.Type, out)
	return nil
}

func (s *WebSocketServer) handleSetQuality(id domain.ConnectionID, msg SignalMessage) error {
	var payload SetQualityPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid set_quality payload: %w", err)
	}

	value, err := parseQuality(payload.Quality)
	if err != nil {
		s.logger.Warnw("rejecting malformed quality value", "connection_id", id, "error", err)
		return nil
	}

	if err := s.quality.Set(value); err != nil {
		s.logger.Warnw("rejecting out-of-range quality value", "connection_id", id, "value", value)
		return nil
	}

	s.logger.Infow("compression quality updated", "connection_id", id, "quality", value)
	return nil
}

// broadcast fans an event out to every room member except the sender. An
// unknown room targets zero recipients.
func (s *WebSocketServer) broadcast(roomID domain.RoomID, sender domain.ConnectionID, eventType string, event interface{}) {
	members := s.presence.MembersExcept(roomID, sender)
	for _, member := range members {
		s.hub.SendTo(member, event)
	}
	s.metrics.MessageRelayed(eventType)
}

// parseQuality accepts a JSON integer or a string holding one; anything else
// is rejected without touching the stored value.
func parseQuality(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("quality is required")
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strconv.Atoi(strings.TrimSpace(str))
	}

	return 0, fmt.Errorf("quality must be an integer, got %s", string(raw))
}

func (s *WebSocketServer) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().Unix(),
		"connections": s.hub.Count(),
		"rooms":       s.presence.RoomCount(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
