package signal

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"videonet/internal/core/domain"
)

// Metrics is the subset of the monitoring collector the signal layer uses.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed()
	SetActiveRooms(count int)
	MessageRelayed(eventType string)
	MessageDropped(reason string)
}

// NopMetrics satisfies Metrics without recording anything.
type NopMetrics struct{}

func (NopMetrics) ConnectionOpened() {}
func (NopMetrics) ConnectionClosed() {}
func (NopMetrics) SetActiveRooms(int) {}
func (NopMetrics) MessageRelayed(string) {}
func (NopMetrics) MessageDropped(string) {}

// Client is one connected participant's transport session. Outbound events
// are enqueued on send and drained by a dedicated write pump, so relay logic
// never blocks on a slow consumer.
type Client struct {
	ID   domain.ConnectionID
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

// close signals the write pump to exit. The send channel itself is never
// closed so concurrent SendTo calls can never panic on it.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// writePump drains the send channel onto the websocket and keeps the
// connection alive with periodic pings. It exits when the client is closed
// or a write fails.
func (c *Client) writePump(pingInterval, writeTimeout time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub tracks live transport sessions by connection id and implements
// ports.Sender for the relay services.
type Hub struct {
	mu      sync.RWMutex
	clients map[domain.ConnectionID]*Client

	sendBuffer int
	metrics    Metrics
	logger     *zap.SugaredLogger
}

func NewHub(sendBuffer int, metrics Metrics, logger *zap.SugaredLogger) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &Hub{
		clients:    make(map[domain.ConnectionID]*Client),
		sendBuffer: sendBuffer,
		metrics:    metrics,
		logger:     logger,
	}
}

func (h *Hub) Add(id domain.ConnectionID, conn *websocket.Conn) *Client {
	client := &Client{
		ID:   id,
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[id] = client
	h.mu.Unlock()

	return client
}

func (h *Hub) Remove(id domain.ConnectionID) {
	h.mu.Lock()
	client, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()

	if ok {
		client.close()
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// SendTo marshals the event and enqueues it for the target. A full buffer
// drops the event rather than blocking: slow consumers only lose their own
// traffic, per the fire-and-forget contract.
func (h *Hub) SendTo(id domain.ConnectionID, event interface{}) bool {
	h.mu.RLock()
	client, ok := h.clients[id]
	h.mu.RUnlock()

	if !ok {
		return false
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorw("failed to marshal outbound event", "connection_id", id, "error", err)
		return false
	}

	select {
	case <-client.done:
		return false
	default:
	}

	select {
	case client.send <- data:
		return true
	default:
		h.metrics.MessageDropped("slow_consumer")
		h.logger.Warnw("send buffer full, dropping event", "connection_id", id)
		return false
	}
}
