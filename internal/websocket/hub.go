package websocket

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"signaling-service/internal/events"
	"signaling-service/internal/presence"
	"signaling-service/internal/session"
)

const (
	eventConnectionOpened   = events.TypeConnectionOpened
	eventConnectionClosed   = events.TypeConnectionClosed
	eventSessionStarted     = events.TypeSessionStarted
	eventSessionEnded       = events.TypeSessionEnded
	eventParticipantUpdated = events.TypeParticipantUpdated
)

// Hub owns every live WebSocket connection. Registration and removal are
// serialized through Run; the connection maps are additionally guarded by a
// read-write mutex so broadcasts can snapshot recipients concurrently.
type Hub struct {
	opts Options

	register   chan *Client
	unregister chan *Client

	mu          sync.RWMutex
	clients     map[*Client]bool
	userClients map[uint]map[*Client]bool

	tokens   *session.Manager
	presence *presence.Directory
	relay    *Relay
	sink     events.Sink
	metrics  *Metrics

	done     chan struct{}
	stopOnce sync.Once

	log *zap.Logger
}

func NewHub(opts Options, tokens *session.Manager, dir *presence.Directory, sink events.Sink, log *zap.Logger) *Hub {
	if sink == nil {
		sink = events.NoopSink{}
	}

	h := &Hub{
		opts:        opts,
		register:    make(chan *Client, 64),
		unregister:  make(chan *Client, 64),
		clients:     make(map[*Client]bool),
		userClients: make(map[uint]map[*Client]bool),
		tokens:      tokens,
		presence:    dir,
		sink:        sink,
		metrics:     NewMetrics(),
		done:        make(chan struct{}),
		log:         log.Named("hub"),
	}
	h.relay = NewRelay(h, dir, h.metrics, log)
	return h
}

// Run processes registration traffic until the context is cancelled or Stop
// is called.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("hub started")

	for {
		select {
		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case <-ctx.Done():
			h.Stop()
			return

		case <-h.done:
			return
		}
	}
}

// Stop force-closes every connection and shuts the hub down. Idempotent.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		clients := make([]*Client, 0, len(h.clients))
		for c := range h.clients {
			clients = append(clients, c)
		}
		h.clients = make(map[*Client]bool)
		h.userClients = make(map[uint]map[*Client]bool)
		h.mu.Unlock()

		for _, c := range clients {
			c.endSession(LeaveReasonDisconnect)
			c.forceClose()
		}

		h.log.Info("hub stopped", zap.Int("connections_closed", len(clients)))
	})
}

// Register queues a connection for registration. After shutdown it is a no-op
// and the socket is closed immediately.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.forceClose()
	}
}

// Unregister queues a connection for removal. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	if h.clients[c] {
		h.mu.Unlock()
		return
	}
	h.clients[c] = true
	if h.userClients[c.userID] == nil {
		h.userClients[c.userID] = make(map[*Client]bool)
	}
	h.userClients[c.userID][c] = true
	userConns := len(h.userClients[c.userID])
	total := len(h.clients)
	h.mu.Unlock()

	h.metrics.ConnectionOpened()
	h.sink.Publish(events.Event{
		Type:   eventConnectionOpened,
		UserID: c.userID,
		Data:   map[string]any{"connection_id": c.id},
	})

	h.log.Info("connection registered",
		zap.String("connection_id", c.id),
		zap.Uint("user_id", c.userID),
		zap.Int("user_connections", userConns),
		zap.Int("total_connections", total))
}

func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	if conns := h.userClients[c.userID]; conns != nil {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.userClients, c.userID)
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	c.close()
	c.closeSendChannel()

	h.metrics.ConnectionClosed()
	h.sink.Publish(events.Event{
		Type:   eventConnectionClosed,
		UserID: c.userID,
		Data:   map[string]any{"connection_id": c.id},
	})

	h.log.Info("connection unregistered",
		zap.String("connection_id", c.id),
		zap.Uint("user_id", c.userID),
		zap.Int("total_connections", total))
}

// Broadcast sends a payload to every registered connection and returns the
// number of send queues it reached.
func (h *Hub) Broadcast(payload []byte) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.enqueue(payload) {
			delivered++
		} else {
			h.metrics.MessageDropped()
		}
	}

	h.metrics.BroadcastSent()
	return delivered
}

// BroadcastToChannel sends a payload to every connection bound to the channel,
// skipping excludeUserID when non-zero.
func (h *Hub) BroadcastToChannel(channelID uint, payload []byte, excludeUserID uint) int {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if excludeUserID != 0 && c.userID == excludeUserID {
			continue
		}
		if c.boundTo(channelID) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.enqueue(payload) {
			delivered++
		} else {
			h.metrics.MessageDropped()
		}
	}

	h.metrics.BroadcastSent()
	return delivered
}

// SendToUser delivers a payload to every connection of the user that holds an
// active realtime session. Plain viewing connections are skipped; signaling
// only concerns session members.
func (h *Hub) SendToUser(userID uint, payload []byte) int {
	h.mu.RLock()
	conns := h.userClients[userID]
	targets := make([]*Client, 0, len(conns))
	for c := range conns {
		if _, _, ok := c.activeSession(); ok {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range targets {
		if c.enqueue(payload) {
			delivered++
		} else {
			h.metrics.MessageDropped()
		}
	}
	return delivered
}

// EndSessionFor runs the leave path on behalf of the REST edge: the
// participant is removed, the channel notified, and the lifecycle event
// published. Reports whether a matching participant was present.
func (h *Hub) EndSessionFor(channelID, userID uint, sessionID, reason string) bool {
	removed, ok := h.presence.Remove(channelID, userID, sessionID)
	if !ok {
		return false
	}

	if payload, err := newParticipantLeft(removed.UserID, removed.ChannelID, reason); err == nil {
		h.BroadcastToChannel(removed.ChannelID, payload, removed.UserID)
	}

	h.publishSessionEvent(eventSessionEnded, removed, reason)

	h.log.Info("session ended via rest",
		zap.Uint("channel_id", removed.ChannelID),
		zap.Uint("user_id", removed.UserID),
		zap.String("reason", reason))
	return true
}

func (h *Hub) publishSessionEvent(eventType string, p presence.Participant, reason string) {
	data := map[string]any{
		"display_name": p.DisplayName,
		"role":         p.Role,
		"media_state":  p.MediaState,
	}
	if reason != "" {
		data["reason"] = reason
	}

	h.sink.Publish(events.Event{
		Type:      eventType,
		ChannelID: p.ChannelID,
		UserID:    p.UserID,
		SessionID: p.SessionID,
		Data:      data,
	})
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// UserConnectionCount returns how many connections the user has open.
func (h *Hub) UserConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID])
}

// IsUserOnline reports whether the user has at least one live connection.
func (h *Hub) IsUserOnline(userID uint) bool {
	return h.UserConnectionCount(userID) > 0
}

// Metrics exposes the hub counters for the stats endpoint.
func (h *Hub) Metrics() *Metrics {
	return h.metrics
}

// Presence exposes the participant directory.
func (h *Hub) Presence() *presence.Directory {
	return h.presence
}
