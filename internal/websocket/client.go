package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"signaling-service/internal/presence"
)

// Options carries the connection tuning knobs. Defaults match the values the
// service ships with; config can override them.
type Options struct {
	// Time allowed to write a message to the peer.
	WriteTimeout time.Duration

	// Time allowed to read the next pong message from the peer.
	PongTimeout time.Duration

	// Ping period. Must be less than PongTimeout.
	PingInterval time.Duration

	// Maximum message size allowed from the peer. SDP offers run to several
	// kilobytes, so this is far above a chat-style limit.
	MaxMessageBytes int64

	// Outbound queue capacity per connection.
	SendQueueSize int
}

func DefaultOptions() Options {
	return Options{
		WriteTimeout:    10 * time.Second,
		PongTimeout:     60 * time.Second,
		PingInterval:    25 * time.Second,
		MaxMessageBytes: 64 * 1024,
		SendQueueSize:   256,
	}
}

// Conn is the subset of *websocket.Conn the client drives. Tests inject a
// mock; production passes the upgraded gorilla connection.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// sessionState is the connection's binding to a channel's realtime session.
type sessionState struct {
	channelID   uint
	sessionID   string
	displayName string
	role        string
	active      bool
}

type Client struct {
	id   string
	hub  *Hub
	conn Conn
	send chan []byte

	// Identity attached at upgrade time by the HTTP edge.
	userID   uint
	username string

	mu      sync.RWMutex
	viewing uint
	sess    sessionState

	// Connection state management. sendMu serializes sends on the queue
	// against its close so concurrent broadcasters never hit a closed channel.
	ctx        context.Context
	cancel     context.CancelFunc
	closed     int32
	sendClosed int32
	sendMu     sync.RWMutex

	wg  sync.WaitGroup
	log *zap.Logger
}

func NewClient(hub *Hub, conn Conn, userID uint, username string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	return &Client{
		id:       id,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, hub.opts.SendQueueSize),
		userID:   userID,
		username: username,
		ctx:      ctx,
		cancel:   cancel,
		log: hub.log.With(
			zap.String("connection_id", id),
			zap.Uint("user_id", userID)),
	}
}

// Start launches the pumps. The client must already be registered.
func (c *Client) Start() {
	c.wg.Add(2)
	go c.writePump()
	go c.readPump()
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) UserID() uint {
	return c.userID
}

func (c *Client) Username() string {
	return c.username
}

// boundTo reports whether the connection belongs to a channel's fan-out set:
// either it is viewing the channel or its realtime session is attached there.
func (c *Client) boundTo(channelID uint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.viewing == channelID && channelID != 0 {
		return true
	}
	return c.sess.active && c.sess.channelID == channelID
}

func (c *Client) setViewing(channelID uint) {
	c.mu.Lock()
	c.viewing = channelID
	c.mu.Unlock()
}

// activeSession returns the bound channel and session ID, if any.
func (c *Client) activeSession() (channelID uint, sessionID string, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.sess.active {
		return 0, "", false
	}
	return c.sess.channelID, c.sess.sessionID, true
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// close marks the client as closed and cancels its context.
func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.cancel()
		c.log.Debug("client marked closed")
	}
}

// closeSendChannel safely closes the send queue exactly once.
func (c *Client) closeSendChannel() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if atomic.CompareAndSwapInt32(&c.sendClosed, 0, 1) {
		close(c.send)
		c.log.Debug("send queue closed")
	}
}

// forceClose tears the connection down immediately: the socket close unblocks
// readPump, whose defer runs the implicit leave and unregister.
func (c *Client) forceClose() {
	c.close()
	c.closeSendChannel()
	_ = c.conn.Close()
}

// enqueue queues an outbound frame. A full queue means the consumer stopped
// draining; the connection is force-closed rather than blocking the sender.
func (c *Client) enqueue(payload []byte) bool {
	c.sendMu.RLock()
	if c.isClosed() || atomic.LoadInt32(&c.sendClosed) == 1 {
		c.sendMu.RUnlock()
		return false
	}

	select {
	case c.send <- payload:
		c.sendMu.RUnlock()
		return true
	default:
		// forceClose takes the write side of sendMu, so release first.
		c.sendMu.RUnlock()
		c.log.Warn("send queue full, evicting connection")
		c.hub.metrics.ForcedEviction()
		c.forceClose()
		return false
	}
}

// sendEvent marshals and queues a frame for this connection only.
func (c *Client) sendEvent(payload []byte, err error) {
	if err != nil {
		c.log.Error("marshal outbound frame failed", zap.Error(err))
		return
	}
	if !c.enqueue(payload) {
		c.hub.metrics.MessageDropped()
	}
}

// waitForGoroutines blocks until both pumps exit or the timeout passes.
func (c *Client) waitForGoroutines(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		c.log.Warn("timeout waiting for connection goroutines", zap.Duration("timeout", timeout))
	}
}

func (c *Client) readPump() {
	defer func() {
		c.wg.Done()

		// Guaranteed cleanup: implicit leave first, so no directory entry
		// survives the connection, then unregister and close the socket.
		c.endSession(LeaveReasonDisconnect)
		c.close()
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.opts.MaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.hub.opts.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		if c.isClosed() {
			return websocket.ErrCloseSent
		}
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.opts.PongTimeout))
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read failed", zap.Error(err))
			} else {
				c.log.Debug("websocket closed", zap.Error(err))
			}
			return
		}

		c.handleEnvelope(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.opts.PingInterval)
	defer func() {
		c.wg.Done()
		ticker.Stop()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if c.isClosed() {
				return
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug("websocket write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			if c.isClosed() {
				return
			}

			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug("ping failed", zap.Error(err))
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleEnvelope dispatches one inbound frame. Malformed frames and unknown
// types are dropped without touching the connection.
func (c *Client) handleEnvelope(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Debug("dropping malformed frame", zap.Error(err))
		return
	}

	switch {
	case env.Type == MessageTypeChannelSelect:
		var d channelSelectData
		if err := json.Unmarshal(env.Data, &d); err != nil || d.ChannelID == 0 {
			c.log.Debug("dropping channel.select with bad payload")
			return
		}
		c.setViewing(d.ChannelID)

	case env.Type == MessageTypeChannelLeave:
		c.setViewing(0)

	case env.Type == MessageTypeAuthenticate:
		c.handleAuthenticate(env.Data)

	case env.Type == MessageTypeParticipantUpdate:
		c.handleParticipantUpdate(env.Data)

	case env.Type.IsSignal():
		c.handleSignal(env.Type, env.Data)

	case env.Type == MessageTypeSessionLeave || env.Type == MessageTypeEndSession:
		c.endSession(LeaveReasonLeft)

	default:
		c.log.Debug("dropping frame with unknown type", zap.String("type", env.Type.String()))
	}
}

// handleAuthenticate redeems a session token and binds the connection to the
// channel's realtime session.
func (c *Client) handleAuthenticate(data json.RawMessage) {
	var d authenticateData
	if err := json.Unmarshal(data, &d); err != nil {
		c.log.Debug("dropping session.authenticate with bad payload", zap.Error(err))
		return
	}

	desc, err := c.hub.tokens.Validate(d.SessionToken, c.userID, d.ChannelID)
	if err != nil {
		c.hub.metrics.AuthFailure()
		c.log.Info("session authentication rejected",
			zap.Uint("channel_id", d.ChannelID),
			zap.Error(err))
		c.sendEvent(newSessionError(ErrCodeSessionInvalid, "session token rejected"))
		return
	}

	displayName := desc.DisplayName
	if displayName == "" {
		displayName = c.username
	}

	// A re-authenticate on a live connection replaces the binding; the old
	// session leaves its channel first so no directory entry is orphaned.
	c.endSession(LeaveReasonLeft)

	c.mu.Lock()
	c.sess = sessionState{
		channelID:   desc.ChannelID,
		sessionID:   desc.SessionID,
		displayName: displayName,
		role:        desc.Role,
		active:      true,
	}
	c.mu.Unlock()

	p := c.hub.presence.Add(presence.Participant{
		UserID:      desc.UserID,
		ChannelID:   desc.ChannelID,
		DisplayName: displayName,
		Role:        desc.Role,
		SessionID:   desc.SessionID,
	})

	c.sendEvent(newSessionReady(desc.ChannelID))

	if payload, err := newParticipantJoined(p); err == nil {
		c.hub.BroadcastToChannel(desc.ChannelID, payload, c.userID)
	}

	c.hub.publishSessionEvent(eventSessionStarted, p, "")

	c.log.Info("realtime session started",
		zap.Uint("channel_id", desc.ChannelID),
		zap.String("session_id", desc.SessionID))
}

// handleParticipantUpdate merges a media-state change and fans it out to the
// whole channel, sender included.
func (c *Client) handleParticipantUpdate(data json.RawMessage) {
	channelID, _, ok := c.activeSession()
	if !ok {
		c.sendEvent(newSessionError(ErrCodeSessionRequired, "no active realtime session"))
		return
	}

	var d participantUpdateData
	if err := json.Unmarshal(data, &d); err != nil {
		c.log.Debug("dropping participant.update with bad payload", zap.Error(err))
		return
	}

	p, ok := c.hub.presence.UpdateMedia(channelID, c.userID, d.MediaState)
	if !ok {
		c.sendEvent(newSessionError(ErrCodeParticipantMissing, "participant not found in channel"))
		return
	}

	if payload, err := newParticipantUpdated(p); err == nil {
		c.hub.BroadcastToChannel(channelID, payload, 0)
	}

	c.hub.publishSessionEvent(eventParticipantUpdated, p, "")
}

// handleSignal relays WebRTC traffic to its target.
func (c *Client) handleSignal(msgType MessageType, data json.RawMessage) {
	channelID, sessionID, ok := c.activeSession()
	if !ok {
		c.sendEvent(newSessionError(ErrCodeSessionRequired, "no active realtime session"))
		return
	}

	// Relay failures are logged there; the sender gets no error frame.
	_ = c.hub.relay.Forward(SignalContext{
		FromUserID: c.userID,
		ChannelID:  channelID,
		SessionID:  sessionID,
	}, msgType, data)
}

// endSession runs the leave path once: directory removal, participant.left
// broadcast, lifecycle event. Safe to call on every termination path.
func (c *Client) endSession(reason string) {
	c.mu.Lock()
	if !c.sess.active {
		c.mu.Unlock()
		return
	}
	sess := c.sess
	c.sess = sessionState{}
	c.mu.Unlock()

	// Removal is guarded by session ID so a stale connection cannot evict a
	// newer authentication for the same pair.
	removed, ok := c.hub.presence.Remove(sess.channelID, c.userID, sess.sessionID)
	if !ok {
		return
	}

	if payload, err := newParticipantLeft(removed.UserID, removed.ChannelID, reason); err == nil {
		c.hub.BroadcastToChannel(removed.ChannelID, payload, c.userID)
	}

	c.hub.publishSessionEvent(eventSessionEnded, removed, reason)

	c.log.Info("realtime session ended",
		zap.Uint("channel_id", removed.ChannelID),
		zap.String("session_id", removed.SessionID),
		zap.String("reason", reason))
}
