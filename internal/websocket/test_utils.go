package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"signaling-service/internal/events"
	"signaling-service/internal/presence"
	"signaling-service/internal/session"
)

var ErrClosedConnection = errors.New("use of closed network connection")

// mockConn implements Conn for tests. Inbound frames are queued on a channel;
// outbound frames are recorded. Close unblocks any pending ReadMessage.
type mockConn struct {
	inbound chan []byte
	done    chan struct{}

	mu        sync.Mutex
	written   [][]byte
	pings     int
	closed    bool
	closeOnce sync.Once
}

func newMockConn() *mockConn {
	return &mockConn{
		inbound: make(chan []byte, 32),
		done:    make(chan struct{}),
	}
}

func (m *mockConn) ReadMessage() (int, []byte, error) {
	select {
	case frame := <-m.inbound:
		return websocket.TextMessage, frame, nil
	case <-m.done:
		return 0, nil, ErrClosedConnection
	}
}

func (m *mockConn) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosedConnection
	}
	switch messageType {
	case websocket.PingMessage:
		m.pings++
	case websocket.TextMessage:
		buf := make([]byte, len(data))
		copy(buf, data)
		m.written = append(m.written, buf)
	}
	return nil
}

func (m *mockConn) SetReadLimit(int64) {}

func (m *mockConn) SetReadDeadline(time.Time) error { return nil }

func (m *mockConn) SetWriteDeadline(time.Time) error { return nil }

func (m *mockConn) SetPongHandler(func(string) error) {}

func (m *mockConn) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()
		close(m.done)
	})
	return nil
}

func (m *mockConn) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockConn) writtenFrames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.written))
	copy(out, m.written)
	return out
}

// pushFrame queues an inbound frame as the remote peer would send it.
func (m *mockConn) pushFrame(t *testing.T, payload []byte) {
	t.Helper()
	select {
	case m.inbound <- payload:
	case <-time.After(time.Second):
		t.Fatal("mock connection inbound queue full")
	}
}

const testTokenSecret = "test-secret-0123456789abcdef"

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	log := zap.NewNop()
	tokens := session.NewManager(testTokenSecret, 2*time.Minute, 30*time.Second, log)
	dir := presence.NewDirectory()

	return NewHub(DefaultOptions(), tokens, dir, events.NoopSink{}, log)
}

// newTestClient builds a client over a mock connection and registers it
// synchronously, without running the hub loop.
func newTestClient(t *testing.T, h *Hub, userID uint, username string) (*Client, *mockConn) {
	t.Helper()

	conn := newMockConn()
	c := NewClient(h, conn, userID, username)
	h.registerClient(c)
	return c, conn
}

// authenticateTestClient issues a real token and replays the authenticate
// frame through the client, consuming the session.ready reply.
func authenticateTestClient(t *testing.T, h *Hub, c *Client, channelID uint) session.Grant {
	t.Helper()

	grant, err := h.tokens.Issue(c.userID, channelID, c.username, "member")
	require.NoError(t, err)

	c.handleEnvelope(marshalFrame(t, MessageTypeAuthenticate, map[string]any{
		"session_token": grant.Token,
		"channel_id":    channelID,
	}))

	env := drainEnvelope(t, c)
	require.Equal(t, MessageTypeSessionReady, env.Type)
	return grant
}

// drainFrame pops one queued outbound frame or fails the test.
func drainFrame(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case frame := <-c.send:
		return frame
	case <-time.After(time.Second):
		t.Fatal("expected an outbound frame, send queue is empty")
		return nil
	}
}

func drainEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(drainFrame(t, c), &env))
	return env
}

// requireNoFrame asserts the send queue stays empty.
func requireNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case frame := <-c.send:
		t.Fatalf("unexpected outbound frame: %s", frame)
	case <-time.After(50 * time.Millisecond):
	}
}

func marshalFrame(t *testing.T, msgType MessageType, data any) []byte {
	t.Helper()
	frame, err := json.Marshal(map[string]any{"type": msgType, "data": data})
	require.NoError(t, err)
	return frame
}
