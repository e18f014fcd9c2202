package events

import "time"

// Lifecycle event types published to the main application.
const (
	TypeConnectionOpened   = "connection.opened"
	TypeConnectionClosed   = "connection.closed"
	TypeSessionStarted     = "session.started"
	TypeSessionEnded       = "session.ended"
	TypeParticipantUpdated = "participant.updated"
)

// Event describes one realtime lifecycle change. Data carries type-specific
// extras (leave reason, media state) without widening the struct.
type Event struct {
	Type      string         `json:"type"`
	ChannelID uint           `json:"channel_id,omitempty"`
	UserID    uint           `json:"user_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Sink receives lifecycle events. Publish must never block the caller; the
// hub and client teardown paths run on hot goroutines.
type Sink interface {
	Publish(ev Event)
	Close() error
}

// NoopSink is wired when kafka is disabled.
type NoopSink struct{}

func (NoopSink) Publish(Event) {}

func (NoopSink) Close() error { return nil }
