package websocket

import (
	"encoding/json"

	"signaling-service/internal/presence"
)

// MessageType identifies a frame on the wire. Every frame is an object with
// a string "type" and an object "data".
type MessageType string

const (
	// Client to server.
	MessageTypeChannelSelect     MessageType = "channel.select"
	MessageTypeChannelLeave      MessageType = "channel.leave"
	MessageTypeAuthenticate      MessageType = "session.authenticate"
	MessageTypeSessionLeave      MessageType = "session.leave"
	MessageTypeEndSession        MessageType = "webrtc.end_session"
	MessageTypeParticipantUpdate MessageType = "participant.update"
	MessageTypeOffer             MessageType = "webrtc.offer"
	MessageTypeAnswer            MessageType = "webrtc.answer"
	MessageTypeICECandidate      MessageType = "webrtc.ice_candidate"

	// Server to client.
	MessageTypeSessionReady       MessageType = "session.ready"
	MessageTypeSessionError       MessageType = "session.error"
	MessageTypeParticipantJoined  MessageType = "participant.joined"
	MessageTypeParticipantLeft    MessageType = "participant.left"
	MessageTypeParticipantUpdated MessageType = "participant.updated"

	// Produced by the REST layer and fanned out through the same primitives.
	MessageTypeMessageCreated MessageType = "message.created"
	MessageTypeChannelTyping  MessageType = "channel.typing"
	MessageTypeChannelCreated MessageType = "channel.created"
)

func (mt MessageType) String() string {
	return string(mt)
}

// IsSignal reports whether the type is WebRTC signaling that gets relayed
// rather than handled.
func (mt MessageType) IsSignal() bool {
	switch mt {
	case MessageTypeOffer, MessageTypeAnswer, MessageTypeICECandidate:
		return true
	default:
		return false
	}
}

// Error codes carried inside session.error frames.
const (
	ErrCodeSessionInvalid     = "session.invalid"
	ErrCodeSessionRequired    = "session.required"
	ErrCodeParticipantMissing = "participant.missing"
)

// Reasons carried inside participant.left frames.
const (
	LeaveReasonLeft       = "left"
	LeaveReasonDisconnect = "disconnect"
)

// Envelope is the wire frame. Data stays raw until the type-specific handler
// decodes it; signaling payloads are never decoded beyond their routing
// fields.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound payloads.

type channelSelectData struct {
	ChannelID uint `json:"channel_id"`
}

type authenticateData struct {
	SessionToken string `json:"session_token"`
	ChannelID    uint   `json:"channel_id"`
}

type participantUpdateData struct {
	MediaState presence.MediaState `json:"media_state"`
}

// Outbound payloads.

type sessionReadyData struct {
	ChannelID uint `json:"channel_id"`
}

type sessionErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type participantJoinedData struct {
	Participant presence.Participant `json:"participant"`
}

type participantLeftData struct {
	UserID    uint   `json:"user_id"`
	ChannelID uint   `json:"channel_id"`
	Reason    string `json:"reason"`
}

type participantUpdatedData struct {
	UserID     uint                `json:"user_id"`
	ChannelID  uint                `json:"channel_id"`
	MediaState presence.MediaState `json:"media_state"`
	SessionID  string              `json:"session_id"`
}

// MarshalEvent builds a complete frame for the given type and payload.
func MarshalEvent(msgType MessageType, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msgType, Data: raw})
}

func newSessionReady(channelID uint) ([]byte, error) {
	return MarshalEvent(MessageTypeSessionReady, sessionReadyData{ChannelID: channelID})
}

func newSessionError(code, message string) ([]byte, error) {
	return MarshalEvent(MessageTypeSessionError, sessionErrorData{Code: code, Message: message})
}

func newParticipantJoined(p presence.Participant) ([]byte, error) {
	return MarshalEvent(MessageTypeParticipantJoined, participantJoinedData{Participant: p})
}

func newParticipantLeft(userID, channelID uint, reason string) ([]byte, error) {
	return MarshalEvent(MessageTypeParticipantLeft, participantLeftData{
		UserID:    userID,
		ChannelID: channelID,
		Reason:    reason,
	})
}

func newParticipantUpdated(p presence.Participant) ([]byte, error) {
	return MarshalEvent(MessageTypeParticipantUpdated, participantUpdatedData{
		UserID:     p.UserID,
		ChannelID:  p.ChannelID,
		MediaState: p.MediaState,
		SessionID:  p.SessionID,
	})
}
