package websocket

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"signaling-service/internal/presence"
)

var (
	ErrSignalMalformed    = fmt.Errorf("signal payload is not a JSON object")
	ErrSignalNoTarget     = fmt.Errorf("signal payload has no target_user_id")
	ErrTargetNotInChannel = fmt.Errorf("target user has no session in this channel")
)

// TargetSender delivers a frame to every connection a user has open.
type TargetSender interface {
	SendToUser(userID uint, payload []byte) int
}

// RosterLookup answers whether a user holds a session in a channel.
type RosterLookup interface {
	Get(channelID, userID uint) (presence.Participant, bool)
}

// SignalContext identifies the authenticated sender of a signaling frame. The
// relay stamps these values into the payload so receivers never trust
// client-supplied routing fields.
type SignalContext struct {
	FromUserID uint
	ChannelID  uint
	SessionID  string
}

// Relay forwards WebRTC signaling frames between participants of the same
// channel. Payloads stay opaque: only the routing fields are read and the
// sender identity fields are overwritten.
type Relay struct {
	sender  TargetSender
	roster  RosterLookup
	metrics *Metrics
	log     *zap.Logger
}

func NewRelay(sender TargetSender, roster RosterLookup, metrics *Metrics, log *zap.Logger) *Relay {
	return &Relay{
		sender:  sender,
		roster:  roster,
		metrics: metrics,
		log:     log.Named("relay"),
	}
}

// Forward routes one signaling frame to its target. Failures are counted and
// logged; the sender receives nothing either way.
func (r *Relay) Forward(from SignalContext, msgType MessageType, data json.RawMessage) error {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil || payload == nil {
		r.metrics.SignalDropped()
		r.log.Debug("dropping malformed signal",
			zap.String("type", msgType.String()),
			zap.Uint("from_user_id", from.FromUserID))
		return ErrSignalMalformed
	}

	targetID := extractUserID(payload["target_user_id"])
	if targetID == 0 {
		r.metrics.SignalDropped()
		r.log.Debug("dropping signal without target",
			zap.String("type", msgType.String()),
			zap.Uint("from_user_id", from.FromUserID))
		return ErrSignalNoTarget
	}

	if _, ok := r.roster.Get(from.ChannelID, targetID); !ok {
		r.metrics.SignalDropped()
		r.log.Debug("dropping signal for absent target",
			zap.String("type", msgType.String()),
			zap.Uint("from_user_id", from.FromUserID),
			zap.Uint("target_user_id", targetID),
			zap.Uint("channel_id", from.ChannelID))
		return ErrTargetNotInChannel
	}

	// Stamp the authenticated sender identity over whatever the client sent.
	payload["from_user_id"] = from.FromUserID
	payload["channel_id"] = from.ChannelID
	payload["session_id"] = from.SessionID

	frame, err := MarshalEvent(msgType, payload)
	if err != nil {
		r.metrics.SignalDropped()
		r.log.Error("marshal relayed signal failed", zap.Error(err))
		return err
	}

	if delivered := r.sender.SendToUser(targetID, frame); delivered == 0 {
		r.metrics.SignalDropped()
		r.log.Debug("signal target has no live connection",
			zap.Uint("target_user_id", targetID),
			zap.Uint("channel_id", from.ChannelID))
		return nil
	}

	r.metrics.SignalRelayed()
	return nil
}

// extractUserID reads a numeric user ID out of a decoded JSON value.
func extractUserID(v any) uint {
	switch n := v.(type) {
	case float64:
		if n <= 0 {
			return 0
		}
		return uint(n)
	case json.Number:
		id, err := n.Int64()
		if err != nil || id <= 0 {
			return 0
		}
		return uint(id)
	default:
		return 0
	}
}
