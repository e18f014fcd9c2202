package presence

import "time"

// MediaState mirrors the mute/camera/screen toggles a participant reports.
// Values are "on" or "off"; an empty field in an update means "unchanged".
type MediaState struct {
	Mic    string `json:"mic"`
	Camera string `json:"camera"`
	Screen string `json:"screen"`
}

const (
	MediaOn  = "on"
	MediaOff = "off"
)

// DefaultMediaState is the state a participant joins with.
func DefaultMediaState() MediaState {
	return MediaState{Mic: MediaOff, Camera: MediaOff, Screen: MediaOff}
}

// merge overlays the non-empty fields of delta onto s.
func (s MediaState) merge(delta MediaState) MediaState {
	if delta.Mic != "" {
		s.Mic = delta.Mic
	}
	if delta.Camera != "" {
		s.Camera = delta.Camera
	}
	if delta.Screen != "" {
		s.Screen = delta.Screen
	}
	return s
}

// Participant is one user's membership in one channel's realtime session.
type Participant struct {
	UserID      uint       `json:"user_id"`
	ChannelID   uint       `json:"channel_id"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	SessionID   string     `json:"session_id"`
	MediaState  MediaState `json:"media_state"`
	JoinedAt    time.Time  `json:"joined_at"`
}
