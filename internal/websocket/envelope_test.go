package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signaling-service/internal/presence"
)

func TestIsSignal(t *testing.T) {
	assert.True(t, MessageTypeOffer.IsSignal())
	assert.True(t, MessageTypeAnswer.IsSignal())
	assert.True(t, MessageTypeICECandidate.IsSignal())

	assert.False(t, MessageTypeAuthenticate.IsSignal())
	assert.False(t, MessageTypeSessionLeave.IsSignal())
	assert.False(t, MessageTypeParticipantUpdate.IsSignal())
}

func TestMarshalEventProducesDecodableFrame(t *testing.T) {
	p := presence.Participant{
		UserID:      3,
		ChannelID:   7,
		DisplayName: "carol",
		Role:        "member",
		SessionID:   "sess-c",
		MediaState:  presence.DefaultMediaState(),
	}

	frame, err := newParticipantJoined(p)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	assert.Equal(t, MessageTypeParticipantJoined, env.Type)

	var data participantJoinedData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, p.UserID, data.Participant.UserID)
	assert.Equal(t, p.SessionID, data.Participant.SessionID)
}

func TestSessionErrorFrameShape(t *testing.T) {
	frame, err := newSessionError(ErrCodeSessionRequired, "no active realtime session")
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	require.Equal(t, MessageTypeSessionError, env.Type)

	var data sessionErrorData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, ErrCodeSessionRequired, data.Code)
	assert.NotEmpty(t, data.Message)
}

func TestMetricsPeakAndActiveTracking(t *testing.T) {
	m := NewMetrics()

	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()

	snap := m.Snapshot()
	assert.Equal(t, 2, snap.ActiveConnections)
	assert.Equal(t, 3, snap.PeakConnections)
	assert.Equal(t, int64(3), snap.TotalConnections)

	m.SignalRelayed()
	m.SignalDropped()
	m.AuthFailure()
	m.ForcedEviction()

	snap = m.Snapshot()
	assert.Equal(t, int64(1), snap.SignalsRelayed)
	assert.Equal(t, int64(1), snap.SignalsDropped)
	assert.Equal(t, int64(1), snap.AuthFailures)
	assert.Equal(t, int64(1), snap.ForcedEvictions)
}
