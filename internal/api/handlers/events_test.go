package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishToChannelRejectsBadInput(t *testing.T) {
	engine, _, _ := newTestStack(t)

	// Unparseable channel ID.
	w := performRequest(t, engine, http.MethodPost, "/api/v1/events/channels/nope", PublishEventRequest{
		Type: "message.created",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing event type.
	w = performRequest(t, engine, http.MethodPost, "/api/v1/events/channels/5", map[string]any{
		"data": map[string]any{"text": "hi"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishToChannelWithoutRecipients(t *testing.T) {
	engine, _, _ := newTestStack(t)

	w := performRequest(t, engine, http.MethodPost, "/api/v1/events/channels/5", PublishEventRequest{
		Type: "message.created",
		Data: map[string]any{"text": "hi", "channel_id": 5},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp PublishEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Delivered)
}

func TestPublishBroadcastWithoutRecipients(t *testing.T) {
	engine, _, _ := newTestStack(t)

	w := performRequest(t, engine, http.MethodPost, "/api/v1/events/broadcast", PublishEventRequest{
		Type: "system.maintenance",
		Data: map[string]any{"message": "restarting soon"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp PublishEventResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Delivered)
}
