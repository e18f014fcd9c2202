package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"signaling-service/internal/api/middleware"
	"signaling-service/internal/config"
	"signaling-service/internal/events"
	"signaling-service/internal/ice"
	"signaling-service/internal/presence"
	"signaling-service/internal/session"
	"signaling-service/internal/websocket"
)

const (
	testUserID   = uint(7)
	testUsername = "alice"
)

// newTestStack wires the handlers against real hub, token, and presence
// instances, with a stub identity middleware in place of JWT parsing.
func newTestStack(t *testing.T) (*gin.Engine, *websocket.Hub, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := zap.NewNop()
	tokens := session.NewManager("handler-test-secret", 2*time.Minute, 30*time.Second, log)
	hub := websocket.NewHub(websocket.DefaultOptions(), tokens, presence.NewDirectory(), events.NoopSink{}, log)

	catalog, err := ice.NewCatalog(config.ICEConfig{
		STUNURLs: []string{"stun:stun.example.org:3478"},
	})
	require.NoError(t, err)

	engine := gin.New()
	api := engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, testUserID)
		c.Set(middleware.ContextUsername, testUsername)
		c.Next()
	})

	NewRealtimeHandler(tokens, hub, catalog, nil, log).RegisterRoutes(api)
	NewEventsHandler(hub, log).RegisterRoutes(api)

	health := NewHealthHandler(hub, tokens, nil, "")
	engine.GET("/healthz", health.Healthz)
	api.GET("/stats", health.Stats)

	return engine, hub, tokens
}

func performRequest(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestJoinSessionIssuesGrant(t *testing.T) {
	engine, _, tokens := newTestStack(t)

	w := performRequest(t, engine, http.MethodPost, "/api/v1/channels/5/session", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp JoinSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionToken)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, uint(5), resp.ChannelID)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
	assert.Empty(t, resp.Participants)
	require.Len(t, resp.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.example.org:3478"}, resp.ICEServers[0].URLs)

	// The token is real: it validates for the caller and channel.
	desc, err := tokens.Validate(resp.SessionToken, testUserID, 5)
	require.NoError(t, err)
	assert.Equal(t, testUsername, desc.DisplayName)
	assert.Equal(t, "member", desc.Role)
}

func TestJoinSessionHonorsDisplayNameAndRole(t *testing.T) {
	engine, _, tokens := newTestStack(t)

	w := performRequest(t, engine, http.MethodPost, "/api/v1/channels/5/session", JoinSessionRequest{
		DisplayName: "Alice W.",
		Role:        "moderator",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp JoinSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	desc, err := tokens.Validate(resp.SessionToken, testUserID, 5)
	require.NoError(t, err)
	assert.Equal(t, "Alice W.", desc.DisplayName)
	assert.Equal(t, "moderator", desc.Role)
}

func TestJoinSessionRejectsBadChannelID(t *testing.T) {
	engine, _, _ := newTestStack(t)

	for _, path := range []string{
		"/api/v1/channels/abc/session",
		"/api/v1/channels/0/session",
		"/api/v1/channels/-4/session",
	} {
		w := performRequest(t, engine, http.MethodPost, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "path %s", path)
	}
}

func TestJoinSessionReturnsCurrentRoster(t *testing.T) {
	engine, hub, _ := newTestStack(t)

	hub.Presence().Add(presence.Participant{
		UserID:      2,
		ChannelID:   5,
		DisplayName: "bob",
		SessionID:   "sess-b",
	})

	w := performRequest(t, engine, http.MethodPost, "/api/v1/channels/5/session", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp JoinSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Participants, 1)
	assert.Equal(t, uint(2), resp.Participants[0].UserID)
}

func TestLeaveSessionRevokesTokenAndRemovesParticipant(t *testing.T) {
	engine, hub, tokens := newTestStack(t)

	w := performRequest(t, engine, http.MethodPost, "/api/v1/channels/5/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var grant JoinSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grant))

	// Simulate the socket-side authenticate that put the caller on the roster.
	hub.Presence().Add(presence.Participant{
		UserID:    testUserID,
		ChannelID: 5,
		SessionID: grant.SessionID,
	})

	w = performRequest(t, engine, http.MethodDelete, "/api/v1/channels/5/session", LeaveSessionRequest{
		SessionToken: grant.SessionToken,
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, 0, hub.Presence().Count(5))
	_, err := tokens.Validate(grant.SessionToken, testUserID, 5)
	assert.Error(t, err)

	// Leaving again with the same token is not an error.
	w = performRequest(t, engine, http.MethodDelete, "/api/v1/channels/5/session", LeaveSessionRequest{
		SessionToken: grant.SessionToken,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLeaveSessionRejectsForeignToken(t *testing.T) {
	engine, _, tokens := newTestStack(t)

	foreign, err := tokens.Issue(99, 5, "mallory", "member")
	require.NoError(t, err)

	w := performRequest(t, engine, http.MethodDelete, "/api/v1/channels/5/session", LeaveSessionRequest{
		SessionToken: foreign.Token,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLeaveSessionRequiresToken(t *testing.T) {
	engine, _, _ := newTestStack(t)

	w := performRequest(t, engine, http.MethodDelete, "/api/v1/channels/5/session", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetParticipants(t *testing.T) {
	engine, hub, _ := newTestStack(t)

	for i := 1; i <= 3; i++ {
		hub.Presence().Add(presence.Participant{
			UserID:      uint(i),
			ChannelID:   5,
			DisplayName: fmt.Sprintf("user-%d", i),
			SessionID:   fmt.Sprintf("sess-%d", i),
		})
	}

	w := performRequest(t, engine, http.MethodGet, "/api/v1/channels/5/participants", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ParticipantsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint(5), resp.ChannelID)
	assert.Equal(t, 3, resp.Count)
	assert.Len(t, resp.Participants, 3)

	// Empty channels answer with an empty roster, not an error.
	w = performRequest(t, engine, http.MethodGet, "/api/v1/channels/9/participants", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}
