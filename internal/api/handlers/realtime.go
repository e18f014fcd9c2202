package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"go.uber.org/zap"

	"signaling-service/internal/api/middleware"
	"signaling-service/internal/ice"
	"signaling-service/internal/presence"
	"signaling-service/internal/services"
	"signaling-service/internal/session"
	"signaling-service/internal/websocket"
	"signaling-service/pkg/response"
)

// JoinSessionRequest optionally overrides how the caller appears to other
// participants.
type JoinSessionRequest struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// JoinSessionResponse carries everything a client needs to attach to the
// channel's realtime session over the WebSocket.
type JoinSessionResponse struct {
	SessionToken string                 `json:"session_token"`
	SessionID    string                 `json:"session_id"`
	ExpiresAt    time.Time              `json:"expires_at"`
	ChannelID    uint                   `json:"channel_id"`
	Participants []presence.Participant `json:"participants"`
	ICEServers   []webrtc.ICEServer     `json:"ice_servers"`
}

type LeaveSessionRequest struct {
	SessionToken string `json:"session_token" binding:"required"`
}

type ParticipantsResponse struct {
	ChannelID    uint                   `json:"channel_id"`
	Participants []presence.Participant `json:"participants"`
	Count        int                    `json:"count"`
}

// RealtimeHandler issues session tokens and exposes channel rosters.
type RealtimeHandler struct {
	tokens       *session.Manager
	hub          *websocket.Hub
	iceCatalog   *ice.Catalog
	redisService *services.RedisService
	log          *zap.Logger
}

func NewRealtimeHandler(
	tokens *session.Manager,
	hub *websocket.Hub,
	iceCatalog *ice.Catalog,
	redisService *services.RedisService,
	log *zap.Logger,
) *RealtimeHandler {
	return &RealtimeHandler{
		tokens:       tokens,
		hub:          hub,
		iceCatalog:   iceCatalog,
		redisService: redisService,
		log:          log.Named("realtime"),
	}
}

// RegisterRoutes maps HTTP methods to handler functions
func (h *RealtimeHandler) RegisterRoutes(r *gin.RouterGroup) {
	channels := r.Group("/channels")
	{
		channels.POST("/:id/session", h.JoinSession)
		channels.DELETE("/:id/session", h.LeaveSession)
		channels.GET("/:id/participants", h.GetParticipants)
	}
}

// JoinSession godoc
// @Summary Join a channel's realtime session
// @Description Issue a short-lived session token for voice/video in the channel, together with the current roster and ICE servers
// @Tags realtime
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Param request body JoinSessionRequest false "Optional display name and role"
// @Success 200 {object} JoinSessionResponse "Session token issued"
// @Failure 400 {object} map[string]interface{} "Bad request - invalid channel ID"
// @Failure 401 {object} map[string]interface{} "Unauthorized - invalid or missing token"
// @Failure 403 {object} map[string]interface{} "Forbidden - caller is not a member of the channel"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /channels/{id}/session [post]
func (h *RealtimeHandler) JoinSession(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	username := c.GetString(middleware.ContextUsername)

	channelID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || channelID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid channel ID")
		return
	}

	var req JoinSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, err.Error())
			return
		}
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = username
	}
	role := req.Role
	if role == "" {
		role = "member"
	}

	if h.redisService != nil {
		member, err := h.redisService.IsChannelMember(c.Request.Context(), uint(channelID), userID)
		if err != nil {
			h.log.Error("channel membership lookup failed",
				zap.Uint("channel_id", uint(channelID)),
				zap.Uint("user_id", userID),
				zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.CodeInternal, "")
			return
		}
		if !member {
			response.Error(c, http.StatusForbidden, response.CodeForbidden, "")
			return
		}
	}

	grant, err := h.tokens.Issue(userID, uint(channelID), displayName, role)
	if err != nil {
		h.log.Error("session token issue failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "")
		return
	}

	iceServers := []webrtc.ICEServer{}
	if h.iceCatalog != nil {
		iceServers, err = h.iceCatalog.ServersFor(grant.SessionID)
		if err != nil {
			h.log.Warn("ice server catalog failed, continuing without", zap.Error(err))
			iceServers = []webrtc.ICEServer{}
		}
	}

	h.log.Info("session token issued",
		zap.Uint("channel_id", uint(channelID)),
		zap.Uint("user_id", userID),
		zap.String("session_id", grant.SessionID))

	response.OK(c, JoinSessionResponse{
		SessionToken: grant.Token,
		SessionID:    grant.SessionID,
		ExpiresAt:    grant.ExpiresAt,
		ChannelID:    uint(channelID),
		Participants: h.hub.Presence().Snapshot(uint(channelID)),
		ICEServers:   iceServers,
	})
}

// LeaveSession godoc
// @Summary Leave a channel's realtime session
// @Description Revoke the session token and remove the caller from the channel roster
// @Tags realtime
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Param request body LeaveSessionRequest true "Session token to revoke"
// @Success 204 "Session ended"
// @Failure 400 {object} map[string]interface{} "Bad request - missing session token"
// @Failure 401 {object} map[string]interface{} "Unauthorized - invalid or missing token"
// @Failure 403 {object} map[string]interface{} "Forbidden - token belongs to another user or channel"
// @Router /channels/{id}/session [delete]
func (h *RealtimeHandler) LeaveSession(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	channelID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || channelID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid channel ID")
		return
	}

	var req LeaveSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, "session_token is required")
		return
	}

	desc, ok := h.tokens.Revoke(req.SessionToken)
	if !ok {
		// Already revoked or expired: leaving twice is not an error.
		response.NoContent(c)
		return
	}

	if desc.UserID != userID || desc.ChannelID != uint(channelID) {
		response.Error(c, http.StatusForbidden, response.CodeForbidden, "session token does not match caller or channel")
		return
	}

	h.hub.EndSessionFor(desc.ChannelID, desc.UserID, desc.SessionID, "left")
	response.NoContent(c)
}

// GetParticipants godoc
// @Summary List a channel's realtime participants
// @Description Snapshot of everyone currently in the channel's voice/video session
// @Tags realtime
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Success 200 {object} ParticipantsResponse "Current roster"
// @Failure 400 {object} map[string]interface{} "Bad request - invalid channel ID"
// @Failure 401 {object} map[string]interface{} "Unauthorized - invalid or missing token"
// @Router /channels/{id}/participants [get]
func (h *RealtimeHandler) GetParticipants(c *gin.Context) {
	channelID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || channelID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid channel ID")
		return
	}

	participants := h.hub.Presence().Snapshot(uint(channelID))
	response.OK(c, ParticipantsResponse{
		ChannelID:    uint(channelID),
		Participants: participants,
		Count:        len(participants),
	})
}
