package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"signaling-service/internal/websocket"
	"signaling-service/pkg/response"
)

// PublishEventRequest is the frame the main application wants fanned out.
type PublishEventRequest struct {
	Type string         `json:"type" binding:"required"`
	Data map[string]any `json:"data"`
}

type PublishEventResponse struct {
	Delivered int `json:"delivered"`
}

// EventsHandler lets the main application push chat events into live
// connections without speaking the WebSocket protocol itself.
type EventsHandler struct {
	hub *websocket.Hub
	log *zap.Logger
}

func NewEventsHandler(hub *websocket.Hub, log *zap.Logger) *EventsHandler {
	return &EventsHandler{
		hub: hub,
		log: log.Named("events"),
	}
}

// RegisterRoutes maps HTTP methods to handler functions
func (h *EventsHandler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/events")
	{
		events.POST("/channels/:id", h.PublishToChannel)
		events.POST("/broadcast", h.PublishBroadcast)
	}
}

// PublishToChannel godoc
// @Summary Push an event to a channel
// @Description Deliver an event frame to every connection bound to the channel
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Channel ID"
// @Param request body PublishEventRequest true "Event type and payload"
// @Success 200 {object} PublishEventResponse "Number of connections reached"
// @Failure 400 {object} map[string]interface{} "Bad request - invalid channel ID or event"
// @Failure 401 {object} map[string]interface{} "Unauthorized - invalid or missing token"
// @Router /events/channels/{id} [post]
func (h *EventsHandler) PublishToChannel(c *gin.Context) {
	channelID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || channelID == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, "invalid channel ID")
		return
	}

	frame, ok := h.bindFrame(c)
	if !ok {
		return
	}

	delivered := h.hub.BroadcastToChannel(uint(channelID), frame, 0)
	response.OK(c, PublishEventResponse{Delivered: delivered})
}

// PublishBroadcast godoc
// @Summary Push an event to every connection
// @Description Deliver an event frame to all live connections regardless of channel
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PublishEventRequest true "Event type and payload"
// @Success 200 {object} PublishEventResponse "Number of connections reached"
// @Failure 400 {object} map[string]interface{} "Bad request - invalid event"
// @Failure 401 {object} map[string]interface{} "Unauthorized - invalid or missing token"
// @Router /events/broadcast [post]
func (h *EventsHandler) PublishBroadcast(c *gin.Context) {
	frame, ok := h.bindFrame(c)
	if !ok {
		return
	}

	delivered := h.hub.Broadcast(frame)
	response.OK(c, PublishEventResponse{Delivered: delivered})
}

func (h *EventsHandler) bindFrame(c *gin.Context) ([]byte, bool) {
	var req PublishEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidRequest, err.Error())
		return nil, false
	}

	frame, err := websocket.MarshalEvent(websocket.MessageType(req.Type), req.Data)
	if err != nil {
		h.log.Error("marshal event frame failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "")
		return nil, false
	}
	return frame, true
}
