package handlers

import (
	"github.com/gin-gonic/gin"

	"signaling-service/internal/services"
	"signaling-service/internal/session"
	"signaling-service/internal/websocket"
	"signaling-service/pkg/response"
)

// StatsResponse aggregates the live counters of every subsystem.
type StatsResponse struct {
	Connections  websocket.MetricsSnapshot `json:"connections"`
	Channels     int                       `json:"channels"`
	Participants int                       `json:"participants"`
	TokensLive   int                       `json:"tokens_live"`
	TokensUsed   int                       `json:"tokens_validated"`
}

type HealthHandler struct {
	hub          *websocket.Hub
	tokens       *session.Manager
	redisService *services.RedisService
	kafkaStatus  string
}

// kafkaStatus is decided once at startup ("ok" or "degraded"); empty means
// the event sink is not configured and the flag is omitted.
func NewHealthHandler(hub *websocket.Hub, tokens *session.Manager, redisService *services.RedisService, kafkaStatus string) *HealthHandler {
	return &HealthHandler{
		hub:          hub,
		tokens:       tokens,
		redisService: redisService,
		kafkaStatus:  kafkaStatus,
	}
}

// Healthz godoc
// @Summary Liveness probe
// @Description Report whether the service and its optional Redis and Kafka backends are reachable
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Service is healthy"
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c *gin.Context) {
	status := gin.H{
		"status":      "ok",
		"connections": h.hub.ConnectionCount(),
	}

	if h.redisService != nil {
		if err := h.redisService.Ping(c.Request.Context()); err != nil {
			status["redis"] = "unreachable"
		} else {
			status["redis"] = "ok"
		}
	}
	if h.kafkaStatus != "" {
		status["kafka"] = h.kafkaStatus
	}

	response.OK(c, status)
}

// Stats godoc
// @Summary Runtime statistics
// @Description Connection, session, and token counters for operations
// @Tags health
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StatsResponse "Current counters"
// @Router /stats [get]
func (h *HealthHandler) Stats(c *gin.Context) {
	channels, participants := h.hub.Presence().Totals()
	live, validated := h.tokens.Stats()

	response.OK(c, StatsResponse{
		Connections:  h.hub.Metrics().Snapshot(),
		Channels:     channels,
		Participants: participants,
		TokensLive:   live,
		TokensUsed:   validated,
	})
}
