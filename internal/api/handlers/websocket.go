package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"signaling-service/internal/api/middleware"
	ws "signaling-service/internal/websocket"
)

// WSHandler upgrades authenticated requests and hands the connection to the
// hub.
type WSHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSHandler(hub *ws.Hub, readBufferSize, writeBufferSize int, log *zap.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			// Cross-origin policy is enforced by the CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.Named("ws"),
	}
}

// RegisterRoutes maps HTTP methods to handler functions
func (h *WSHandler) RegisterRoutes(r *gin.RouterGroup) {
	wsRoutes := r.Group("/ws")
	{
		wsRoutes.GET("", h.HandleWebSocket)
	}
}

// HandleWebSocket godoc
// @Summary WebSocket connection
// @Description Establish the realtime WebSocket connection for signaling and channel events
// @Tags websocket
// @Accept json
// @Produce json
// @Param token query string true "API access token"
// @Success 101 "Switching Protocols - WebSocket connection established"
// @Failure 401 {object} map[string]interface{} "Unauthorized - invalid or missing token"
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	username := c.GetString(middleware.ContextUsername)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		h.log.Warn("websocket upgrade failed",
			zap.Uint("user_id", userID),
			zap.Error(err))
		return
	}

	client := ws.NewClient(h.hub, conn, userID, username)
	h.hub.Register(client)
	client.Start()

	h.log.Info("websocket connection established",
		zap.Uint("user_id", userID),
		zap.String("connection_id", client.ID()))
}
