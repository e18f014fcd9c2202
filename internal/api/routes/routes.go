package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "signaling-service/docs"
	"signaling-service/internal/api/handlers"
	"signaling-service/internal/api/middleware"
	"signaling-service/internal/config"
	"signaling-service/internal/ice"
	"signaling-service/internal/services"
	"signaling-service/internal/session"
	"signaling-service/internal/websocket"
)

type Router struct {
	engine          *gin.Engine
	wsHandler       *handlers.WSHandler
	realtimeHandler *handlers.RealtimeHandler
	eventsHandler   *handlers.EventsHandler
	healthHandler   *handlers.HealthHandler
	rateLimitMW     *middleware.RateLimitMiddleware
	authMW          *middleware.AuthMiddleware
	rateLimiting    bool
}

func NewRouter(
	cfg *config.Config,
	hub *websocket.Hub,
	tokens *session.Manager,
	iceCatalog *ice.Catalog,
	redisService *services.RedisService,
	kafkaStatus string,
	log *zap.Logger,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	// Add middlewares
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	engine.Use(middleware.RequestLogger(log))

	// The membership gate only applies when Redis is wired and the deployment
	// asks for it; everything else keeps working without Redis.
	var membershipGate *services.RedisService
	if redisService != nil && cfg.Redis.RequireMembership {
		membershipGate = redisService
	}

	return &Router{
		engine:          engine,
		wsHandler:       handlers.NewWSHandler(hub, cfg.WebSocket.ReadBufferSize, cfg.WebSocket.WriteBufferSize, log),
		realtimeHandler: handlers.NewRealtimeHandler(tokens, hub, iceCatalog, membershipGate, log),
		eventsHandler:   handlers.NewEventsHandler(hub, log),
		healthHandler:   handlers.NewHealthHandler(hub, tokens, redisService, kafkaStatus),
		rateLimitMW:     middleware.NewRateLimitMiddleware(redisService),
		authMW:          middleware.NewAuthMiddleware(cfg.Auth.JWTSecret),
		rateLimiting:    redisService != nil,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", r.healthHandler.Healthz)

	// Swagger documentation
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api/v1")

	// WebSocket endpoint authenticates from the query string because browsers
	// cannot set headers on the upgrade request. Handshake attempts are
	// IP-limited before authentication, connection opens per-user after it.
	var wsRoutes []gin.HandlerFunc
	if r.rateLimiting {
		wsRoutes = append(wsRoutes, r.rateLimitMW.RateLimitIP(30, time.Minute))
	}
	wsRoutes = append(wsRoutes, r.authMW.RequireAuthFromQuery())
	if r.rateLimiting {
		wsRoutes = append(wsRoutes, r.rateLimitMW.WebSocketRateLimit(10, time.Minute))
	}
	wsRoutes = append(wsRoutes, r.wsHandler.HandleWebSocket)
	api.GET("/ws", wsRoutes...)

	// Authenticated routes
	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	if r.rateLimiting {
		auth.Use(r.rateLimitMW.RateLimit(120, time.Minute))
	}
	{
		r.realtimeHandler.RegisterRoutes(auth)
		r.eventsHandler.RegisterRoutes(auth)
		auth.GET("/stats", r.healthHandler.Stats)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
