package main

// @title           Signaling Service API
// @version         1.0
// @description     Realtime voice/video signaling and channel event delivery
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"signaling-service/internal/api/routes"
	"signaling-service/internal/config"
	"signaling-service/internal/events"
	"signaling-service/internal/ice"
	"signaling-service/internal/presence"
	"signaling-service/internal/services"
	"signaling-service/internal/session"
	"signaling-service/internal/websocket"
)

func main() {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatal("failed to build logger: ", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting signaling service",
		zap.String("environment", cfg.Log.Environment),
		zap.String("port", cfg.Server.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs rate limiting and the channel membership gate. Explicitly
	// enabling it makes it a hard dependency.
	var redisService *services.RedisService
	if cfg.Redis.Enabled {
		redisService, err = services.NewRedisService(cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisService.Close()
	} else if cfg.Redis.RequireMembership {
		logger.Warn("membership gate requested but redis is disabled, gate inactive")
	}

	// The Kafka sink is best-effort: when the brokers are unreachable the
	// service still signals, it just stops reporting lifecycle events.
	var sink events.Sink = events.NoopSink{}
	var kafkaStatus string
	if cfg.Kafka.Enabled {
		producer, err := events.NewProducer(cfg.Kafka.Brokers)
		if err != nil {
			logger.Error("kafka unreachable, lifecycle events disabled", zap.Error(err))
			kafkaStatus = "degraded"
		} else {
			sink = events.NewKafkaSink(producer, cfg.Kafka.Topic, logger)
			kafkaStatus = "ok"
		}
	}

	tokens := session.NewManager(cfg.Session.Secret, cfg.Session.TokenTTL, cfg.Session.SweepInterval, logger)
	go tokens.Run(ctx)

	iceCatalog, err := ice.NewCatalog(cfg.ICE)
	if err != nil {
		logger.Fatal("invalid ice configuration", zap.Error(err))
	}

	hub := websocket.NewHub(websocket.Options{
		WriteTimeout:    cfg.WebSocket.WriteTimeout,
		PongTimeout:     cfg.WebSocket.PongTimeout,
		PingInterval:    cfg.WebSocket.PingInterval,
		MaxMessageBytes: cfg.WebSocket.MaxMessageBytes,
		SendQueueSize:   cfg.WebSocket.SendQueueSize,
	}, tokens, presence.NewDirectory(), sink, logger)
	go hub.Run(ctx)

	router := routes.NewRouter(cfg, hub, tokens, iceCatalog, redisService, kafkaStatus, logger)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop accepting HTTP first, then drop the live connections, then flush
	// the event sink so the final session.ended events still get out.
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced server shutdown", zap.Error(err))
	}
	hub.Stop()
	cancel()
	if err := sink.Close(); err != nil {
		logger.Error("event sink close failed", zap.Error(err))
	}

	logger.Info("stopped")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zcfg.Build()
}
