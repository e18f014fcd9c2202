package config

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Session   SessionConfig
	WebSocket WebSocketConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	ICE       ICEConfig
	Log       LogConfig
}

var (
	ConfigInstance *Config
	once           sync.Once
)

type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// AuthConfig covers the HTTP-edge identity check. Identity is minted by the
// main application; this service only verifies the bearer token signature.
type AuthConfig struct {
	JWTSecret string
}

// SessionConfig covers realtime session tokens issued by this service.
type SessionConfig struct {
	Secret        string
	TokenTTL      time.Duration
	SweepInterval time.Duration
}

type WebSocketConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	MaxMessageBytes int64
	SendQueueSize   int
	WriteTimeout    time.Duration
	PongTimeout     time.Duration
	PingInterval    time.Duration
}

type RedisConfig struct {
	Enabled           bool
	URI               string
	MaxRetries        int
	DialTimeout       time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	PoolSize          int
	MinIdleConns      int
	RequireMembership bool
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type ICEConfig struct {
	STUNURLs       []string
	TURNURLs       []string
	TURNUsername   string
	TURNCredential string
	TURNRESTSecret string
	TURNRESTTTL    time.Duration
	TURNRESTPrefix string
}

type LogConfig struct {
	Environment string
	Level       string
}

func LoadConfig() (*Config, error) {
	once.Do(func() {
		viper.SetDefault("SIGNAL_HOST", "")
		viper.SetDefault("SIGNAL_PORT", "8080")
		viper.SetDefault("SIGNAL_READ_TIMEOUT", 30*time.Second)
		viper.SetDefault("SIGNAL_WRITE_TIMEOUT", 30*time.Second)
		viper.SetDefault("SIGNAL_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("SIGNAL_SHUTDOWN_TIMEOUT", 10*time.Second)
		viper.SetDefault("SIGNAL_ALLOWED_ORIGINS", "http://localhost:3000")
		viper.SetDefault("SIGNAL_JWT_SECRET", "secret")
		viper.SetDefault("SIGNAL_SESSION_SECRET", "session-secret")
		viper.SetDefault("SIGNAL_SESSION_TTL", 2*time.Minute)
		viper.SetDefault("SIGNAL_SESSION_SWEEP_INTERVAL", 30*time.Second)
		viper.SetDefault("SIGNAL_WS_READ_BUFFER", 1024)
		viper.SetDefault("SIGNAL_WS_WRITE_BUFFER", 1024)
		viper.SetDefault("SIGNAL_WS_MAX_MESSAGE_BYTES", 65536)
		viper.SetDefault("SIGNAL_WS_SEND_QUEUE_SIZE", 256)
		viper.SetDefault("SIGNAL_WS_WRITE_TIMEOUT", 10*time.Second)
		viper.SetDefault("SIGNAL_WS_PONG_TIMEOUT", 60*time.Second)
		viper.SetDefault("SIGNAL_WS_PING_INTERVAL", 25*time.Second)
		viper.SetDefault("REDIS_ENABLED", false)
		viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
		viper.SetDefault("REDIS_MAX_RETRIES", 3)
		viper.SetDefault("REDIS_POOL_SIZE", 100)
		viper.SetDefault("REDIS_MIN_IDLE_CONNS", 10)
		viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
		viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
		viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)
		viper.SetDefault("SIGNAL_REQUIRE_MEMBERSHIP", false)
		viper.SetDefault("KAFKA_ENABLED", false)
		viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
		viper.SetDefault("KAFKA_TOPIC", "signaling.events")
		viper.SetDefault("SIGNAL_STUN_URLS", "stun:stun.l.google.com:19302")
		viper.SetDefault("SIGNAL_TURN_URLS", "")
		viper.SetDefault("SIGNAL_TURN_USERNAME", "")
		viper.SetDefault("SIGNAL_TURN_CREDENTIAL", "")
		viper.SetDefault("SIGNAL_TURN_REST_SECRET", "")
		viper.SetDefault("SIGNAL_TURN_REST_TTL", 10*time.Minute)
		viper.SetDefault("SIGNAL_TURN_REST_PREFIX", "signal")
		viper.SetDefault("SIGNAL_ENV", "development")
		viper.SetDefault("SIGNAL_LOG_LEVEL", "info")
		viper.AutomaticEnv()

		ConfigInstance = &Config{
			Server: ServerConfig{
				Host:            viper.GetString("SIGNAL_HOST"),
				Port:            viper.GetString("SIGNAL_PORT"),
				ReadTimeout:     viper.GetDuration("SIGNAL_READ_TIMEOUT"),
				WriteTimeout:    viper.GetDuration("SIGNAL_WRITE_TIMEOUT"),
				IdleTimeout:     viper.GetDuration("SIGNAL_IDLE_TIMEOUT"),
				ShutdownTimeout: viper.GetDuration("SIGNAL_SHUTDOWN_TIMEOUT"),
				AllowedOrigins:  splitList(viper.GetString("SIGNAL_ALLOWED_ORIGINS")),
			},
			Auth: AuthConfig{
				JWTSecret: viper.GetString("SIGNAL_JWT_SECRET"),
			},
			Session: SessionConfig{
				Secret:        viper.GetString("SIGNAL_SESSION_SECRET"),
				TokenTTL:      viper.GetDuration("SIGNAL_SESSION_TTL"),
				SweepInterval: viper.GetDuration("SIGNAL_SESSION_SWEEP_INTERVAL"),
			},
			WebSocket: WebSocketConfig{
				ReadBufferSize:  viper.GetInt("SIGNAL_WS_READ_BUFFER"),
				WriteBufferSize: viper.GetInt("SIGNAL_WS_WRITE_BUFFER"),
				MaxMessageBytes: viper.GetInt64("SIGNAL_WS_MAX_MESSAGE_BYTES"),
				SendQueueSize:   viper.GetInt("SIGNAL_WS_SEND_QUEUE_SIZE"),
				WriteTimeout:    viper.GetDuration("SIGNAL_WS_WRITE_TIMEOUT"),
				PongTimeout:     viper.GetDuration("SIGNAL_WS_PONG_TIMEOUT"),
				PingInterval:    viper.GetDuration("SIGNAL_WS_PING_INTERVAL"),
			},
			Redis: RedisConfig{
				Enabled:           viper.GetBool("REDIS_ENABLED"),
				URI:               viper.GetString("REDIS_URL"),
				MaxRetries:        viper.GetInt("REDIS_MAX_RETRIES"),
				DialTimeout:       viper.GetDuration("REDIS_DIAL_TIMEOUT"),
				ReadTimeout:       viper.GetDuration("REDIS_READ_TIMEOUT"),
				WriteTimeout:      viper.GetDuration("REDIS_WRITE_TIMEOUT"),
				PoolSize:          viper.GetInt("REDIS_POOL_SIZE"),
				MinIdleConns:      viper.GetInt("REDIS_MIN_IDLE_CONNS"),
				RequireMembership: viper.GetBool("SIGNAL_REQUIRE_MEMBERSHIP"),
			},
			Kafka: KafkaConfig{
				Enabled: viper.GetBool("KAFKA_ENABLED"),
				Brokers: splitList(viper.GetString("KAFKA_BROKERS")),
				Topic:   viper.GetString("KAFKA_TOPIC"),
			},
			ICE: ICEConfig{
				STUNURLs:       splitList(viper.GetString("SIGNAL_STUN_URLS")),
				TURNURLs:       splitList(viper.GetString("SIGNAL_TURN_URLS")),
				TURNUsername:   viper.GetString("SIGNAL_TURN_USERNAME"),
				TURNCredential: viper.GetString("SIGNAL_TURN_CREDENTIAL"),
				TURNRESTSecret: viper.GetString("SIGNAL_TURN_REST_SECRET"),
				TURNRESTTTL:    viper.GetDuration("SIGNAL_TURN_REST_TTL"),
				TURNRESTPrefix: viper.GetString("SIGNAL_TURN_REST_PREFIX"),
			},
			Log: LogConfig{
				Environment: viper.GetString("SIGNAL_ENV"),
				Level:       viper.GetString("SIGNAL_LOG_LEVEL"),
			},
		}
	})

	return ConfigInstance, nil
}

// splitList parses comma-separated env values; AutomaticEnv does not split
// lists on its own.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
