package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full application configuration, read once at startup.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	Realtime Realtime
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
}

// Postgres configures the relational stores. Empty DSN means the in-memory
// stores are used instead.
type Postgres struct {
	DSN string
}

// Redis configures the presence backend. Empty URL means in-memory presence.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the optional event journal. No brokers disables it.
type Kafka struct {
	Brokers []string
	Topic   string
}

// Realtime configures the websocket event layer.
type Realtime struct {
	// SendBuffer is the per-connection outbound frame buffer. A full buffer
	// drops the frame rather than blocking the hub.
	SendBuffer int
}

// FromEnv builds the config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:          envOr("STOREFRONT_ADDR", ":8080"),
			JWTSigningKey: envOr("STOREFRONT_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		},
		Postgres: Postgres{
			DSN: os.Getenv("STOREFRONT_POSTGRES_DSN"),
		},
		Redis: Redis{
			URL:          os.Getenv("STOREFRONT_REDIS_URL"),
			PoolSize:     envInt("STOREFRONT_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("STOREFRONT_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Brokers: splitNonEmpty(os.Getenv("STOREFRONT_KAFKA_BROKERS")),
			Topic:   envOr("STOREFRONT_KAFKA_TOPIC", "storefront.events"),
		},
		Realtime: Realtime{
			SendBuffer: envInt("STOREFRONT_WS_SEND_BUFFER", 64),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitNonEmpty(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
