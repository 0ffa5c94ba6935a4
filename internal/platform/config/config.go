package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything cmd/server needs to wire the process.
type Config struct {
	Addr          string
	JWTSigningKey string

	// PostgresDSN selects the postgres stores when set; empty keeps the
	// in-memory stores, which is the default for local development.
	PostgresDSN string

	// RedisURL enables the grant cache in front of the access store.
	RedisURL string

	// KafkaBrokers enables the notification relay when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	GrantCacheTTL time.Duration
}

// defaultGrantCacheTTL bounds staleness of cached authorization lookups.
// Mutations invalidate the cached cell, so the TTL only matters for cells
// populated by reads.
const defaultGrantCacheTTL = 5 * time.Minute

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("MEDLEDGER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("MEDLEDGER_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	topic := os.Getenv("MEDLEDGER_KAFKA_TOPIC")
	if topic == "" {
		topic = "medledger.notifications"
	}

	var brokers []string
	if raw := os.Getenv("MEDLEDGER_KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Config{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		PostgresDSN:   os.Getenv("MEDLEDGER_POSTGRES_DSN"),
		RedisURL:      os.Getenv("MEDLEDGER_REDIS_URL"),
		KafkaBrokers:  brokers,
		KafkaTopic:    topic,
		GrantCacheTTL: defaultGrantCacheTTL,
	}
}
