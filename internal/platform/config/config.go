package config

import (
	"os"
	"strings"
)

// Server captures process-level configuration so main stays lean. All values
// come from the environment with development-friendly defaults.
type Server struct {
	Addr string

	// DocStoreBackend selects the remote document store: memory, redis, or
	// postgres.
	DocStoreBackend string
	RedisURL        string
	PostgresURL     string

	// KafkaBrokers empty means notifications run through the in-process
	// queue instead of a broker.
	KafkaBrokers []string
	NotifyTopic  string

	JWTSigningKey string

	// ApprovalsLinkBase prefixes the approvals link embedded in pending
	// transaction notifications.
	ApprovalsLinkBase string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:              getenv("FUNDLEDGER_ADDR", ":8080"),
		DocStoreBackend:   getenv("FUNDLEDGER_DOCSTORE", "memory"),
		RedisURL:          os.Getenv("FUNDLEDGER_REDIS_URL"),
		PostgresURL:       os.Getenv("FUNDLEDGER_POSTGRES_URL"),
		NotifyTopic:       getenv("FUNDLEDGER_NOTIFY_TOPIC", "fundledger.notifications"),
		ApprovalsLinkBase: getenv("FUNDLEDGER_APPROVALS_LINK_BASE", "http://localhost:8080"),
	}

	if brokers := os.Getenv("FUNDLEDGER_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cfg.JWTSigningKey = os.Getenv("FUNDLEDGER_JWT_SIGNING_KEY")
	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
