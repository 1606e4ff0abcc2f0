package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	StorageDriver string
	MongoURI      string
	MongoDB       string

	KafkaBrokers     []string
	KafkaTopicPrefix string

	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       time.Duration

	ServiceFeePercent int
	CurrencyCode      string

	FixturesPath string
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load(log *slog.Logger) Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("could not load .env file", slog.Any("error", err))
	}

	cfg := Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		StorageDriver: getEnv("STORAGE_DRIVER", "memory"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "spacehub"),

		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "spacehub"),

		IdempotencyTTL:     parseDurationEnv(log, "IDEMPOTENCY_TTL", 24*time.Hour),
		OutboxPollInterval: parseDurationEnv(log, "OUTBOX_POLL_INTERVAL", 2*time.Second),
		RetryBackoff:       parseDurationEnv(log, "RETRY_BACKOFF", 5*time.Second),

		ServiceFeePercent: parseIntEnv(log, "SERVICE_FEE_PERCENT", 10),
		CurrencyCode:      getEnv("CURRENCY_CODE", "USD"),

		FixturesPath: getEnv("FIXTURES_PATH", "data/listings.json"),
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func (c Config) IsProduction() bool { return c.Env == "production" }

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func parseDurationEnv(log *slog.Logger, key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn("invalid duration env, using fallback",
			slog.String("key", key), slog.String("value", raw))
		return fallback
	}
	return d
}

func parseIntEnv(log *slog.Logger, key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn("invalid integer env, using fallback",
			slog.String("key", key), slog.String("value", raw))
		return fallback
	}
	return n
}
