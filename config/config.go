package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the canteen API reads from the environment.
type Config struct {
	Addr         string
	MetricsAddr  string
	OTLPEndpoint string

	MongoURI string
	Database string

	SessionSecret string

	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	KafkaBrokers []string
	KafkaTopic   string
	EnableLogES  bool

	StripeSecretKey string

	ChatSessionTTL time.Duration
	ChatSessionCap int
}

// Load reads .env if present and builds the config from the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using environment")
	}

	return Config{
		Addr:            getEnv("CANTEEN_ADDR", "127.0.0.1:8000"),
		MetricsAddr:     getEnv("CANTEEN_METRICS_ADDR", ":9100"),
		OTLPEndpoint:    getEnv("OTLP_ENDPOINT", "localhost:4318"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database:        getEnv("MONGO_DB", "canteen_ai"),
		SessionSecret:   os.Getenv("session_secret"),
		GroqAPIKey:      os.Getenv("GROQ_API_KEY"),
		GroqBaseURL:     getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:       getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
		KafkaBrokers:    []string{getEnv("KAFKA_BROKER", "localhost:9092")},
		KafkaTopic:      getEnv("KAFKA_LOG_TOPIC", "canteen-logs"),
		EnableLogES:     getEnv("ENABLE_LOG_INDEXER", "") == "1",
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		ChatSessionTTL:  getDuration("CHAT_SESSION_TTL", 30*time.Minute),
		ChatSessionCap:  getInt("CHAT_SESSION_CAP", 10000),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("invalid %s=%q, using default", key, v)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logrus.Warnf("invalid %s=%q, using default", key, v)
		return fallback
	}
	return d
}
