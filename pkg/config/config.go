package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort    int
	CORSOrigins []string

	// Storage selects the repository backend: "postgres" or "memory".
	Storage  string
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	Payment  Payment

	CheckoutConcurrency int
}

type Postgres struct {
	Host string
	Port int
	User string
	Pass string
	DB   string
}

type Redis struct {
	Addr       string
	Password   string
	DB         int
	ProductTTL time.Duration
}

type Kafka struct {
	Brokers     string
	StatusTopic string
	OrderTopic  string

	BatchTimeout   time.Duration
	WriteTimeout   time.Duration
	PublishTimeout time.Duration
}

type Payment struct {
	Email        string
	Token        string
	Sandbox      bool
	Endpoint     string
	WebhookToken string
	Timeout      time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars win over it.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppEnv:      getEnv("APP_ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnvInt("HTTP_PORT", 8080),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"*"}),
		Storage:     getEnv("STORAGE", "postgres"),
		Postgres: Postgres{
			Host: getEnv("POSTGRES_HOST", "localhost"),
			Port: getEnvInt("POSTGRES_PORT", 5432),
			User: getEnv("POSTGRES_USER", "shopping"),
			Pass: getEnv("POSTGRES_PASSWORD", "shoppingpassword"),
			DB:   getEnv("POSTGRES_DB", "shopping_db"),
		},
		Redis: Redis{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			ProductTTL: getEnvDuration("REDIS_PRODUCT_TTL", 5*time.Minute),
		},
		Kafka: Kafka{
			Brokers:     getEnv("KAFKA_BROKERS", ""),
			StatusTopic: getEnv("KAFKA_STATUS_TOPIC", "order.status_changed"),
			OrderTopic:  getEnv("KAFKA_ORDER_TOPIC", "order.created"),

			BatchTimeout:   getEnvDuration("KAFKA_BATCH_TIMEOUT", 10*time.Millisecond),
			WriteTimeout:   getEnvDuration("KAFKA_WRITE_TIMEOUT", 2*time.Second),
			PublishTimeout: getEnvDuration("KAFKA_PUBLISH_TIMEOUT", 3*time.Second),
		},
		Payment: Payment{
			Email:        getEnv("PAYMENT_EMAIL", ""),
			Token:        getEnv("PAYMENT_TOKEN", ""),
			Sandbox:      getEnvBool("PAYMENT_SANDBOX", true),
			Endpoint:     getEnv("PAYMENT_ENDPOINT", "https://sandbox.gateway.local/v2/checkout"),
			WebhookToken: getEnv("PAYMENT_WEBHOOK_TOKEN", ""),
			Timeout:      getEnvDuration("PAYMENT_TIMEOUT", 10*time.Second),
		},
		CheckoutConcurrency: getEnvInt("CHECKOUT_CONCURRENCY", 10),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
