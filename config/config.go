package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port               string
	Env                string
	MongoURL           string
	MongoDB            string
	RedisURL           string
	StripeSecretKey    string
	StripeWebhookKey   string
	Currency           string
	JWTSecret          string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	AllowedOrigins     []string
	CheckoutRatePerMin int
	CheckoutRateBurst  int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("APP_ENV", "development"),
		MongoURL:           os.Getenv("MONGO_URL"),
		MongoDB:            getEnv("MONGO_DB", "restaurant"),
		RedisURL:           getEnv("REDIS_URL", "redis://redis:6379"),
		StripeSecretKey:    os.Getenv("STRIPE_API_KEY"),
		StripeWebhookKey:   os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:           getEnv("CURRENCY", "eur"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:           getEnv("AWS_S3_BUCKET", "restaurant-product-images"),
		S3Prefix:           getEnv("AWS_S3_PREFIX", "products/"),
		AllowedOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		CheckoutRatePerMin: getEnvInt("CHECKOUT_RATE_PER_MIN", 60),
		CheckoutRateBurst:  getEnvInt("CHECKOUT_RATE_BURST", 20),
	}

	if cfg.MongoURL == "" || cfg.StripeSecretKey == "" || cfg.StripeWebhookKey == "" || cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required environment variables")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
