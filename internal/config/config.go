package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

var defaultReserved = []string{"admin", "dashboard", "www", "api", "app", "mail", "support"}

type Config struct {
	ServiceName string

	ServerPort int

	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte

	KafkaBrokers []string

	RedisAddr     string
	RedisPassword string
	CartTTL       time.Duration

	DeliveryFee float64
	TaxRate     float64

	ReservedSubdomains []string

	PublicBaseURL string
	LogLevel      string
}

func Load() Config {
	reserved := CSV(os.Getenv("RESERVED_SUBDOMAINS"))
	if len(reserved) == 0 {
		reserved = defaultReserved
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "orderdirect"),

		ServerPort: EnvIntDefault("SERVER_PORT", 8080),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CartTTL:       time.Duration(EnvIntDefault("CART_TTL_HOURS", 720)) * time.Hour,

		DeliveryFee: EnvFloatDefault("DELIVERY_FEE", 5),
		TaxRate:     EnvFloatDefault("TAX_RATE", 0.05),

		ReservedSubdomains: reserved,

		PublicBaseURL: EnvDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
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

func EnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}
