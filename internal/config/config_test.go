package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DELIVERY_FEE", "")
	t.Setenv("TAX_RATE", "")
	t.Setenv("RESERVED_SUBDOMAINS", "")
	t.Setenv("CART_TTL_HOURS", "")

	cfg := Load()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 5.0, cfg.DeliveryFee)
	assert.Equal(t, 0.05, cfg.TaxRate)
	assert.Equal(t, 720*time.Hour, cfg.CartTTL)
	assert.Equal(t, []string{"admin", "dashboard", "www", "api", "app", "mail", "support"}, cfg.ReservedSubdomains)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DELIVERY_FEE", "40")
	t.Setenv("KAFKA_BROKERS", "kafka:9092, kafka2:9092 ,")
	t.Setenv("RESERVED_SUBDOMAINS", "Admin,orders")

	cfg := Load()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, 40.0, cfg.DeliveryFee)
	require.Len(t, cfg.KafkaBrokers, 2)
	assert.Equal(t, []string{"admin", "orders"}, cfg.ReservedSubdomains)
}

func TestEnvFloatDefault_RejectsGarbage(t *testing.T) {
	t.Setenv("SOME_FEE", "abc")
	assert.Equal(t, 1.5, EnvFloatDefault("SOME_FEE", 1.5))

	t.Setenv("SOME_FEE", "-3")
	assert.Equal(t, 1.5, EnvFloatDefault("SOME_FEE", 1.5))
}
