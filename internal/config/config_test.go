package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shop")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/shop", cfg.Database.URL)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Checkout.LockTTL)
	assert.Equal(t, []string{"cash", "card", "bank_transfer"}, cfg.Checkout.PaymentMethods)
	assert.Equal(t, "orders.created", cfg.Kafka.OrderTopic)
	assert.Equal(t, "USD", cfg.Currency)
	assert.False(t, cfg.Admin.Enabled())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestLoad_InvalidValuesAreReported(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "many")
	t.Setenv("CHECKOUT_LOCK_WAIT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_MAX_OPEN_CONNS")
	assert.Contains(t, err.Error(), "CHECKOUT_LOCK_WAIT")
}

func TestLoad_Lists(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("PAYMENT_METHODS", " cash , crypto ,")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CURRENCY", "pln")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"cash", "crypto"}, cfg.Checkout.PaymentMethods)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "PLN", cfg.Currency)
}
