package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database       DatabaseConfig
	Admin          AdminConfig
	Server         ServerConfig
	Log            LogConfig
	Redis          RedisConfig
	Checkout       CheckoutConfig
	Kafka          KafkaConfig
	MigrationsPath string
	Currency       string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// AdminConfig is optional. An empty DatabaseURL disables order status updates.
type AdminConfig struct {
	DatabaseURL string
	Token       string
}

func (a AdminConfig) Enabled() bool {
	return a.DatabaseURL != ""
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type CheckoutConfig struct {
	LockTTL        time.Duration
	LockWait       time.Duration
	PaymentMethods []string
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

var ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")

// Load reads the environment, optionally seeded from a .env file. Malformed
// values are reported together rather than replaced by defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	p := &parser{}

	cfg := &Config{
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    p.getEnvInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    p.getEnvInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: p.getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Admin: AdminConfig{
			DatabaseURL: getEnv("ADMIN_DATABASE_URL", ""),
			Token:       getEnv("ADMIN_TOKEN", ""),
		},
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  p.getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: p.getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       p.getEnvInt("REDIS_DB", 0),
		},
		Checkout: CheckoutConfig{
			LockTTL:        p.getEnvDuration("CHECKOUT_LOCK_TTL", 30*time.Second),
			LockWait:       p.getEnvDuration("CHECKOUT_LOCK_WAIT", 5*time.Second),
			PaymentMethods: getEnvList("PAYMENT_METHODS", []string{"cash", "card", "bank_transfer"}),
		},
		Kafka: KafkaConfig{
			Brokers:    getEnvList("KAFKA_BROKERS", nil),
			OrderTopic: getEnv("KAFKA_ORDER_TOPIC", "orders.created"),
		},
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		Currency:       strings.ToUpper(getEnv("CURRENCY", "USD")),
	}

	if cfg.Database.URL == "" {
		p.errs = append(p.errs, ErrMissingDatabaseURL)
	}
	if len(cfg.Checkout.PaymentMethods) == 0 {
		p.errs = append(p.errs, errors.New("PAYMENT_METHODS must name at least one method"))
	}

	if len(p.errs) > 0 {
		return nil, fmt.Errorf("load config: %w", errors.Join(p.errs...))
	}

	return cfg, nil
}

type parser struct {
	errs []error
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (p *parser) getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("invalid integer for %s: %q", key, value))
			return defaultValue
		}
		return intVal
	}
	return defaultValue
}

func (p *parser) getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("invalid duration for %s: %q", key, value))
			return defaultValue
		}
		return duration
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
