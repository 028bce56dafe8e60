package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "EVENTHUB_"

type Config struct {
	HTTPPort           string        `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxRequestBodySize int64         `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	OTelEndpoint       string        `env:"OTEL_ENDPOINT"`

	// SessionToken restores a signed-in session at start-up.
	SessionToken string `env:"SESSION_TOKEN"`

	CheckoutTransactional bool `env:"CHECKOUT_TRANSACTIONAL" envDefault:"true"`

	Storage  StorageConfig  `envPrefix:"STORAGE_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Mongo    MongoConfig    `envPrefix:"MONGO_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Auth     AuthConfig     `envPrefix:"AUTH_"`
	Breaker  BreakerConfig  `envPrefix:"BREAKER_"`
}

// StorageConfig selects where the device cart is persisted.
type StorageConfig struct {
	Backend    string `env:"BACKEND" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"eventhub.db"`
	Namespace  string `env:"NAMESPACE"`
}

type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	Name     string `env:"NAME" envDefault:"eventhub"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type MongoConfig struct {
	URI      string `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"DATABASE" envDefault:"eventhub"`
}

type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"order-placed"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	Issuer    string `env:"ISSUER"`
}

type BreakerConfig struct {
	MaxFailures uint32        `env:"MAX_FAILURES" envDefault:"5"`
	OpenTimeout time.Duration `env:"OPEN_TIMEOUT" envDefault:"30s"`
}

// Load reads EVENTHUB_* variables and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("EVENTHUB_REDIS_ADDR is required for the redis storage backend")
		}
	case "mongo":
		if c.Mongo.URI == "" {
			return errors.New("EVENTHUB_MONGO_URI is required for the mongo storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("EVENTHUB_AUTH_JWT_SECRET is required")
	}
	if c.Database.Port <= 0 {
		return fmt.Errorf("invalid EVENTHUB_DB_PORT: %d", c.Database.Port)
	}
	return nil
}
