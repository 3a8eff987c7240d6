package config

import (
	"fmt"
	"time"

	"github.com/famhub/location-tracking-system/pkg/configparser"
)

// Config contains all configuration variables of the application
type (
	Config struct {
		HTTP     HTTPConfig
		Database DatabaseConfig
		RabbitMQ RabbitMQConfig
		Nats     NatsConfig
		Badger   BadgerConfig
		Cache    CacheConfig
		Auth     Auth

		LogLevel string `env:"LOG_LEVEL" default:"DEBUG"`
	}

	HTTPConfig struct {
		Host string `env:"HTTP_HOST" default:"0.0.0.0"`
		Port string `env:"HTTP_PORT" default:"3000"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"famhub_user"`
		Password string `env:"DATABASE_PASSWORD" default:"famhub_pass"`
		Database string `env:"DATABASE_DATABASE" default:"famhub_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"`
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	NatsConfig struct {
		URL    string `env:"NATS_URL" default:"nats://localhost:4222"`
		Bucket string `env:"NATS_BUCKET" default:"current-locations"`
	}

	BadgerConfig struct {
		Dir string `env:"BADGER_DIR" default:"./data/badger"`
	}

	CacheConfig struct {
		TTL             time.Duration `env:"CACHE_TTL" default:"5m"`
		ReprobeInterval time.Duration `env:"CACHE_REPROBE_INTERVAL" default:"30s"`
	}

	Auth struct {
		JWTSecret string `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c DatabaseConfig) PoolSettings() (int32, int32, time.Duration, time.Duration) {
	return c.MaxConns, c.MinConns, c.MaxConnLifetime, c.MaxConnIdleTime
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	return cfg, nil
}
