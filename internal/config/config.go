package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development signing key. Running with it outside local setups is unsafe.
const DefaultJWTSecret = "your-secret-key-here"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string   `env:"SERVER_PORT" env-default:"5001"`
	LogLevel    string   `env:"LOG_LEVEL" env-default:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"*"`
	SwaggerHost string   `env:"SWAGGER_HOST"`

	DBDriver    string `env:"DB_DRIVER" env-default:"sqlite"`
	DatabaseDSN string `env:"DATABASE_DSN" env-default:"catalog.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" env-default:"true"`

	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB" env-default:"0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	JWTSecret       string        `env:"JWT_SECRET_KEY" env-default:"your-secret-key-here"`
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TTL" env-default:"1h"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TTL" env-default:"720h"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" env-default:"product_events"`

	AdminUsername string `env:"ADMIN_USERNAME" env-default:"admin"`
	AdminEmail    string `env:"ADMIN_EMAIL" env-default:"admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" env-default:"admin123"`
}

// Load builds Config from an optional .env file and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

// UsesDefaultSecret reports whether tokens are signed with the development key.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}
